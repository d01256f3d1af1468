package service

import (
	"context"
	"errors"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

// EarliestUserResolver attributes deliveries that carry no usable user ID to
// the earliest-created user. This is the single-tenant fallback: most senders
// have no idea which CRM user owns the data.
type EarliestUserResolver struct {
	userRepo domain.UserRepository
	logger   logger.Logger
}

func NewEarliestUserResolver(userRepo domain.UserRepository, logger logger.Logger) *EarliestUserResolver {
	return &EarliestUserResolver{userRepo: userRepo, logger: logger}
}

// ResolveOwner prefers the payload's user when it exists, then falls back to
// the earliest user. (nil, nil) means no user exists at all: the caller
// acknowledges the delivery without processing it.
func (r *EarliestUserResolver) ResolveOwner(ctx context.Context, payloadUserID string) (*domain.User, error) {
	if payloadUserID != "" {
		user, err := r.userRepo.GetUserByID(ctx, payloadUserID)
		if err == nil {
			return user, nil
		}
		var notFound *domain.ErrUserNotFound
		if !errors.As(err, &notFound) {
			return nil, err
		}
		r.logger.WithField("user_id", payloadUserID).Warn("payload user not found, falling back to earliest user")
	}

	user, err := r.userRepo.GetEarliestUser(ctx)
	if err != nil {
		var notFound *domain.ErrUserNotFound
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// RequiredOwnerResolver only accepts deliveries whose payload names an
// existing user. Deployments that route one endpoint per tenant use this.
type RequiredOwnerResolver struct {
	userRepo domain.UserRepository
}

func NewRequiredOwnerResolver(userRepo domain.UserRepository) *RequiredOwnerResolver {
	return &RequiredOwnerResolver{userRepo: userRepo}
}

func (r *RequiredOwnerResolver) ResolveOwner(ctx context.Context, payloadUserID string) (*domain.User, error) {
	if payloadUserID == "" {
		return nil, nil
	}
	user, err := r.userRepo.GetUserByID(ctx, payloadUserID)
	if err != nil {
		var notFound *domain.ErrUserNotFound
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
