package service

import (
	"context"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

type ContactService struct {
	repo   domain.ContactRepository
	logger logger.Logger
}

func NewContactService(repo domain.ContactRepository, logger logger.Logger) *ContactService {
	return &ContactService{repo: repo, logger: logger}
}

func (s *ContactService) CreateContact(ctx context.Context, contact *domain.Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}
	return s.repo.CreateContact(ctx, contact)
}

func (s *ContactService) GetContactByID(ctx context.Context, id string) (*domain.Contact, error) {
	return s.repo.GetContactByID(ctx, id)
}

func (s *ContactService) ListContacts(ctx context.Context, params domain.ContactListParams) ([]*domain.Contact, int, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}
	return s.repo.ListContacts(ctx, params)
}

func (s *ContactService) UpdateContact(ctx context.Context, contact *domain.Contact) error {
	if contact.ID == "" {
		return domain.NewValidationError("id is required")
	}
	return s.repo.UpdateContact(ctx, contact)
}

func (s *ContactService) DeleteContact(ctx context.Context, id string) error {
	return s.repo.DeleteContact(ctx, id)
}
