package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

func TestEntityResolver_ResolveContact(t *testing.T) {
	t.Run("no usable email skips resolution", func(t *testing.T) {
		contactRepo := new(MockContactRepository)
		resolver := NewEntityResolver(contactRepo, new(MockPipelineRepository), logger.NewTestLogger(t))

		payload := &domain.InboundPayload{ContactEmail: "not-an-email"}
		contact, err := resolver.ResolveContact(context.Background(), payload, "user-1")
		require.NoError(t, err)
		assert.Nil(t, contact)
		contactRepo.AssertNotCalled(t, "GetContactByEmail", mock.Anything, mock.Anything)
	})

	t.Run("existing contact is merged", func(t *testing.T) {
		contactRepo := new(MockContactRepository)
		resolver := NewEntityResolver(contactRepo, new(MockPipelineRepository), logger.NewTestLogger(t))

		stored := &domain.Contact{ID: "c-1", Email: "jane@acme.io", UserID: "user-1"}
		contactRepo.On("GetContactByEmail", mock.Anything, "jane@acme.io").Return(stored, nil)
		contactRepo.On("UpdateContact", mock.Anything, mock.MatchedBy(func(c *domain.Contact) bool {
			return c.ID == "c-1" && c.Phone != nil && *c.Phone == "555-0100"
		})).Return(nil)

		payload := &domain.InboundPayload{
			ContactEmail: "jane@acme.io",
			ContactPhone: "555-0100",
		}
		contact, err := resolver.ResolveContact(context.Background(), payload, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "c-1", contact.ID)
		contactRepo.AssertExpectations(t)
	})

	t.Run("create race retries as merge", func(t *testing.T) {
		contactRepo := new(MockContactRepository)
		resolver := NewEntityResolver(contactRepo, new(MockPipelineRepository), logger.NewTestLogger(t))

		notFound := &domain.ErrContactNotFound{Message: "contact not found"}
		winner := &domain.Contact{ID: "c-2", Email: "jane@acme.io", UserID: "user-1"}

		contactRepo.On("GetContactByEmail", mock.Anything, "jane@acme.io").Return(nil, notFound).Once()
		contactRepo.On("CreateContact", mock.Anything, mock.Anything).
			Return(&domain.ErrContactEmailExists{Email: "jane@acme.io"})
		contactRepo.On("GetContactByEmail", mock.Anything, "jane@acme.io").Return(winner, nil)
		contactRepo.On("UpdateContact", mock.Anything, mock.MatchedBy(func(c *domain.Contact) bool {
			return c.ID == "c-2"
		})).Return(nil)

		payload := &domain.InboundPayload{ContactEmail: "jane@acme.io", ContactName: "Jane Doe"}
		contact, err := resolver.ResolveContact(context.Background(), payload, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "c-2", contact.ID)
		contactRepo.AssertExpectations(t)
	})
}

func TestEntityResolver_ResolveDefaultPipeline(t *testing.T) {
	t.Run("existing pipeline wins", func(t *testing.T) {
		pipelineRepo := new(MockPipelineRepository)
		resolver := NewEntityResolver(new(MockContactRepository), pipelineRepo, logger.NewTestLogger(t))

		existing := testPipeline()
		pipelineRepo.On("GetEarliestPipelineByUser", mock.Anything, "user-1").Return(existing, nil)

		pipeline, err := resolver.ResolveDefaultPipeline(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, pipeline.ID)
		pipelineRepo.AssertNotCalled(t, "CreatePipeline", mock.Anything, mock.Anything)
	})

	t.Run("missing pipeline gets the default stage sequence", func(t *testing.T) {
		pipelineRepo := new(MockPipelineRepository)
		resolver := NewEntityResolver(new(MockContactRepository), pipelineRepo, logger.NewTestLogger(t))

		pipelineRepo.On("GetEarliestPipelineByUser", mock.Anything, "user-1").
			Return(nil, &domain.ErrPipelineNotFound{Message: "no pipeline for user"})
		pipelineRepo.On("CreatePipeline", mock.Anything, mock.MatchedBy(func(p *domain.Pipeline) bool {
			if p.Name != domain.DefaultPipelineName || len(p.Stages) != len(domain.DefaultStageNames) {
				return false
			}
			for i, s := range p.Stages {
				if s.Name != domain.DefaultStageNames[i] || s.Position != i {
					return false
				}
			}
			return true
		})).Return(nil)

		pipeline, err := resolver.ResolveDefaultPipeline(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultPipelineName, pipeline.Name)
		pipelineRepo.AssertExpectations(t)
	})
}

func TestEntityResolver_ResolveStage(t *testing.T) {
	resolver := NewEntityResolver(new(MockContactRepository), new(MockPipelineRepository), logger.NewTestLogger(t))
	pipeline := testPipeline()

	t.Run("status hint beats stage id", func(t *testing.T) {
		stage := resolver.ResolveStage(pipeline, "qualified", "stage-Negotiation")
		require.NotNil(t, stage)
		assert.Equal(t, "Qualified", stage.Name)
	})

	t.Run("substring hint matches", func(t *testing.T) {
		stage := resolver.ResolveStage(pipeline, "Proposal Sent", "")
		require.NotNil(t, stage)
		assert.Equal(t, "Proposal", stage.Name)
	})

	t.Run("stage id when no hint matches", func(t *testing.T) {
		stage := resolver.ResolveStage(pipeline, "warp drive", "stage-Negotiation")
		require.NotNil(t, stage)
		assert.Equal(t, "Negotiation", stage.Name)
	})

	t.Run("falls back to first stage", func(t *testing.T) {
		stage := resolver.ResolveStage(pipeline, "", "")
		require.NotNil(t, stage)
		assert.Equal(t, "New", stage.Name)
	})
}
