package service

import (
	"context"
	"errors"
	"log/slog"

	"messages-service/internal/domain"
	"messages-service/internal/observability"
)

// MessageService applies input rules to message operations before touching the store
type MessageService struct {
	messageRepo domain.MessageRepository
}

func NewMessageService(messageRepo domain.MessageRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
	}
}

// Create stores a new message. text is nil when the field was absent.
func (s *MessageService) Create(ctx context.Context, text *string) (msg *domain.Message, err error) {
	defer func() { recordOutcome("create", err) }()

	normalized, err := domain.NormalizeMessageText(text)
	if err != nil {
		return nil, err
	}

	msg, err = s.messageRepo.Create(ctx, normalized)
	if err != nil {
		return nil, err
	}

	observability.FromContext(ctx).Info("message created", slog.Int64("message_id", msg.ID))
	return msg, nil
}

// List returns every stored message in insertion order
func (s *MessageService) List(ctx context.Context) (messages []*domain.Message, err error) {
	defer func() { recordOutcome("list", err) }()

	return s.messageRepo.FindAll(ctx)
}

// Get returns one message. An empty store yields domain.ErrNoMessages rather than a not-found error.
func (s *MessageService) Get(ctx context.Context, id int64) (msg *domain.Message, err error) {
	defer func() { recordOutcome("get", err) }()

	count, err := s.messageRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.ErrNoMessages
	}

	return s.messageRepo.FindByID(ctx, id)
}

// Update replaces message_text of an existing message
func (s *MessageService) Update(ctx context.Context, id int64, text *string) (msg *domain.Message, err error) {
	defer func() { recordOutcome("update", err) }()

	normalized, err := domain.NormalizeMessageTextUpdate(text)
	if err != nil {
		return nil, err
	}

	existing, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.MessageText = normalized
	msg, err = s.messageRepo.Save(ctx, existing)
	if err != nil {
		return nil, err
	}

	observability.FromContext(ctx).Info("message updated", slog.Int64("message_id", msg.ID))
	return msg, nil
}

// Delete removes an existing message
func (s *MessageService) Delete(ctx context.Context, id int64) (err error) {
	defer func() { recordOutcome("delete", err) }()

	existing, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.messageRepo.Remove(ctx, existing); err != nil {
		return err
	}

	observability.FromContext(ctx).Info("message deleted", slog.Int64("message_id", id))
	return nil
}

func recordOutcome(operation string, err error) {
	observability.MessageOperationsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil, errors.Is(err, domain.ErrNoMessages):
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrMessageNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConnection):
		return "unavailable"
	default:
		return "error"
	}
}
