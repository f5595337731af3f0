package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"messages-service/internal/domain"
	"messages-service/internal/observability"

	"github.com/go-chi/chi/v5"
)

// MessageService is the set of message operations the handler exposes over HTTP
type MessageService interface {
	Create(ctx context.Context, text *string) (*domain.Message, error)
	List(ctx context.Context) ([]*domain.Message, error)
	Get(ctx context.Context, id int64) (*domain.Message, error)
	Update(ctx context.Context, id int64, text *string) (*domain.Message, error)
	Delete(ctx context.Context, id int64) error
}

// MessageHandler handles message endpoints
type MessageHandler struct {
	messages MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messages MessageService) *MessageHandler {
	return &MessageHandler{
		messages: messages,
	}
}

// MessageRequest is the body of create and update requests.
// MessageText is nil when the field is absent.
type MessageRequest struct {
	MessageText *string `json:"message_text"`
}

const (
	msgInvalidBody  = "Invalid request body"
	msgNoMessages   = "No messages found in the database."
	msgCreateFailed = "Failed to create message"
	msgListFailed   = "Failed to fetch messages"
	msgGetFailed    = "Failed to fetch message"
	msgUpdateFailed = "Failed to update message"
	msgDeleteFailed = "Failed to delete message"
)

// Create creates a new message
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMessageRequest(w, r)
	if !ok {
		return
	}

	msg, err := h.messages.Create(r.Context(), req.MessageText)
	if err != nil {
		h.fail(w, r, err, 0, msgCreateFailed)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// List retrieves all messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messages.List(r.Context())
	if err != nil {
		h.fail(w, r, err, 0, msgListFailed)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// Get retrieves a message by ID
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	msg, err := h.messages.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNoMessages) {
		writeMessage(w, http.StatusOK, msgNoMessages)
		return
	}
	if err != nil {
		h.fail(w, r, err, id, msgGetFailed)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// Update replaces the text of a message
func (h *MessageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	req, ok := decodeMessageRequest(w, r)
	if !ok {
		return
	}

	msg, err := h.messages.Update(r.Context(), id, req.MessageText)
	if err != nil {
		h.fail(w, r, err, id, msgUpdateFailed)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// Delete removes a message
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.messages.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, id, msgDeleteFailed)
		return
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("Message with ID %d deleted successfully.", id))
}

// fail maps a service error to a response. Anything that is not a client error is logged and hidden behind internalMsg.
func (h *MessageHandler) fail(w http.ResponseWriter, r *http.Request, err error, id int64, internalMsg string) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, domain.ErrMessageNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Message with ID %d not found.", id))
	default:
		observability.FromContext(r.Context()).Error(internalMsg,
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
		writeError(w, http.StatusInternalServerError, internalMsg)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := domain.ParseMessageID(chi.URLParam(r, "id"))
	if err != nil {
		var vErr *domain.ValidationError
		errors.As(err, &vErr)
		writeError(w, http.StatusBadRequest, vErr.Message)
		return 0, false
	}
	return id, true
}

// decodeMessageRequest reads the JSON body. An empty body counts as a body with no fields.
func decodeMessageRequest(w http.ResponseWriter, r *http.Request) (MessageRequest, bool) {
	var req MessageRequest
	if r.Body == nil {
		return req, true
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return req, false
	}
	return req, true
}
