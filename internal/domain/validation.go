package domain

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// messageTextInput is the validated shape of message_text after trimming
type messageTextInput struct {
	Text string `validate:"required,max=255"`
}

// Validation messages returned to clients
const (
	MsgTextRequired  = "message_text is required and cannot be empty."
	MsgTextMissing   = "message_text must be provided."
	MsgTextEmpty     = "message_text cannot be empty."
	MsgTextTooLong   = "message_text cannot exceed 255 characters."
	MsgIDInvalid     = "Invalid ID format. ID must be a number."
	MsgIDNotPositive = "ID must be a positive number."
)

// NormalizeMessageText validates a message_text value for creation and returns it trimmed.
// A nil text means the field was absent from the request.
func NormalizeMessageText(text *string) (string, error) {
	if text == nil {
		return "", NewValidationError("message_text", MsgTextRequired)
	}
	return normalize(*text, MsgTextRequired)
}

// NormalizeMessageTextUpdate validates a message_text value for an update.
// Absence and emptiness are reported separately.
func NormalizeMessageTextUpdate(text *string) (string, error) {
	if text == nil {
		return "", NewValidationError("message_text", MsgTextMissing)
	}
	return normalize(*text, MsgTextEmpty)
}

func normalize(raw, emptyMsg string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	err := validate.Struct(messageTextInput{Text: trimmed})
	if err == nil {
		return trimmed, nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() == "max" {
		return "", NewValidationError("message_text", MsgTextTooLong)
	}
	return "", NewValidationError("message_text", emptyMsg)
}

// ParseMessageID parses a route id; it must be a positive base-10 integer
func ParseMessageID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, NewValidationError("id", MsgIDInvalid)
	}
	if id <= 0 {
		return 0, NewValidationError("id", MsgIDNotPositive)
	}
	return id, nil
}
