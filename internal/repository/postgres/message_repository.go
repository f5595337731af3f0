package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"messages-service/internal/domain"
	"messages-service/internal/observability"
)

const messagesTable = "messages"

const (
	queryFindAll = `
		SELECT id, message_text, created_at, updated_at
		FROM messages
		ORDER BY id ASC
	`
	queryFindByID = `
		SELECT id, message_text, created_at, updated_at
		FROM messages
		WHERE id = $1
	`
	queryCount  = `SELECT COUNT(*) FROM messages`
	queryCreate = `
		INSERT INTO messages (message_text)
		VALUES ($1)
		RETURNING id, message_text, created_at, updated_at
	`
	// updated_at always moves forward, even if the clock has not advanced since the last write
	querySave = `
		UPDATE messages
		SET message_text = $1,
			updated_at = GREATEST(clock_timestamp(), updated_at + INTERVAL '1 microsecond')
		WHERE id = $2
		RETURNING id, message_text, created_at, updated_at
	`
	queryRemove = `DELETE FROM messages WHERE id = $1`
)

// Connector hands out the shared connection pool, opening it if needed
type Connector interface {
	EnsureReady(ctx context.Context) (*sql.DB, error)
}

// MessageRepository implements domain.MessageRepository for PostgreSQL
type MessageRepository struct {
	conn Connector
}

// NewMessageRepository creates a new PostgreSQL message repository
func NewMessageRepository(conn Connector) *MessageRepository {
	return &MessageRepository{conn: conn}
}

// FindAll retrieves every message in insertion order
func (r *MessageRepository) FindAll(ctx context.Context) ([]*domain.Message, error) {
	db, err := r.conn.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	defer r.observe(ctx, "find_all")()

	rows, err := db.QueryContext(ctx, queryFindAll)
	if err != nil {
		return nil, r.storeError(ctx, "query messages", err)
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		msg := &domain.Message{}
		if err := rows.Scan(&msg.ID, &msg.MessageText, &msg.CreatedAt, &msg.UpdatedAt); err != nil {
			return nil, r.storeError(ctx, "scan message", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, r.storeError(ctx, "iterate messages", err)
	}

	return messages, nil
}

// FindByID retrieves a message by ID
func (r *MessageRepository) FindByID(ctx context.Context, id int64) (*domain.Message, error) {
	db, err := r.conn.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	defer r.observe(ctx, "find_by_id")()

	msg := &domain.Message{}
	err = db.QueryRowContext(ctx, queryFindByID, id).Scan(
		&msg.ID,
		&msg.MessageText,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMessageNotFound
	}
	if err != nil {
		return nil, r.storeError(ctx, "get message", err)
	}
	return msg, nil
}

// Count returns the number of stored messages
func (r *MessageRepository) Count(ctx context.Context) (int64, error) {
	db, err := r.conn.EnsureReady(ctx)
	if err != nil {
		return 0, err
	}
	defer r.observe(ctx, "count")()

	var count int64
	if err := db.QueryRowContext(ctx, queryCount).Scan(&count); err != nil {
		return 0, r.storeError(ctx, "count messages", err)
	}
	return count, nil
}

// Create inserts a new message; the store assigns id and timestamps
func (r *MessageRepository) Create(ctx context.Context, text string) (*domain.Message, error) {
	db, err := r.conn.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	defer r.observe(ctx, "create")()

	msg := &domain.Message{}
	err = db.QueryRowContext(ctx, queryCreate, text).Scan(
		&msg.ID,
		&msg.MessageText,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		return nil, r.storeError(ctx, "create message", err)
	}
	return msg, nil
}

// Save persists message_text of an existing message and refreshes updated_at
func (r *MessageRepository) Save(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	db, err := r.conn.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	defer r.observe(ctx, "save")()

	saved := &domain.Message{}
	err = db.QueryRowContext(ctx, querySave, message.MessageText, message.ID).Scan(
		&saved.ID,
		&saved.MessageText,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMessageNotFound
	}
	if err != nil {
		return nil, r.storeError(ctx, "update message", err)
	}
	return saved, nil
}

// Remove deletes an existing message
func (r *MessageRepository) Remove(ctx context.Context, message *domain.Message) error {
	db, err := r.conn.EnsureReady(ctx)
	if err != nil {
		return err
	}
	defer r.observe(ctx, "remove")()

	result, err := db.ExecContext(ctx, queryRemove, message.ID)
	if err != nil {
		return r.storeError(ctx, "delete message", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return r.storeError(ctx, "delete message", err)
	}
	if affected == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// observe records the statement latency; call the returned func when the statement is done
func (r *MessageRepository) observe(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		observability.DBQueryDuration.WithLabelValues(operation, messagesTable).Observe(elapsed.Seconds())
		observability.FromContext(ctx).Debug("query executed",
			slog.String("operation", operation),
			slog.String("table", messagesTable),
			slog.Duration("duration", elapsed))
	}
}

// storeError hides driver error types behind domain.ErrStore, keeping the detail in the message
func (r *MessageRepository) storeError(ctx context.Context, op string, err error) error {
	attrs := []any{slog.String("operation", op), slog.String("error", err.Error())}
	if state := SQLState(err); state != "" {
		attrs = append(attrs, slog.String("sqlstate", state))
	}
	if constraint := Constraint(err); constraint != "" {
		attrs = append(attrs, slog.String("constraint", constraint))
	}

	msg := "database operation failed"
	if IsConnectionException(err) {
		msg = "database connection lost"
	} else if IsCheckViolation(err) {
		msg = "database constraint rejected write"
	}
	observability.FromContext(ctx).Warn(msg, attrs...)

	return fmt.Errorf("%w: failed to %s: %v", domain.ErrStore, op, err)
}
