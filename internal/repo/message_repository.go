package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Chatline/internal/db"
	"Chatline/internal/model"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrMaxRetriesExceeded = errors.New("maximum retry attempts exceeded")
	ErrInvalidMessage     = errors.New("invalid message: message cannot be nil or empty")
	ErrMessageNotFound    = errors.New("message not found")
)

const (
	// Timeouts
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 30 * time.Second

	// Retry configuration
	maxRetries     = 3
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second

	messagesSequence = "messages"
	messagesPageSize = 50
)

type MessageRepository interface {
	InsertMessage(ctx context.Context, msg *model.Message) error
	FindByID(ctx context.Context, messageID int64) (*model.Message, error)
	ListChatMessages(ctx context.Context, chatID int64, page int64) (*db.PaginatedResult[model.Message], error)
	DeleteMessage(ctx context.Context, messageID int64) error
	DeleteChatMessages(ctx context.Context, chatID int64) error
}

type messageRepository struct {
	con       *mongo.Database
	mongoRepo *db.Repository[model.Message]
	logger    *zap.Logger
}

func NewMessageRepository(con *mongo.Database, mongoRepo *db.Repository[model.Message], logger *zap.Logger) MessageRepository {
	return &messageRepository{con: con, mongoRepo: mongoRepo, logger: logger}
}

// InsertMessage assigns the next message id and stores the message,
// retrying transient failures with exponential backoff. The caller must
// not emit the live event until this returns nil.
func (m *messageRepository) InsertMessage(ctx context.Context, msg *model.Message) error {
	if err := m.validateMessage(msg); err != nil {
		return err
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	messageID, err := db.NextSequence(ctx, m.con, messagesSequence)
	if err != nil {
		return fmt.Errorf("failed to allocate message id: %w", err)
	}
	msg.MessageID = messageID
	msg.CreatedAt = time.Now().UTC()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := m.waitForRetry(ctx, attempt); err != nil {
				return err
			}
		}

		_, err := m.mongoRepo.Create(ctx, *msg)
		if err == nil {
			m.logger.Info("message inserted",
				zap.Int64("message_id", msg.MessageID),
				zap.Int64("chat_id", msg.ChatID),
				zap.Int("attempt", attempt+1),
			)
			return nil
		}

		lastErr = err
		if !m.isRetryableError(err) {
			break
		}

		m.logger.Warn("insert attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries),
		)
	}

	if lastErr != nil {
		return fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
	}
	return ErrMaxRetriesExceeded
}

func (m *messageRepository) FindByID(ctx context.Context, messageID int64) (*model.Message, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	msg, err := m.mongoRepo.FindOne(ctx, db.NewFilter().Eq("message_id", messageID).Build())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	return msg, nil
}

func (m *messageRepository) ListChatMessages(ctx context.Context, chatID int64, page int64) (*db.PaginatedResult[model.Message], error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	result, err := m.mongoRepo.FindWithPagination(ctx,
		db.NewFilter().Eq("chat_id", chatID).Build(),
		db.PaginationParams{
			Page:     page,
			PageSize: messagesPageSize,
			SortBy:   "created_at",
			SortDesc: true,
		})
	if err != nil {
		m.logger.Error("failed to list chat messages", zap.Int64("chat_id", chatID), zap.Error(err))
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return result, nil
}

func (m *messageRepository) DeleteMessage(ctx context.Context, messageID int64) error {
	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := m.mongoRepo.Delete(ctx, db.NewFilter().Eq("message_id", messageID).Build())
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrMessageNotFound
	}
	m.logger.Info("message deleted", zap.Int64("message_id", messageID))
	return nil
}

// DeleteChatMessages removes every message of a chat, run after the
// chat document itself is deleted.
func (m *messageRepository) DeleteChatMessages(ctx context.Context, chatID int64) error {
	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := m.mongoRepo.DeleteMany(ctx, db.NewFilter().Eq("chat_id", chatID).Build())
	if err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	m.logger.Info("chat messages deleted",
		zap.Int64("chat_id", chatID),
		zap.Int64("count", result.DeletedCount),
	)
	return nil
}

func (m *messageRepository) validateMessage(msg *model.Message) error {
	if msg == nil || msg.Content == "" {
		return ErrInvalidMessage
	}
	if msg.ChatID <= 0 || msg.SenderID <= 0 {
		return ErrInvalidMessage
	}
	return nil
}

func (m *messageRepository) ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (m *messageRepository) waitForRetry(ctx context.Context, attempt int) error {
	delay := baseRetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (m *messageRepository) isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return false
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
