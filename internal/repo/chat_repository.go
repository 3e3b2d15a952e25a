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
	ErrChatNotFound = errors.New("chat not found")
)

const chatsSequence = "chats"

type ChatRepository interface {
	CreateChat(ctx context.Context, chat *model.Chat) error
	FindByID(ctx context.Context, chatID int64) (*model.Chat, error)
	FindPrivateChatBetween(ctx context.Context, userID, otherUserID int64) (*model.Chat, error)
	FindUserChats(ctx context.Context, userID int64) ([]model.Chat, error)
	IsMember(ctx context.Context, chatID, userID int64) (bool, error)
	DeleteChat(ctx context.Context, chatID int64) error
}

type chatRepository struct {
	con       *mongo.Database
	mongoRepo *db.Repository[model.Chat]
	logger    *zap.Logger
}

func NewChatRepository(con *mongo.Database, mongoRepo *db.Repository[model.Chat], logger *zap.Logger) ChatRepository {
	return &chatRepository{con: con, mongoRepo: mongoRepo, logger: logger}
}

func (r *chatRepository) CreateChat(ctx context.Context, chat *model.Chat) error {
	chatID, err := db.NextSequence(ctx, r.con, chatsSequence)
	if err != nil {
		return fmt.Errorf("failed to allocate chat id: %w", err)
	}
	now := time.Now().UTC()
	chat.ChatID = chatID
	chat.CreatedAt = now
	chat.UpdatedAt = now

	chat.MemberIDs = make([]int64, 0, len(chat.Members))
	for i := range chat.Members {
		chat.Members[i].JoinedAt = now
		chat.MemberIDs = append(chat.MemberIDs, chat.Members[i].UserID)
	}

	if _, err := r.mongoRepo.Create(ctx, *chat); err != nil {
		r.logger.Error("failed to create chat", zap.Error(err))
		return fmt.Errorf("failed to create chat: %w", err)
	}

	r.logger.Info("chat created",
		zap.Int64("chat_id", chat.ChatID),
		zap.String("chat_type", chat.ChatType),
		zap.Int("members", len(chat.Members)),
	)
	return nil
}

func (r *chatRepository) FindByID(ctx context.Context, chatID int64) (*model.Chat, error) {
	chat, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("chat_id", chatID).Build())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to find chat: %w", err)
	}
	return chat, nil
}

// FindPrivateChatBetween returns the existing private chat shared by
// exactly this pair, if one exists. Private chats always have two
// members, so $all on the pair is sufficient.
func (r *chatRepository) FindPrivateChatBetween(ctx context.Context, userID, otherUserID int64) (*model.Chat, error) {
	filter := db.NewFilter().
		Eq("chat_type", model.ChatTypePrivate).
		All("member_ids", []int64{userID, otherUserID}).
		Build()
	chat, err := r.mongoRepo.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to find private chat: %w", err)
	}
	return chat, nil
}

func (r *chatRepository) FindUserChats(ctx context.Context, userID int64) ([]model.Chat, error) {
	chats, err := r.mongoRepo.FindAll(ctx, db.NewFilter().Eq("member_ids", userID).Build())
	if err != nil {
		return nil, fmt.Errorf("failed to list user chats: %w", err)
	}
	return chats, nil
}

func (r *chatRepository) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	exists, err := r.mongoRepo.Exists(ctx, db.NewFilter().
		Eq("chat_id", chatID).
		Eq("member_ids", userID).
		Build())
	if err != nil {
		return false, fmt.Errorf("failed to check chat membership: %w", err)
	}
	return exists, nil
}

func (r *chatRepository) DeleteChat(ctx context.Context, chatID int64) error {
	result, err := r.mongoRepo.Delete(ctx, db.NewFilter().Eq("chat_id", chatID).Build())
	if err != nil {
		r.logger.Error("failed to delete chat", zap.Int64("chat_id", chatID), zap.Error(err))
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrChatNotFound
	}
	r.logger.Info("chat deleted", zap.Int64("chat_id", chatID))
	return nil
}
