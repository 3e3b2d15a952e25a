package service

import (
	"context"
	"errors"
	"net/http"

	"Chatline/internal/db"
	"Chatline/internal/model"
	"Chatline/internal/repo"

	"go.uber.org/zap"
)

type MessageService interface {
	SendMessage(ctx context.Context, chatID, senderID int64, content string) (*model.Message, error)
	DeleteMessage(ctx context.Context, chatID, userID, messageID int64) error
	GetChatMessages(ctx context.Context, userID, chatID, page int64) (*db.PaginatedResult[model.Message], error)
}

type messageService struct {
	messages repo.MessageRepository
	chats    repo.ChatRepository
	users    repo.UserRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewMessageService(messages repo.MessageRepository, chats repo.ChatRepository, users repo.UserRepository, notifier Notifier, logger *zap.Logger) MessageService {
	return &messageService{
		messages: messages,
		chats:    chats,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// SendMessage stores the message and only then emits the live event, so
// a client refreshing after the event always finds the message present.
func (s *messageService) SendMessage(ctx context.Context, chatID, senderID int64, content string) (*model.Message, error) {
	if content == "" {
		return nil, NewError(http.StatusBadRequest, "message content is required")
	}

	member, err := s.chats.IsMember(ctx, chatID, senderID)
	if err != nil {
		s.logger.Error("failed to check membership", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to send message")
	}
	if !member {
		return nil, NewError(http.StatusForbidden, "you are not a member of this chat")
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		s.logger.Error("failed to load sender", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to send message")
	}

	msg := &model.Message{
		ChatID:     chatID,
		SenderID:   senderID,
		SenderName: sender.Username,
		Content:    content,
	}
	if err := s.messages.InsertMessage(ctx, msg); err != nil {
		s.logger.Error("failed to insert message", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to send message")
	}

	s.notifier.EmitNewMessage(chatID, msg)
	return msg, nil
}

// DeleteMessage removes a message its sender owns and emits the
// deletion to the chat's subscribers.
func (s *messageService) DeleteMessage(ctx context.Context, chatID, userID, messageID int64) error {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repo.ErrMessageNotFound) {
			return NewError(http.StatusNotFound, "message not found")
		}
		s.logger.Error("failed to load message", zap.Error(err))
		return NewError(http.StatusInternalServerError, "failed to delete message")
	}
	if msg.ChatID != chatID {
		return NewError(http.StatusBadRequest, "message does not belong to this chat")
	}
	if msg.SenderID != userID {
		return NewError(http.StatusForbidden, "you can only delete your own messages")
	}

	if err := s.messages.DeleteMessage(ctx, messageID); err != nil {
		s.logger.Error("failed to delete message", zap.Error(err))
		return NewError(http.StatusInternalServerError, "failed to delete message")
	}

	s.notifier.EmitMessageDeleted(chatID, messageID)
	return nil
}

func (s *messageService) GetChatMessages(ctx context.Context, userID, chatID, page int64) (*db.PaginatedResult[model.Message], error) {
	member, err := s.chats.IsMember(ctx, chatID, userID)
	if err != nil {
		s.logger.Error("failed to check membership", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to get messages")
	}
	if !member {
		return nil, NewError(http.StatusForbidden, "you are not a member of this chat")
	}

	return s.messages.ListChatMessages(ctx, chatID, page)
}
