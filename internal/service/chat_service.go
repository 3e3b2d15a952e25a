package service

import (
	"context"
	"errors"
	"net/http"

	"Chatline/internal/model"
	"Chatline/internal/repo"

	"go.uber.org/zap"
)

type ChatService interface {
	CreatePrivateChat(ctx context.Context, userID, otherUserID int64) (*model.ChatResponse, error)
	CreateGroupChat(ctx context.Context, userID int64, name string, memberIDs []int64) (*model.ChatResponse, error)
	GetUserChats(ctx context.Context, userID int64) ([]model.ChatResponse, error)
	DeleteChat(ctx context.Context, chatID, userID int64) error
}

type chatService struct {
	chats    repo.ChatRepository
	messages repo.MessageRepository
	users    repo.UserRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewChatService(chats repo.ChatRepository, messages repo.MessageRepository, users repo.UserRepository, notifier Notifier, logger *zap.Logger) ChatService {
	return &chatService{
		chats:    chats,
		messages: messages,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// CreatePrivateChat returns the existing private chat between the pair
// when one exists, otherwise creates it and notifies both members. Only
// a freshly created chat is announced.
func (s *chatService) CreatePrivateChat(ctx context.Context, userID, otherUserID int64) (*model.ChatResponse, error) {
	if otherUserID <= 0 || otherUserID == userID {
		return nil, NewError(http.StatusBadRequest, "invalid other user id")
	}

	existing, err := s.chats.FindPrivateChatBetween(ctx, userID, otherUserID)
	if err == nil {
		resp := existing.Response(userID)
		return &resp, nil
	}
	if !errors.Is(err, repo.ErrChatNotFound) {
		s.logger.Error("failed to look up private chat", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to create chat")
	}

	users, err := s.users.FindByIDs(ctx, []int64{userID, otherUserID})
	if err != nil {
		s.logger.Error("failed to load chat members", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to create chat")
	}
	if len(users) != 2 {
		return nil, NewError(http.StatusNotFound, "one or more users not found")
	}

	chat := &model.Chat{
		ChatType:  model.ChatTypePrivate,
		CreatedBy: userID,
		Members:   membersFromUsers(users, nil),
	}
	if err := s.chats.CreateChat(ctx, chat); err != nil {
		s.logger.Error("failed to create private chat", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to create chat")
	}

	// Post-commit fan-out; live delivery never fails the request.
	s.notifier.EmitNewChat(userID, chat.Response(userID))
	s.notifier.EmitNewChat(otherUserID, chat.Response(otherUserID))

	resp := chat.Response(userID)
	return &resp, nil
}

// CreateGroupChat creates a group with the caller as admin. Duplicate
// member ids and listing oneself are rejected.
func (s *chatService) CreateGroupChat(ctx context.Context, userID int64, name string, memberIDs []int64) (*model.ChatResponse, error) {
	if name == "" {
		return nil, NewError(http.StatusBadRequest, "group name is required")
	}
	if len(memberIDs) == 0 {
		return nil, NewError(http.StatusBadRequest, "at least one member is required")
	}

	seen := make(map[int64]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		if id <= 0 || id == userID {
			return nil, NewError(http.StatusBadRequest, "duplicate or invalid member ids provided")
		}
		if _, dup := seen[id]; dup {
			return nil, NewError(http.StatusBadRequest, "duplicate or invalid member ids provided")
		}
		seen[id] = struct{}{}
	}

	allIDs := append([]int64{userID}, memberIDs...)
	users, err := s.users.FindByIDs(ctx, allIDs)
	if err != nil {
		s.logger.Error("failed to load chat members", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to create chat")
	}
	if len(users) != len(allIDs) {
		return nil, NewError(http.StatusNotFound, "one or more users not found")
	}

	chat := &model.Chat{
		ChatType:  model.ChatTypeGroup,
		Name:      name,
		CreatedBy: userID,
		Members:   membersFromUsers(users, map[int64]string{userID: model.RoleAdmin}),
	}
	if err := s.chats.CreateChat(ctx, chat); err != nil {
		s.logger.Error("failed to create group chat", zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to create chat")
	}

	for _, memberID := range allIDs {
		s.notifier.EmitNewChat(memberID, chat.Response(memberID))
	}

	resp := chat.Response(userID)
	return &resp, nil
}

func (s *chatService) GetUserChats(ctx context.Context, userID int64) ([]model.ChatResponse, error) {
	chats, err := s.chats.FindUserChats(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list chats", zap.Int64("user_id", userID), zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "failed to list chats")
	}
	responses := make([]model.ChatResponse, 0, len(chats))
	for i := range chats {
		responses = append(responses, chats[i].Response(userID))
	}
	return responses, nil
}

// DeleteChat removes the chat and its messages, then notifies the
// members captured before the delete: their membership rows are gone by
// the time the event goes out, so the user list travels explicitly.
func (s *chatService) DeleteChat(ctx context.Context, chatID, userID int64) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repo.ErrChatNotFound) {
			return NewError(http.StatusNotFound, "chat not found")
		}
		s.logger.Error("failed to load chat", zap.Error(err))
		return NewError(http.StatusInternalServerError, "failed to delete chat")
	}

	switch chat.ChatType {
	case model.ChatTypeGroup:
		if chat.CreatedBy != userID {
			return NewError(http.StatusForbidden, "you are not authorized to delete this group chat")
		}
	default:
		if !containsID(chat.MemberIDs, userID) {
			return NewError(http.StatusForbidden, "you are not a member of this chat")
		}
	}

	memberIDs := append([]int64(nil), chat.MemberIDs...)

	if err := s.chats.DeleteChat(ctx, chatID); err != nil {
		s.logger.Error("failed to delete chat", zap.Error(err))
		return NewError(http.StatusInternalServerError, "failed to delete chat")
	}
	if err := s.messages.DeleteChatMessages(ctx, chatID); err != nil {
		// The chat is gone; orphaned messages are logged, not surfaced.
		s.logger.Error("failed to delete chat messages", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	s.notifier.EmitChatDeleted(chatID, memberIDs)
	return nil
}

func membersFromUsers(users []model.User, roles map[int64]string) []model.ChatMember {
	members := make([]model.ChatMember, 0, len(users))
	for i := range users {
		role := model.RoleMember
		if r, ok := roles[users[i].UserID]; ok {
			role = r
		}
		members = append(members, model.ChatMember{
			UserID:   users[i].UserID,
			Username: users[i].Username,
			Role:     role,
		})
	}
	return members
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
