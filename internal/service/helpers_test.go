package service

import (
	"context"
	"sync/atomic"

	"Chatline/internal/db"
	"Chatline/internal/model"
	"Chatline/internal/repo"
)

// In-memory repository fakes backing the service tests. They keep the
// same not-found sentinels as the mongo-backed implementations so the
// error mapping paths behave identically.

type fakeUserRepo struct {
	users map[int64]model.User
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int64]model.User)}
	for _, u := range users {
		r.users[u.UserID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repo.ErrEmailTaken
		}
	}
	user.UserID = int64(len(r.users) + 1)
	r.users[user.UserID] = *user
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, userID int64) (*model.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	out := u
	return &out, nil
}

func (r *fakeUserRepo) FindByIDs(_ context.Context, userIDs []int64) ([]model.User, error) {
	var out []model.User
	for _, id := range userIDs {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeChatRepo struct {
	chats  map[int64]model.Chat
	nextID int64
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[int64]model.Chat)}
}

func (r *fakeChatRepo) CreateChat(_ context.Context, chat *model.Chat) error {
	r.nextID++
	chat.ChatID = r.nextID
	chat.MemberIDs = chat.MemberIDs[:0]
	for _, m := range chat.Members {
		chat.MemberIDs = append(chat.MemberIDs, m.UserID)
	}
	r.chats[chat.ChatID] = *chat
	return nil
}

func (r *fakeChatRepo) FindByID(_ context.Context, chatID int64) (*model.Chat, error) {
	c, ok := r.chats[chatID]
	if !ok {
		return nil, repo.ErrChatNotFound
	}
	out := c
	return &out, nil
}

func (r *fakeChatRepo) FindPrivateChatBetween(_ context.Context, userID, otherUserID int64) (*model.Chat, error) {
	for _, c := range r.chats {
		if c.ChatType != model.ChatTypePrivate {
			continue
		}
		if hasMember(c.MemberIDs, userID) && hasMember(c.MemberIDs, otherUserID) {
			out := c
			return &out, nil
		}
	}
	return nil, repo.ErrChatNotFound
}

func (r *fakeChatRepo) FindUserChats(_ context.Context, userID int64) ([]model.Chat, error) {
	var out []model.Chat
	for _, c := range r.chats {
		if hasMember(c.MemberIDs, userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) IsMember(_ context.Context, chatID, userID int64) (bool, error) {
	c, ok := r.chats[chatID]
	if !ok {
		return false, nil
	}
	return hasMember(c.MemberIDs, userID), nil
}

func (r *fakeChatRepo) DeleteChat(_ context.Context, chatID int64) error {
	if _, ok := r.chats[chatID]; !ok {
		return repo.ErrChatNotFound
	}
	delete(r.chats, chatID)
	return nil
}

func hasMember(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type fakeMessageRepo struct {
	messages map[int64]model.Message
	nextID   atomic.Int64

	insertErr error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[int64]model.Message)}
}

func (r *fakeMessageRepo) InsertMessage(_ context.Context, msg *model.Message) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	msg.MessageID = r.nextID.Add(1)
	r.messages[msg.MessageID] = *msg
	return nil
}

func (r *fakeMessageRepo) FindByID(_ context.Context, messageID int64) (*model.Message, error) {
	m, ok := r.messages[messageID]
	if !ok {
		return nil, repo.ErrMessageNotFound
	}
	out := m
	return &out, nil
}

func (r *fakeMessageRepo) ListChatMessages(_ context.Context, chatID int64, page int64) (*db.PaginatedResult[model.Message], error) {
	var data []model.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			data = append(data, m)
		}
	}
	return &db.PaginatedResult[model.Message]{
		Data:       data,
		Total:      int64(len(data)),
		Page:       page,
		PageSize:   int64(len(data)),
		TotalPages: 1,
	}, nil
}

func (r *fakeMessageRepo) DeleteMessage(_ context.Context, messageID int64) error {
	if _, ok := r.messages[messageID]; !ok {
		return repo.ErrMessageNotFound
	}
	delete(r.messages, messageID)
	return nil
}

func (r *fakeMessageRepo) DeleteChatMessages(_ context.Context, chatID int64) error {
	for id, m := range r.messages {
		if m.ChatID == chatID {
			delete(r.messages, id)
		}
	}
	return nil
}

// recordingNotifier captures every emit so tests can assert that live
// events fire only after a durable write, and only for the right users.
type recordingNotifier struct {
	newMessages []struct {
		ChatID  int64
		Message *model.Message
	}
	deletedMessages []struct {
		ChatID    int64
		MessageID int64
	}
	newChats []struct {
		UserID int64
		Chat   model.ChatResponse
	}
	deletedChats []struct {
		ChatID  int64
		UserIDs []int64
	}
}

func (n *recordingNotifier) EmitNewMessage(chatID int64, message *model.Message) {
	n.newMessages = append(n.newMessages, struct {
		ChatID  int64
		Message *model.Message
	}{chatID, message})
}

func (n *recordingNotifier) EmitMessageDeleted(chatID, messageID int64) {
	n.deletedMessages = append(n.deletedMessages, struct {
		ChatID    int64
		MessageID int64
	}{chatID, messageID})
}

func (n *recordingNotifier) EmitNewChat(userID int64, chat model.ChatResponse) {
	n.newChats = append(n.newChats, struct {
		UserID int64
		Chat   model.ChatResponse
	}{userID, chat})
}

func (n *recordingNotifier) EmitChatDeleted(chatID int64, userIDs []int64) {
	n.deletedChats = append(n.deletedChats, struct {
		ChatID  int64
		UserIDs []int64
	}{chatID, userIDs})
}
