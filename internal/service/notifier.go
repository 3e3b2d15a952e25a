package service

import "Chatline/internal/model"

// Notifier is the live-delivery surface the services call after a
// durable write succeeds. Every call is fire-and-forget: whatever
// happens downstream must never fail the request that triggered it.
// hub.Dispatcher is the production implementation.
type Notifier interface {
	EmitNewMessage(chatID int64, message *model.Message)
	EmitMessageDeleted(chatID, messageID int64)
	EmitNewChat(userID int64, chat model.ChatResponse)
	EmitChatDeleted(chatID int64, userIDs []int64)
}
