package hub

import (
	"Chatline/internal/event"
	"Chatline/internal/model"

	"go.uber.org/zap"
)

// Dispatcher is the emit API consumed by the domain services after a
// durable write. It resolves a chat id or user id to the room's current
// subscribers and pushes the event to each of them. It performs no
// storage I/O and never fails the write that triggered it: an empty
// room is a delivery gap, logged and skipped, because the recipient
// will see the data on its next fetch.
//
// Construct one Dispatcher at process start and hand it to every
// service that emits; there is no global instance to look up.
type Dispatcher struct {
	hub    *Hub
	logger *zap.Logger
}

func NewDispatcher(h *Hub, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{hub: h, logger: logger}
}

// EmitNewMessage pushes a stored message to the chat's subscribers.
func (d *Dispatcher) EmitNewMessage(chatID int64, message *model.Message) {
	room := ChatRoom(chatID)
	delivered := d.hub.broadcastToRoom(room, event.Outbound(event.EventMessageNew, message), nil)
	if delivered == 0 {
		d.logger.Warn("delivery gap: no subscribers for new message",
			zap.String("room", room),
			zap.Int64("message_id", message.MessageID),
		)
		return
	}
	d.logger.Info("new message emitted",
		zap.String("room", room),
		zap.Int64("message_id", message.MessageID),
		zap.Int("recipients", delivered),
	)
}

// EmitMessageDeleted pushes a message deletion to the chat's subscribers.
func (d *Dispatcher) EmitMessageDeleted(chatID, messageID int64) {
	room := ChatRoom(chatID)
	delivered := d.hub.broadcastToRoom(room, event.Outbound(event.EventMessageDeleted, event.MessageDeletedPayload{
		ChatID:    chatID,
		MessageID: messageID,
	}), nil)
	if delivered == 0 {
		d.logger.Warn("delivery gap: no subscribers for message deletion",
			zap.String("room", room),
			zap.Int64("message_id", messageID),
		)
	}
}

// EmitNewChat pushes a freshly created chat to one member's personal
// room. Called once per member; the chat shape is viewer-specific.
func (d *Dispatcher) EmitNewChat(userID int64, chat model.ChatResponse) {
	room := UserRoom(userID)
	delivered := d.hub.broadcastToRoom(room, event.Outbound(event.EventChatNew, chat), nil)
	if delivered == 0 {
		d.logger.Warn("delivery gap: user offline for new chat",
			zap.String("room", room),
			zap.Int64("chat_id", chat.ID),
		)
	}
}

// EmitChatDeleted pushes a chat deletion to each listed user's personal
// room. The user list is explicit because the membership rows may be
// gone by the time the chat is deleted.
func (d *Dispatcher) EmitChatDeleted(chatID int64, userIDs []int64) {
	env := event.Outbound(event.EventChatDeleted, event.ChatDeletedPayload{ChatID: chatID})
	for _, userID := range userIDs {
		d.hub.broadcastToRoom(UserRoom(userID), env, nil)
	}
	d.logger.Info("chat deletion emitted",
		zap.Int64("chat_id", chatID),
		zap.Int("users", len(userIDs)),
	)
}
