package hub

import (
	"encoding/json"

	"Chatline/internal/event"

	"go.uber.org/zap"
)

// handleEvent dispatches one inbound envelope through an explicit
// switch over the known event kinds. Unknown names are logged and
// dropped; a malformed payload drops the event, not the connection.
func (h *Hub) handleEvent(env event.Envelope, c *Client) {
	switch env.Event {
	case event.EventJoinChat:
		var p event.JoinChatPayload
		if !h.decode(env, &p, c) {
			return
		}
		h.rooms.Join(c, ChatRoom(p.ChatID))
		c.logger.Info("joined chat", zap.Int64("chat_id", p.ChatID))
		c.Send(event.Outbound(event.EventJoinedChat, event.JoinChatPayload{ChatID: p.ChatID}))

	case event.EventJoinChats:
		var p event.JoinChatsPayload
		if !h.decode(env, &p, c) {
			return
		}
		rooms := make([]string, 0, len(p.ChatIDs))
		for _, chatID := range p.ChatIDs {
			rooms = append(rooms, ChatRoom(chatID))
		}
		h.rooms.JoinMany(c, rooms)
		c.logger.Info("joined chats", zap.Int64s("chat_ids", p.ChatIDs))
		c.Send(event.Outbound(event.EventJoinedChats, event.JoinChatsPayload{ChatIDs: p.ChatIDs}))

	case event.EventLeaveChat:
		var p event.JoinChatPayload
		if !h.decode(env, &p, c) {
			return
		}
		h.rooms.Leave(c, ChatRoom(p.ChatID))
		c.logger.Info("left chat", zap.Int64("chat_id", p.ChatID))
		c.Send(event.Outbound(event.EventLeftChat, event.JoinChatPayload{ChatID: p.ChatID}))

	case event.EventTypingStart:
		var p event.TypingPayload
		if !h.decode(env, &p, c) {
			return
		}
		h.broadcastToRoom(ChatRoom(p.ChatID), event.Outbound(event.EventUserTyping, event.UserTypingPayload{
			UserID: c.userID,
			ChatID: p.ChatID,
		}), c)

	case event.EventTypingStop:
		var p event.TypingPayload
		if !h.decode(env, &p, c) {
			return
		}
		h.broadcastToRoom(ChatRoom(p.ChatID), event.Outbound(event.EventUserStoppedTyping, event.UserTypingPayload{
			UserID: c.userID,
			ChatID: p.ChatID,
		}), c)

	case event.EventMessageRead:
		var p event.MessageReadPayload
		if !h.decode(env, &p, c) {
			return
		}
		h.broadcastToRoom(ChatRoom(p.ChatID), event.Outbound(event.EventMessageReadStatus, event.ReadStatusPayload{
			MessageID: p.MessageID,
			UserID:    c.userID,
			Status:    "read",
		}), c)

	default:
		c.logger.Warn("unknown event type", zap.String("event", env.Event))
	}
}

func (h *Hub) decode(env event.Envelope, payload any, c *Client) bool {
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		c.logger.Warn("malformed payload",
			zap.String("event", env.Event),
			zap.Error(err),
		)
		return false
	}
	return true
}
