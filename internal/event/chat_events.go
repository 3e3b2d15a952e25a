package event

// Event Types - Client to Server
const (
	// EventJoinChat - subscribe this connection to one chat room
	EventJoinChat = "join:chat"

	// EventJoinChats - bulk subscribe, used by clients after a reconnect
	EventJoinChats = "join:chats"

	// EventLeaveChat - unsubscribe this connection from a chat room
	EventLeaveChat = "leave:chat"

	// EventTypingStart - sender started typing in a chat
	EventTypingStart = "typing:start"

	// EventTypingStop - sender stopped typing in a chat
	EventTypingStop = "typing:stop"

	// EventMessageRead - sender read a message in a chat
	EventMessageRead = "message:read"
)

// Event Types - Server to Client
const (
	// EventConnectionReady - sent once after a connection is admitted;
	// tells the client to re-issue its chat joins
	EventConnectionReady = "connection:ready"

	// EventJoinedChat - acknowledgment for EventJoinChat
	EventJoinedChat = "joined:chat"

	// EventJoinedChats - acknowledgment for EventJoinChats
	EventJoinedChats = "joined:chats"

	// EventLeftChat - acknowledgment for EventLeaveChat
	EventLeftChat = "left:chat"

	// EventUserTyping - a peer started typing
	EventUserTyping = "user:typing"

	// EventUserStoppedTyping - a peer stopped typing
	EventUserStoppedTyping = "user:stopped-typing"

	// EventMessageReadStatus - a peer read a message
	EventMessageReadStatus = "message:read-status"

	// EventMessageNew - a message was stored in a chat
	EventMessageNew = "message:new"

	// EventMessageDeleted - a message was removed from a chat
	EventMessageDeleted = "message:deleted"

	// EventChatNew - a chat involving this user was created
	EventChatNew = "chat:new"

	// EventChatDeleted - a chat involving this user was deleted
	EventChatDeleted = "chat:deleted"
)

// JoinChatPayload is the payload of join:chat and leave:chat.
type JoinChatPayload struct {
	ChatID int64 `json:"chatId"`
}

// JoinChatsPayload is the payload of join:chats.
type JoinChatsPayload struct {
	ChatIDs []int64 `json:"chatIds"`
}

// TypingPayload is the payload of typing:start and typing:stop.
type TypingPayload struct {
	ChatID int64 `json:"chatId"`
}

// MessageReadPayload is the payload of message:read.
type MessageReadPayload struct {
	MessageID int64 `json:"messageId"`
	ChatID    int64 `json:"chatId"`
}

// ConnectionReadyPayload is the payload of connection:ready.
type ConnectionReadyPayload struct {
	UserID  int64  `json:"userId"`
	ConnID  string `json:"connId"`
	Message string `json:"message"`
}

// UserTypingPayload is the payload of user:typing and user:stopped-typing.
type UserTypingPayload struct {
	UserID int64 `json:"userId"`
	ChatID int64 `json:"chatId"`
}

// ReadStatusPayload is the payload of message:read-status.
type ReadStatusPayload struct {
	MessageID int64  `json:"messageId"`
	UserID    int64  `json:"userId"`
	Status    string `json:"status"`
}

// MessageDeletedPayload is the payload of message:deleted.
type MessageDeletedPayload struct {
	ChatID    int64 `json:"chatId"`
	MessageID int64 `json:"messageId"`
}

// ChatDeletedPayload is the payload of chat:deleted.
type ChatDeletedPayload struct {
	ChatID int64 `json:"chatId"`
}
