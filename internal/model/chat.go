package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat kinds
const (
	ChatTypePrivate = "private"
	ChatTypeGroup   = "group"
)

// Chat member roles
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Chat represents a chat document in MongoDB. MemberIDs duplicates the
// ids inside Members so membership queries stay a single $in match.
type Chat struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ChatID    int64              `json:"id" bson:"chat_id"`
	ChatType  string             `json:"chat_type" bson:"chat_type"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	CreatedBy int64              `json:"-" bson:"created_by"`
	Members   []ChatMember       `json:"-" bson:"members"`
	MemberIDs []int64            `json:"-" bson:"member_ids"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// ChatMember is a user's membership inside a chat.
type ChatMember struct {
	UserID   int64     `json:"id" bson:"user_id"`
	Username string    `json:"username" bson:"username"`
	Role     string    `json:"role" bson:"role"`
	JoinedAt time.Time `json:"joinedAt" bson:"joined_at"`
}

// ChatResponse is the chat shape returned over REST and pushed in
// chat:new events: the member list excludes the viewing user.
type ChatResponse struct {
	ID        int64        `json:"id"`
	ChatType  string       `json:"chat_type"`
	Name      string       `json:"name,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	CreatedBy *PublicUser  `json:"created_by"`
	Members   []PublicUser `json:"members"`
}

// Response renders the chat for a particular viewer.
func (c *Chat) Response(viewerID int64) ChatResponse {
	resp := ChatResponse{
		ID:        c.ChatID,
		ChatType:  c.ChatType,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Members:   make([]PublicUser, 0, len(c.Members)),
	}
	for i := range c.Members {
		m := &c.Members[i]
		if m.UserID == c.CreatedBy {
			resp.CreatedBy = &PublicUser{ID: m.UserID, Username: m.Username}
		}
		if m.UserID == viewerID {
			continue
		}
		resp.Members = append(resp.Members, PublicUser{ID: m.UserID, Username: m.Username})
	}
	return resp
}
