package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message represents a chat message document in MongoDB.
type Message struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	MessageID  int64              `json:"id" bson:"message_id"`
	ChatID     int64              `json:"chat_id" bson:"chat_id"`
	SenderID   int64              `json:"sender_id" bson:"sender_id"`
	SenderName string             `json:"sender_name" bson:"sender_name"`
	Content    string             `json:"content" bson:"content"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}
