package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user document in MongoDB. UserID is the numeric
// identity carried in tokens and wire events; the ObjectID is internal
// to the store.
type User struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID       int64              `json:"id" bson:"user_id"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
}

// PublicUser is the shape of a user embedded in API responses.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Public strips everything clients of other users may not see.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.UserID, Username: u.Username}
}
