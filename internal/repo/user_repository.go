package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Chatline/internal/db"
	"Chatline/internal/model"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already registered")
)

const usersSequence = "users"

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByIDs(ctx context.Context, userIDs []int64) ([]model.User, error)
}

type userRepository struct {
	con       *mongo.Database
	mongoRepo *db.Repository[model.User]
}

func NewUserRepository(con *mongo.Database, mongoRepo *db.Repository[model.User]) UserRepository {
	return &userRepository{con: con, mongoRepo: mongoRepo}
}

// CreateUser assigns the next numeric identity and stores the user.
// Email uniqueness is checked first; the unique index on email catches
// the race between check and insert.
func (r *userRepository) CreateUser(ctx context.Context, user *model.User) error {
	taken, err := r.mongoRepo.Exists(ctx, db.NewFilter().Eq("email", user.Email).Build())
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}

	userID, err := db.NextSequence(ctx, r.con, usersSequence)
	if err != nil {
		return fmt.Errorf("failed to allocate user id: %w", err)
	}
	user.UserID = userID
	user.CreatedAt = time.Now().UTC()

	if _, err := r.mongoRepo.Create(ctx, *user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("email", email).Build())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	user, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("user_id", userID).Build())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, userIDs []int64) ([]model.User, error) {
	users, err := r.mongoRepo.FindAll(ctx, db.NewFilter().In("user_id", userIDs).Build())
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	return users, nil
}
