package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"together-backend/internal/entity"
	"together-backend/internal/models"
	"together-backend/internal/store"
)

// ErrNotFound is returned when a lookup does not resolve to a record.
var ErrNotFound = errors.New("not found")

// UserRepository persists users in the document store.
type UserRepository struct {
	users *entity.Accessor
}

// NewUserRepository creates a new user repository
func NewUserRepository(reg *entity.Registry) *UserRepository {
	return &UserRepository{users: reg.Accessor(entity.Users)}
}

// Create creates a new user and fills in the store-assigned ID.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	doc, err := r.users.Create(ctx, userDoc(user))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = doc.ID()
	return nil
}

// SetToken stores the issued auth token on the user record.
func (r *UserRepository) SetToken(ctx context.Context, userID, token string) error {
	_, err := r.users.Update(ctx, userID, map[string]any{"token": token})
	if err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := r.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userFromDoc(doc), nil
}

// GetByCode retrieves a user by pairing code
func (r *UserRepository) GetByCode(ctx context.Context, code string) (*models.User, error) {
	docs, err := r.users.Find(ctx, store.Filter{"code": code}, "", 1)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by code: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return userFromDoc(docs[0]), nil
}

// CodeExists reports whether a pairing code is already taken
func (r *UserRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	docs, err := r.users.Find(ctx, store.Filter{"code": code}, "", 1)
	if err != nil {
		return false, fmt.Errorf("failed to check code: %w", err)
	}
	return len(docs) > 0, nil
}

// UpdatePushToken stores the device push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID, pushToken string) error {
	_, err := r.users.Update(ctx, userID, map[string]any{"push_token": pushToken})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

func userDoc(user *models.User) map[string]any {
	doc := map[string]any{
		"display_name": user.DisplayName,
		"code":         user.Code,
		"token":        user.Token,
		"created_at":   user.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if user.PushToken != nil {
		doc["push_token"] = *user.PushToken
	}
	return doc
}

func userFromDoc(doc store.Document) *models.User {
	user := &models.User{
		ID:          doc.ID(),
		DisplayName: docString(doc, "display_name"),
		Code:        docString(doc, "code"),
		Token:       docString(doc, "token"),
		CreatedAt:   docTime(doc, "created_at"),
	}
	if token := docString(doc, "push_token"); token != "" {
		user.PushToken = &token
	}
	return user
}

func docString(doc store.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

func docTime(doc store.Document, key string) time.Time {
	s, _ := doc[key].(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
