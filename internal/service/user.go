// FILE: internal/service/user.go
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"

	"chesstrainer/internal/storage"
)

// User represents a registered user account
type User struct {
	UserID    string
	Username  string
	Email     string
	CreatedAt time.Time
}

// CreateUser creates new user with transactional consistency
func (s *Service) CreateUser(username, email, password string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.generateUniqueUserID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate unique ID: %w", err)
	}

	user := &User{
		UserID:    userID,
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	record := storage.UserRecord{
		UserID:       userID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    user.CreatedAt,
	}

	if err = s.store.CreateUser(record); err != nil {
		return nil, err
	}

	return user, nil
}

// AuthenticateUser verifies user credentials and returns user information
func (s *Service) AuthenticateUser(identifier, password string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	var userRecord *storage.UserRecord
	var err error

	if strings.Contains(identifier, "@") {
		userRecord, err = s.store.GetUserByEmail(identifier)
	} else {
		userRecord, err = s.store.GetUserByUsername(identifier)
	}

	if err != nil {
		// Always hash to prevent timing attacks
		auth.HashPassword(password)
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := auth.VerifyPassword(password, userRecord.PasswordHash); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return &User{
		UserID:    userRecord.UserID,
		Username:  userRecord.Username,
		Email:     userRecord.Email,
		CreatedAt: userRecord.CreatedAt,
	}, nil
}

// UpdateLastLogin updates the last login timestamp for a user
func (s *Service) UpdateLastLogin(userID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	return s.store.UpdateUserLastLogin(userID, time.Now().UTC())
}

// GetUserByID retrieves user information by user ID
func (s *Service) GetUserByID(userID string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	userRecord, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	return &User{
		UserID:    userRecord.UserID,
		Username:  userRecord.Username,
		Email:     userRecord.Email,
		CreatedAt: userRecord.CreatedAt,
	}, nil
}

// RegisterSession records the auth session row for a fresh login
func (s *Service) RegisterSession(userID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}

	now := time.Now().UTC()
	return s.store.CreateSession(storage.SessionRecord{
		SessionID: uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	})
}

// Logout removes the auth session rows for a user
func (s *Service) Logout(userID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	return s.store.DeleteSessionByUserID(userID)
}

// GenerateUserToken creates a JWT token for the specified user
func (s *Service) GenerateUserToken(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}

	claims := map[string]any{
		"username": user.Username,
		"email":    user.Email,
	}

	return auth.GenerateHS256Token(s.jwtSecret, userID, claims, SessionTTL)
}

// ValidateToken verifies JWT token and returns user ID with claims
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	return auth.ValidateHS256Token(s.jwtSecret, token)
}

// generateUniqueUserID creates a unique user ID with collision detection
func (s *Service) generateUniqueUserID() (string, error) {
	const maxAttempts = 10

	for i := 0; i < maxAttempts; i++ {
		id := uuid.New().String()

		// Lookup error means not found, so the ID is free
		if _, err := s.store.GetUserByID(id); err != nil {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique user ID after %d attempts", maxAttempts)
}
