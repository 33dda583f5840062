package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrTokenNotFound = errors.New("login token not found")
	ErrTokenExpired  = errors.New("login token expired")
	ErrTokenUsed     = errors.New("login token already used")

	ErrSessionNotFound = errors.New("session not found")
)

// UserRepo manages accounts, magic-link tokens, and sessions.
type UserRepo struct {
	db *gorm.DB
}

// GetOrCreateByEmail returns the user for an email, creating it on first
// sign-in.
func (r *UserRepo) GetOrCreateByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).
		Where(User{Email: email}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("get or create user: %w", err)
	}
	return &user, nil
}

// CreateLoginToken stores a magic-link token for the user.
func (r *UserRepo) CreateLoginToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	t := LoginToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return fmt.Errorf("create login token: %w", err)
	}
	return nil
}

// ConsumeLoginToken validates and burns a magic-link token, returning its
// user. Expired and already-used tokens fail with sentinel errors.
func (r *UserRepo) ConsumeLoginToken(ctx context.Context, token string) (*User, error) {
	var user User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t LoginToken
		err := tx.Where("token = ?", token).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return err
		}

		now := time.Now()
		if t.UsedAt != nil {
			return ErrTokenUsed
		}
		if now.After(t.ExpiresAt) {
			return ErrTokenExpired
		}

		if err := tx.Model(&t).Update("used_at", now).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", t.UserID).First(&user).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("last_login_at", now).Error
	})
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) || errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenUsed) {
			return nil, err
		}
		return nil, fmt.Errorf("consume login token: %w", err)
	}
	return &user, nil
}

// CreateSession stores a browser session token.
func (r *UserRepo) CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) (*Session, error) {
	s := Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &s, nil
}

// FindSession returns the live session for a token. Expired sessions are
// deleted on sight and reported as not found.
func (r *UserRepo) FindSession(ctx context.Context, token string) (*Session, error) {
	var s Session
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	if time.Now().After(s.ExpiresAt) {
		if derr := r.db.WithContext(ctx).Delete(&s).Error; derr != nil {
			return nil, fmt.Errorf("delete expired session: %w", derr)
		}
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// DeleteSession removes a session by token.
func (r *UserRepo) DeleteSession(ctx context.Context, token string) error {
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&Session{}).Error
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
