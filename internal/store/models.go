package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Request is one deduplicated lesson request. InputHash is the canonical
// SHA-256 of the normalized (subject, audience, duration) triple; the unique
// index closes the check-then-insert race between concurrent identical
// requests.
type Request struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	InputHash string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"input_hash"`
	Subject   string    `gorm:"not null" json:"subject"`
	Audience  string    `gorm:"type:varchar(16);not null" json:"audience"`
	Duration  string    `gorm:"type:varchar(16);not null" json:"duration"`
	Lessons   []Lesson  `gorm:"foreignKey:RequestID" json:"lessons,omitempty"`
}

func (Request) TableName() string { return "requests" }

func (r *Request) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Lesson is a generated lesson artifact belonging to a Request.
type Lesson struct {
	ID         string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt  time.Time                   `gorm:"not null" json:"created_at"`
	RequestID  string                      `gorm:"type:varchar(36);not null;index" json:"request_id"`
	Request    *Request                    `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	Title      string                      `gorm:"not null" json:"title"`
	ContentMD  string                      `gorm:"column:content_md;type:text;not null" json:"content_md"`
	Objectives datatypes.JSONSlice[string] `gorm:"column:objectives" json:"objectives"`
	Plan       datatypes.JSONSlice[string] `gorm:"column:plan" json:"plan"`
}

func (Lesson) TableName() string { return "lessons" }

func (l *Lesson) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// User is an account identified by email only; sign-in is passwordless.
type User struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	Email       string     `gorm:"not null;uniqueIndex" json:"email"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// LoginToken is a single-use magic-link token.
type LoginToken struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UserID    string     `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Token     string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

func (LoginToken) TableName() string { return "login_tokens" }

func (t *LoginToken) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Session is a server-side browser session.
type Session struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Token     string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

func (Session) TableName() string { return "sessions" }

func (s *Session) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
