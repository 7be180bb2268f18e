// Package domain contains account and session models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// User is an account that can sign in. Customers are linked to their
// invoices by phone number, not by a foreign key.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	ExternalID   string       `gorm:"type:text;not null;uniqueIndex" json:"externalId"`
	Username     string       `gorm:"type:text;not null;uniqueIndex" json:"username"`
	PasswordHash string       `gorm:"type:text;not null" json:"-"`
	Role         Role         `gorm:"type:text;not null;default:'customer'" json:"role"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Phone        string       `gorm:"type:text;not null;default:''" json:"phone"`
	Email        string       `gorm:"type:text;not null;default:''" json:"email"`
	Address      string       `gorm:"type:text;not null;default:''" json:"address"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session is a server-side login session. Only the SHA-256 of the bearer
// token is stored; the raw token is returned once at login.
type Session struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	UserID     snowflake.ID `gorm:"not null;index"`
	TokenHash  string       `gorm:"type:text;not null;uniqueIndex"`
	ExpiresAt  time.Time    `gorm:"not null"`
	RevokedAt  *time.Time
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
