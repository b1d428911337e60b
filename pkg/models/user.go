package models

import (
	"strconv"
	"time"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Provider     string    `json:"provider" db:"provider"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (u User) Principal() Principal {
	return Principal{
		ID:          strconv.Itoa(u.ID),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

// Principal is the signed-in actor a session is bound to.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
}

// ActorName is what audit entries record as the user.
func (p *Principal) ActorName() string {
	switch {
	case p == nil:
		return "System"
	case p.DisplayName != "":
		return p.DisplayName
	case p.Email != "":
		return p.Email
	default:
		return "System"
	}
}

type SessionEventKind string

const (
	SignedIn  SessionEventKind = "signed_in"
	SignedOut SessionEventKind = "signed_out"
)

// SessionEvent is published by the auth service whenever a principal signs
// in or out.
type SessionEvent struct {
	Kind      SessionEventKind
	Principal Principal
}
