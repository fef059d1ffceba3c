// Package domain contains core domain types for the JobLink dashboard.
package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// User is the job seeker identity returned by the identity endpoint.
// The shell never mutates a User; a refresh replaces it wholesale.
type User struct {
	ID               int      `json:"id"`
	Email            string   `json:"email"`
	Name             string   `json:"name,omitempty"`
	UserType         string   `json:"user_type,omitempty"`
	EmailVerified    bool     `json:"email_verified,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	HasResume        bool     `json:"has_resume,omitempty"`
	ApplicationCount int      `json:"application_count,omitempty"`
	SavedCount       int      `json:"saved_count,omitempty"`
	ProfileViews     int      `json:"profile_views,omitempty"`
}

// AvatarPlaceholder is shown when no user has been resolved.
const AvatarPlaceholder = "U"

// Initial returns the upper-cased first letter of the user's email, or the
// placeholder when the user or the email is missing.
func (u *User) Initial() string {
	if u == nil {
		return AvatarPlaceholder
	}
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return AvatarPlaceholder
	}
	r, _ := utf8.DecodeRuneInString(email)
	if r == utf8.RuneError {
		return AvatarPlaceholder
	}
	return string(unicode.ToUpper(r))
}

// DisplayName prefers the name and falls back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// ShellSession is the persisted state of one browser's dashboard shell.
type ShellSession struct {
	SessionID  string    `json:"session_id"`
	ActiveView string    `json:"active_view"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IdleFor reports how long the session has been inactive.
func (s *ShellSession) IdleFor(now time.Time) time.Duration {
	idle := now.Sub(s.LastSeenAt)
	if idle < 0 {
		return 0
	}
	return idle
}
