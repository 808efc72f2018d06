// Package domain contains entity without logic, just meta-data
package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxUsernameLen = 36
)

type ConnectionID string

// Session is one admitted connection and the display name it holds.
type Session struct {
	ID       ConnectionID `json:"-"`
	Username string       `json:"username"`
}

// NormalizeUsername trims the requested name and checks its length.
func NormalizeUsername(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrUsernameEmpty
	}
	if utf8.RuneCountInString(name) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	return name, nil
}
