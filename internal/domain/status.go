package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a conversation. Only StatusActive is
// writable; archived and deleted conversations have no way back.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// ParseStatus accepts the three status names, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

func (s Status) IsActive() bool   { return s == StatusActive }
func (s Status) IsArchived() bool { return s == StatusArchived }
func (s Status) IsDeleted() bool  { return s == StatusDeleted }

// IsWritable reports whether messages and title edits are accepted.
func (s Status) IsWritable() bool { return s == StatusActive }

func (s Status) String() string { return string(s) }
