package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// idPattern matches 24-character hex object identifiers as issued by the
// document store.
var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// ErrInvalidID is the message surfaced for malformed identifiers.
const ErrInvalidID = "Invalid ID format"

// ProjectID represents a validated project identifier.
type ProjectID struct {
	value string
}

// NewProjectID creates a ProjectID from a string value.
// Returns an error if the value is not a well-formed store identifier.
func NewProjectID(value string) (ProjectID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ProjectID{}, fmt.Errorf("project ID cannot be empty")
	}
	if !idPattern.MatchString(value) {
		return ProjectID{}, fmt.Errorf("%s: %s", ErrInvalidID, value)
	}
	return ProjectID{value: value}, nil
}

// MustProjectID creates a ProjectID or panics if invalid. Use only in tests.
func MustProjectID(value string) ProjectID {
	id, err := NewProjectID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation of the ProjectID.
func (id ProjectID) String() string {
	return id.value
}

// IsZero returns true if the ProjectID is empty.
func (id ProjectID) IsZero() bool {
	return id.value == ""
}

// Equals checks if two ProjectIDs are equal.
func (id ProjectID) Equals(other ProjectID) bool {
	return id.value == other.value
}

// UserID represents a validated user identifier.
type UserID struct {
	value string
}

// NewUserID creates a UserID from a string value.
func NewUserID(value string) (UserID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return UserID{}, fmt.Errorf("user ID cannot be empty")
	}
	if !idPattern.MatchString(value) {
		return UserID{}, fmt.Errorf("%s: %s", ErrInvalidID, value)
	}
	return UserID{value: value}, nil
}

// MustUserID creates a UserID or panics if invalid. Use only in tests.
func MustUserID(value string) UserID {
	id, err := NewUserID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation of the UserID.
func (id UserID) String() string {
	return id.value
}

// IsZero returns true if the UserID is empty.
func (id UserID) IsZero() bool {
	return id.value == ""
}

// Equals checks if two UserIDs are equal.
func (id UserID) Equals(other UserID) bool {
	return id.value == other.value
}

// MilestoneID represents a validated milestone identifier.
type MilestoneID struct {
	value string
}

// NewMilestoneID creates a MilestoneID from a string value.
func NewMilestoneID(value string) (MilestoneID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return MilestoneID{}, fmt.Errorf("milestone ID cannot be empty")
	}
	if !idPattern.MatchString(value) {
		return MilestoneID{}, fmt.Errorf("%s: %s", ErrInvalidID, value)
	}
	return MilestoneID{value: value}, nil
}

// MustMilestoneID creates a MilestoneID or panics if invalid. Use only in tests.
func MustMilestoneID(value string) MilestoneID {
	id, err := NewMilestoneID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation of the MilestoneID.
func (id MilestoneID) String() string {
	return id.value
}

// IsZero returns true if the MilestoneID is empty.
func (id MilestoneID) IsZero() bool {
	return id.value == ""
}

// Equals checks if two MilestoneIDs are equal.
func (id MilestoneID) Equals(other MilestoneID) bool {
	return id.value == other.value
}
