package domain

import (
	"fmt"
	"time"
)

// PreTripTask is a shared checklist entry that each member ticks off individually.
type PreTripTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	CompletedBy []string   `json:"completedBy"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// ValidateCompletedBy checks that every id in CompletedBy is on the roster.
func (t PreTripTask) ValidateCompletedBy(roster []Member) error {
	for _, id := range t.CompletedBy {
		if !HasMember(roster, id) {
			return fmt.Errorf("%w: completedBy contains unknown member %q", ErrValidation, id)
		}
	}
	return nil
}

// TodoType separates the planning lists.
type TodoType string

const (
	TodoTypeTodo     TodoType = "todo"
	TodoTypePacking  TodoType = "packing"
	TodoTypeShopping TodoType = "shopping"
)

// TodoItem is a personal to-do, packing or shopping entry.
type TodoItem struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	OwnerID   string     `json:"ownerId"`
	Type      TodoType   `json:"type"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// JournalEntry is a free-text diary entry written by one member.
type JournalEntry struct {
	ID       string   `json:"id"`
	Date     string   `json:"date"`
	Content  string   `json:"content"`
	AuthorID string   `json:"authorId"`
	Photos   []string `json:"photos,omitempty"`
}
