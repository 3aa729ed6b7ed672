package logentry

import "time"

type EntryType string

const (
	TypeFirstInteraction EntryType = "first_interaction"
)

// Entry is an append-only audit record. CreatedAt is stamped by the store at
// write commit.
type Entry struct {
	ID        string    `json:"id,omitempty" firestore:"-"`
	Type      EntryType `json:"type" firestore:"type"`
	Account   string    `json:"account,omitempty" firestore:"account"`
	RoomID    string    `json:"roomId,omitempty" firestore:"roomId"`
	Message   string    `json:"message,omitempty" firestore:"message"`
	CreatedAt time.Time `json:"created,omitempty" firestore:"created"`
}
