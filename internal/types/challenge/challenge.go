package challenge

import (
	"time"

	"daoHiveAPI/internal/types/workproof"
)

type ChallengeStatus string

const (
	StatusOpen   ChallengeStatus = "open"
	StatusClosed ChallengeStatus = "closed"
)

// Meta holds the denormalized counters maintained by the trigger handlers.
type Meta struct {
	SubmissionCount int `json:"submissionCount" firestore:"submissionCount"`
}

type Challenge struct {
	ID          string           `json:"id,omitempty" firestore:"-"`
	RoomID      string           `json:"roomId" firestore:"roomId"`
	Title       string           `json:"title" firestore:"title"`
	Description string           `json:"description,omitempty" firestore:"description"`
	Weight      workproof.Weight `json:"weight" firestore:"weight"`
	Status      ChallengeStatus  `json:"status,omitempty" firestore:"status"`
	Meta        Meta             `json:"meta" firestore:"meta"`
	CreatedAt   time.Time        `json:"created,omitempty" firestore:"created"`
}
