package store

import (
	"context"
	"errors"

	"daoHiveAPI/internal/types/challenge"
	"daoHiveAPI/internal/types/leaderboard"
	"daoHiveAPI/internal/types/logentry"
	"daoHiveAPI/internal/types/member"
	"daoHiveAPI/internal/types/room"
	"daoHiveAPI/internal/types/user"
	"daoHiveAPI/internal/types/workproof"
)

var ErrNotFound = errors.New("document not found")

// Store is the document-store surface the trigger handlers and the read API
// run against. Handlers take it by interface so tests can swap in MemoryStore.
type Store interface {
	Room(ctx context.Context, roomID string) (*room.Room, error)
	User(ctx context.Context, account string) (*user.User, error)

	Challenge(ctx context.Context, challengeID string) (*challenge.Challenge, error)
	ChallengesByRoom(ctx context.Context, roomID string) ([]*challenge.Challenge, error)
	// SetSubmissionCount patches meta.submissionCount on an existing
	// challenge. A missing challenge is an error, never a silent no-op.
	SetSubmissionCount(ctx context.Context, challengeID string, count int) error

	WorkProofsByChallenge(ctx context.Context, challengeID string) ([]*workproof.WorkProof, error)
	WorkProofsByAuthor(ctx context.Context, roomID, account string) ([]*workproof.WorkProof, error)
	// WorkProofsByVerifier returns the room's proofs where account is a key
	// in the verification map, regardless of author.
	WorkProofsByVerifier(ctx context.Context, roomID, account string) ([]*workproof.WorkProof, error)

	// SetLeaderboardEntry fully overwrites the entry, never merges.
	SetLeaderboardEntry(ctx context.Context, roomID string, entry *leaderboard.Entry) error
	LeaderboardByRoom(ctx context.Context, roomID string) ([]*leaderboard.Entry, error)

	Member(ctx context.Context, roomID, account string) (*member.Member, error)
	// SetMemberJoinDate merge-writes a server-assigned join timestamp into
	// the member document, leaving sibling fields untouched.
	SetMemberJoinDate(ctx context.Context, roomID, account string) error

	AppendLog(ctx context.Context, entry *logentry.Entry) (string, error)
}
