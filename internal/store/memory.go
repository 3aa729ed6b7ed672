package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"daoHiveAPI/internal/types/challenge"
	"daoHiveAPI/internal/types/leaderboard"
	"daoHiveAPI/internal/types/logentry"
	"daoHiveAPI/internal/types/member"
	"daoHiveAPI/internal/types/room"
	"daoHiveAPI/internal/types/user"
	"daoHiveAPI/internal/types/workproof"
)

// MemoryStore is the in-memory Store used by tests. Fixture data goes in
// through the Put* methods; the rest of the interface behaves like the
// Firestore implementation, including the not-found semantics.
type MemoryStore struct {
	mu          sync.RWMutex
	rooms       map[string]*room.Room
	users       map[string]*user.User
	challenges  map[string]*challenge.Challenge
	workProofs  map[string]*workproof.WorkProof
	members     map[string]*member.Member
	leaderboard map[string]*leaderboard.Entry
	logs        map[string]*logentry.Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:       make(map[string]*room.Room),
		users:       make(map[string]*user.User),
		challenges:  make(map[string]*challenge.Challenge),
		workProofs:  make(map[string]*workproof.WorkProof),
		members:     make(map[string]*member.Member),
		leaderboard: make(map[string]*leaderboard.Entry),
		logs:        make(map[string]*logentry.Entry),
	}
}

func memberKey(roomID, account string) string { return roomID + "/" + account }

func (s *MemoryStore) PutRoom(r *room.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = r
}

func (s *MemoryStore) PutUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Account] = u
}

func (s *MemoryStore) PutChallenge(c *challenge.Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[c.ID] = c
}

func (s *MemoryStore) PutWorkProof(p *workproof.WorkProof) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workProofs[p.ID] = p
}

func (s *MemoryStore) DeleteWorkProof(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workProofs, id)
}

func (s *MemoryStore) PutMember(roomID string, m *member.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[memberKey(roomID, m.Account)] = m
}

func (s *MemoryStore) Room(ctx context.Context, roomID string) (*room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) User(ctx context.Context, account string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[account]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", account, ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) Challenge(ctx context.Context, challengeID string) (*challenge.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.challenges[challengeID]
	if !ok {
		return nil, fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ChallengesByRoom(ctx context.Context, roomID string) ([]*challenge.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var challenges []*challenge.Challenge
	for _, c := range s.challenges {
		if c.RoomID == roomID {
			cp := *c
			challenges = append(challenges, &cp)
		}
	}
	return challenges, nil
}

func (s *MemoryStore) SetSubmissionCount(ctx context.Context, challengeID string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[challengeID]
	if !ok {
		return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
	}
	c.Meta.SubmissionCount = count
	return nil
}

func (s *MemoryStore) WorkProofsByChallenge(ctx context.Context, challengeID string) ([]*workproof.WorkProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var proofs []*workproof.WorkProof
	for _, p := range s.workProofs {
		if p.ChallengeID == challengeID {
			proofs = append(proofs, p)
		}
	}
	return proofs, nil
}

func (s *MemoryStore) WorkProofsByAuthor(ctx context.Context, roomID, account string) ([]*workproof.WorkProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var proofs []*workproof.WorkProof
	for _, p := range s.workProofs {
		if p.RoomID == roomID && p.Author == account {
			proofs = append(proofs, p)
		}
	}
	return proofs, nil
}

func (s *MemoryStore) WorkProofsByVerifier(ctx context.Context, roomID, account string) ([]*workproof.WorkProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var proofs []*workproof.WorkProof
	for _, p := range s.workProofs {
		if p.RoomID == roomID && p.HasVerifier(account) {
			proofs = append(proofs, p)
		}
	}
	return proofs, nil
}

func (s *MemoryStore) SetLeaderboardEntry(ctx context.Context, roomID string, entry *leaderboard.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	s.leaderboard[memberKey(roomID, entry.UserAccount)] = &cp
	return nil
}

func (s *MemoryStore) LeaderboardEntry(roomID, account string) (*leaderboard.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.leaderboard[memberKey(roomID, account)]
	if !ok {
		return nil, false
	}
	cp := *e
	return &cp, true
}

func (s *MemoryStore) LeaderboardByRoom(ctx context.Context, roomID string) ([]*leaderboard.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := roomID + "/"
	var entries []*leaderboard.Entry
	for key, e := range s.leaderboard {
		if strings.HasPrefix(key, prefix) {
			cp := *e
			entries = append(entries, &cp)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].VerifiedExperience > entries[j].VerifiedExperience
	})
	return entries, nil
}

func (s *MemoryStore) Member(ctx context.Context, roomID, account string) (*member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberKey(roomID, account)]
	if !ok {
		return nil, fmt.Errorf("member %s in room %s: %w", account, roomID, ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) SetMemberJoinDate(ctx context.Context, roomID, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberKey(roomID, account)]
	if !ok {
		m = &member.Member{Account: account}
		s.members[memberKey(roomID, account)] = m
	}
	m.JoinDate = time.Now()
	return nil
}

func (s *MemoryStore) AppendLog(ctx context.Context, entry *logentry.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now()
	s.logs[cp.ID] = &cp
	return cp.ID, nil
}

func (s *MemoryStore) Logs() []*logentry.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []*logentry.Entry
	for _, e := range s.logs {
		cp := *e
		entries = append(entries, &cp)
	}
	return entries
}
