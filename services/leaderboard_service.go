package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"daoHiveAPI/internal/store"
	"daoHiveAPI/internal/types/leaderboard"
	"daoHiveAPI/internal/types/workproof"
)

// Each verification earns the verifier 10% of the proof's weight. The yield
// is summed first and rounded up once on the total, not per proof.
const verificationYieldRate = 0.1

type LeaderboardService struct {
	store store.Store
}

func NewLeaderboardService(st store.Store) *LeaderboardService {
	return &LeaderboardService{store: st}
}

// HandleWorkProofWritten reacts to any write on a workproof document. It
// recomputes the author's aggregate plus the aggregate of every verifier
// whose presence in the verification map changed between the two versions.
// The recomputations target independent (room, account) documents, so they
// run concurrently.
func (s *LeaderboardService) HandleWorkProofWritten(ctx context.Context, before, after *workproof.WorkProof) error {
	current := after
	if current == nil {
		current = before
	}
	if current == nil {
		return nil
	}
	roomID := current.RoomID

	accounts := map[string]struct{}{}
	if current.Author != "" {
		accounts[current.Author] = struct{}{}
	}
	for _, account := range workproof.VerifierDiff(before, after) {
		accounts[account] = struct{}{}
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(accounts))
	for account := range accounts {
		wg.Add(1)
		go func(account string) {
			defer wg.Done()
			if err := s.RecomputeEntry(ctx, roomID, account); err != nil {
				errCh <- err
			}
		}(account)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RecomputeEntry rebuilds the (room, account) leaderboard entry from scratch
// and overwrites the stored document. Nothing is mutated until the final
// write, so a failed run can simply be retried.
func (s *LeaderboardService) RecomputeEntry(ctx context.Context, roomID, account string) error {
	entry, err := s.computeEntry(ctx, roomID, account)
	if err != nil {
		return err
	}

	if err := s.store.SetLeaderboardEntry(ctx, roomID, entry); err != nil {
		return fmt.Errorf("failed to write leaderboard entry for %s: %w", account, err)
	}
	return nil
}

func (s *LeaderboardService) computeEntry(ctx context.Context, roomID, account string) (*leaderboard.Entry, error) {
	submissions, err := s.store.WorkProofsByAuthor(ctx, roomID, account)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions for %s: %w", account, err)
	}

	var total, accepted, rejected float64
	for _, p := range submissions {
		w := float64(p.Weight)
		total += w
		switch p.Status() {
		case workproof.StatusVerified:
			accepted += w
		case workproof.StatusReverted:
			rejected += w
		}
		// Pending proofs count only toward the total; the pending figure
		// below falls out of the arithmetic.
	}

	verified, err := s.store.WorkProofsByVerifier(ctx, roomID, account)
	if err != nil {
		return nil, fmt.Errorf("failed to load verifications for %s: %w", account, err)
	}

	var yield float64
	for _, p := range verified {
		yield += float64(p.Weight) * verificationYieldRate
	}

	return &leaderboard.Entry{
		UserAccount:        account,
		VerifiedExperience: accepted + math.Ceil(yield),
		PendingExperience:  total - accepted - rejected,
		SubmissionCount:    len(submissions),
	}, nil
}
