package services

import (
	"context"
	"fmt"

	"daoHiveAPI/internal/store"
)

type ChallengeService struct {
	store store.Store
}

func NewChallengeService(st store.Store) *ChallengeService {
	return &ChallengeService{store: st}
}

// RecountSubmissions recomputes the denormalized submission count on a
// challenge from the workproof collection. It is a pure count-and-write, so
// re-running it after a failure converges to the same value. A missing
// challenge document is a hard error; swallowing it would leave a stale
// count behind.
func (s *ChallengeService) RecountSubmissions(ctx context.Context, challengeID string) error {
	proofs, err := s.store.WorkProofsByChallenge(ctx, challengeID)
	if err != nil {
		return fmt.Errorf("failed to count submissions for challenge %s: %w", challengeID, err)
	}

	if err := s.store.SetSubmissionCount(ctx, challengeID, len(proofs)); err != nil {
		return err
	}
	return nil
}
