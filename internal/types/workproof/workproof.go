package workproof

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusReverted Status = "reverted"
)

// Weight is an XP weight. Older clients wrote proofs without a weight, or
// with a non-numeric one; those decode to 0 instead of failing the handler.
type Weight float64

func (w *Weight) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*w = 0
		return nil
	}
	*w = Weight(f)
	return nil
}

// WeightFromAny applies the same defaulting rule to values decoded from the
// document store, where numbers arrive as int64 or float64 and anything else
// is legacy junk.
func WeightFromAny(v any) Weight {
	switch n := v.(type) {
	case float64:
		return Weight(n)
	case int64:
		return Weight(n)
	case int:
		return Weight(n)
	}
	return 0
}

// Verification is a single verifier's verdict on a proof. The verifier's
// account is the key in WorkProof.Verifications, so re-verifying overwrites
// the prior verdict instead of duplicating it.
type Verification struct {
	Accepted bool   `json:"accepted" firestore:"accepted"`
	Reason   string `json:"reason,omitempty" firestore:"reason"`
}

type WorkProof struct {
	ID            string                  `json:"id,omitempty" firestore:"-"`
	Author        string                  `json:"author" firestore:"author"`
	RoomID        string                  `json:"roomId" firestore:"roomId"`
	ChallengeID   string                  `json:"challengeId,omitempty" firestore:"challengeId"`
	Weight        Weight                  `json:"weight" firestore:"weight"`
	Description   string                  `json:"description,omitempty" firestore:"description"`
	ImageURLs     []string                `json:"imageUrls,omitempty" firestore:"imageUrls"`
	Verifications map[string]Verification `json:"verifications,omitempty" firestore:"verifications"`
	CreatedAt     time.Time               `json:"created,omitempty" firestore:"created"`
}

// Status derives the verification state from the verification map. It is
// never stored on the document.
func (p *WorkProof) Status() Status {
	if len(p.Verifications) == 0 {
		return StatusPending
	}
	for _, v := range p.Verifications {
		if !v.Accepted {
			return StatusReverted
		}
	}
	return StatusVerified
}

func (p *WorkProof) HasVerifier(account string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Verifications[account]
	return ok
}

func (p *WorkProof) Verifiers() []string {
	if p == nil {
		return nil
	}
	accounts := make([]string, 0, len(p.Verifications))
	for account := range p.Verifications {
		accounts = append(accounts, account)
	}
	return accounts
}

// VerifierDiff returns the accounts whose presence in the verification map
// differs between two versions of the same document. Either side may be nil
// (a create has no before, a delete has no after).
func VerifierDiff(before, after *WorkProof) []string {
	var diff []string
	for _, account := range before.Verifiers() {
		if !after.HasVerifier(account) {
			diff = append(diff, account)
		}
	}
	for _, account := range after.Verifiers() {
		if !before.HasVerifier(account) {
			diff = append(diff, account)
		}
	}
	return diff
}
