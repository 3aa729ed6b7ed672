package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"daoHiveAPI/internal/trigger"
	"daoHiveAPI/internal/types/challenge"
	"daoHiveAPI/internal/types/user"
	"daoHiveAPI/internal/types/workproof"
)

// NewTriggerDispatcher wires every document lifecycle event to the services
// that react to it. This table is the single place the bindings live; tests
// drive it directly with synthetic events.
func NewTriggerDispatcher(
	challenges *ChallengeService,
	board *LeaderboardService,
	notifications *NotificationService,
	membership *MembershipService,
) *trigger.Dispatcher {
	d := trigger.NewDispatcher()

	d.Register("challenges", trigger.Created, func(ctx context.Context, ev *trigger.Event) error {
		c, err := decodeChallenge(ev.After, ev.DocumentID())
		if err != nil {
			return err
		}
		return notifications.NotifyChallengeCreated(ctx, c)
	})

	d.Register("workproofs", trigger.Created, func(ctx context.Context, ev *trigger.Event) error {
		p, err := decodeWorkProof(ev.After, ev.DocumentID())
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("workproof create event %s has no snapshot", ev.Path)
		}

		var errs []error
		// Room-level proofs have no challenge to recount.
		if p.ChallengeID != "" {
			if err := challenges.RecountSubmissions(ctx, p.ChallengeID); err != nil {
				errs = append(errs, err)
			}
		}
		if err := board.HandleWorkProofWritten(ctx, nil, p); err != nil {
			errs = append(errs, err)
		}
		if err := notifications.NotifyWorkProofCreated(ctx, p); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	d.Register("workproofs", trigger.Updated, func(ctx context.Context, ev *trigger.Event) error {
		before, err := decodeWorkProof(ev.Before, ev.DocumentID())
		if err != nil {
			return err
		}
		after, err := decodeWorkProof(ev.After, ev.DocumentID())
		if err != nil {
			return err
		}
		if after == nil {
			return fmt.Errorf("workproof update event %s has no snapshot", ev.Path)
		}

		var errs []error
		if err := board.HandleWorkProofWritten(ctx, before, after); err != nil {
			errs = append(errs, err)
		}
		if err := notifications.NotifyWorkProofUpdated(ctx, after); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	d.Register("workproofs", trigger.Deleted, func(ctx context.Context, ev *trigger.Event) error {
		before, err := decodeWorkProof(ev.Before, ev.DocumentID())
		if err != nil {
			return err
		}
		return board.HandleWorkProofWritten(ctx, before, nil)
	})

	d.Register("members", trigger.Created, func(ctx context.Context, ev *trigger.Event) error {
		segments := ev.PathSegments()
		if len(segments) != 4 {
			return fmt.Errorf("unexpected member document path %q", ev.Path)
		}
		return membership.StampJoinDate(ctx, segments[1], segments[3])
	})

	d.Register("users", trigger.Created, func(ctx context.Context, ev *trigger.Event) error {
		u := &user.User{}
		if len(ev.After) > 0 {
			if err := json.Unmarshal(ev.After, u); err != nil {
				return fmt.Errorf("failed to decode user snapshot: %w", err)
			}
		}
		u.Account = ev.DocumentID()
		return membership.RecordFirstInteraction(ctx, u)
	})

	return d
}

func decodeWorkProof(raw json.RawMessage, id string) (*workproof.WorkProof, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	p := &workproof.WorkProof{}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("failed to decode workproof snapshot: %w", err)
	}
	p.ID = id
	return p, nil
}

func decodeChallenge(raw json.RawMessage, id string) (*challenge.Challenge, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("challenge snapshot is empty")
	}
	c := &challenge.Challenge{}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("failed to decode challenge snapshot: %w", err)
	}
	c.ID = id
	return c, nil
}
