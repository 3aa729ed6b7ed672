package services

import (
	"context"
	"encoding/json"
	"testing"

	"daoHiveAPI/internal/store"
	"daoHiveAPI/internal/trigger"
	"daoHiveAPI/internal/types/challenge"
	"daoHiveAPI/internal/types/member"
	"daoHiveAPI/internal/types/room"
	"daoHiveAPI/internal/types/workproof"
)

func newTestDispatcher(st *store.MemoryStore) *trigger.Dispatcher {
	notifications := NewNotificationService(st, "")
	return NewTriggerDispatcher(
		NewChallengeService(st),
		NewLeaderboardService(st),
		notifications,
		NewMembershipService(st, notifications),
	)
}

func TestDispatchWorkProofCreated(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutRoom(&room.Room{ID: "R", Name: "Builders"})
	st.PutChallenge(&challenge.Challenge{ID: "c1", RoomID: "R", Title: "T"})

	p := &workproof.WorkProof{
		Author: "0xA", RoomID: "R", ChallengeID: "c1", Weight: 10,
	}
	st.PutWorkProof(&workproof.WorkProof{
		ID: "wp1", Author: "0xA", RoomID: "R", ChallengeID: "c1", Weight: 10,
	})

	after, _ := json.Marshal(p)
	d := newTestDispatcher(st)
	ctx := context.Background()

	err := d.Dispatch(ctx, &trigger.Event{
		Collection: "workproofs",
		Type:       trigger.Created,
		Path:       "workproofs/wp1",
		After:      after,
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	c, _ := st.Challenge(ctx, "c1")
	if c.Meta.SubmissionCount != 1 {
		t.Errorf("Expected submission count 1, got %d", c.Meta.SubmissionCount)
	}

	entry, ok := st.LeaderboardEntry("R", "0xA")
	if !ok {
		t.Fatal("Expected a leaderboard entry for the author")
	}
	if entry.PendingExperience != 10 {
		t.Errorf("Expected pending XP 10, got %v", entry.PendingExperience)
	}
}

func TestDispatchWorkProofCreatedMissingChallengeFails(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutRoom(&room.Room{ID: "R"})

	p := &workproof.WorkProof{Author: "0xA", RoomID: "R", ChallengeID: "ghost", Weight: 5}
	after, _ := json.Marshal(p)
	d := newTestDispatcher(st)

	err := d.Dispatch(context.Background(), &trigger.Event{
		Collection: "workproofs",
		Type:       trigger.Created,
		Path:       "workproofs/wp1",
		After:      after,
	})
	if err == nil {
		t.Fatal("Expected a hard failure when the challenge document is missing")
	}
}

func TestDispatchRoomLevelWorkProofSkipsCounter(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutRoom(&room.Room{ID: "R"})

	// Challenge-less proof: nothing to recount, leaderboard still updates.
	p := &workproof.WorkProof{Author: "0xA", RoomID: "R", Weight: 5}
	after, _ := json.Marshal(p)
	d := newTestDispatcher(st)

	err := d.Dispatch(context.Background(), &trigger.Event{
		Collection: "workproofs",
		Type:       trigger.Created,
		Path:       "workproofs/wp1",
		After:      after,
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if _, ok := st.LeaderboardEntry("R", "0xA"); !ok {
		t.Error("Expected a leaderboard entry for the author")
	}
}

func TestDispatchWorkProofDeleted(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutRoom(&room.Room{ID: "R"})

	p := &workproof.WorkProof{
		ID: "wp1", Author: "0xA", RoomID: "R", Weight: 10,
		Verifications: map[string]workproof.Verification{"0xB": {Accepted: true}},
	}
	st.PutWorkProof(p)

	d := newTestDispatcher(st)
	ctx := context.Background()

	// Seed entries from the live proof, then delete it through the dispatcher.
	before, _ := json.Marshal(p)
	err := d.Dispatch(ctx, &trigger.Event{
		Collection: "workproofs",
		Type:       trigger.Created,
		Path:       "workproofs/wp1",
		After:      before,
	})
	if err != nil {
		t.Fatalf("Dispatch(created) failed: %v", err)
	}
	if entry, ok := st.LeaderboardEntry("R", "0xA"); !ok || entry.VerifiedExperience == 0 {
		t.Fatalf("Expected verified XP for the author before deletion, got %+v", entry)
	}

	st.DeleteWorkProof("wp1")
	err = d.Dispatch(ctx, &trigger.Event{
		Collection: "workproofs",
		Type:       trigger.Deleted,
		Path:       "workproofs/wp1",
		Before:     before,
	})
	if err != nil {
		t.Fatalf("Dispatch(deleted) failed: %v", err)
	}

	for _, account := range []string{"0xA", "0xB"} {
		entry, ok := st.LeaderboardEntry("R", account)
		if !ok {
			t.Fatalf("Expected %s's entry to be rewritten, not dropped", account)
		}
		if entry.VerifiedExperience != 0 || entry.PendingExperience != 0 || entry.SubmissionCount != 0 {
			t.Errorf("Expected %s's entry zeroed after deletion, got %+v", account, entry)
		}
	}
}

func TestDispatchMemberCreated(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutMember("R", &member.Member{Account: "0xA"})
	d := newTestDispatcher(st)
	ctx := context.Background()

	err := d.Dispatch(ctx, &trigger.Event{
		Collection: "members",
		Type:       trigger.Created,
		Path:       "rooms/R/members/0xA",
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	m, _ := st.Member(ctx, "R", "0xA")
	if m.JoinDate.IsZero() {
		t.Error("Expected the join date to be stamped")
	}
}

func TestDispatchUserCreated(t *testing.T) {
	st := store.NewMemoryStore()
	d := newTestDispatcher(st)

	err := d.Dispatch(context.Background(), &trigger.Event{
		Collection: "users",
		Type:       trigger.Created,
		Path:       "users/0xA",
		After:      json.RawMessage(`{"name": "alice"}`),
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if len(st.Logs()) != 1 {
		t.Errorf("Expected 1 log entry, got %d", len(st.Logs()))
	}
}

func TestDispatchUnregisteredEventIsIgnored(t *testing.T) {
	st := store.NewMemoryStore()
	d := newTestDispatcher(st)

	err := d.Dispatch(context.Background(), &trigger.Event{
		Collection: "rooms",
		Type:       trigger.Deleted,
		Path:       "rooms/R",
	})
	if err != nil {
		t.Errorf("Expected unregistered events to be ignored, got %v", err)
	}
}
