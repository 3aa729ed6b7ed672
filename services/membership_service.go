package services

import (
	"context"
	"fmt"

	"daoHiveAPI/internal/store"
	"daoHiveAPI/internal/types/logentry"
	"daoHiveAPI/internal/types/user"
)

type MembershipService struct {
	store         store.Store
	notifications *NotificationService
}

func NewMembershipService(st store.Store, notifications *NotificationService) *MembershipService {
	return &MembershipService{
		store:         st,
		notifications: notifications,
	}
}

// StampJoinDate writes the server-assigned join timestamp into a freshly
// created member document. The stamp is set-once: trigger delivery is
// at-least-once, and a redelivered create event must not move an existing
// join date.
func (s *MembershipService) StampJoinDate(ctx context.Context, roomID, account string) error {
	m, err := s.store.Member(ctx, roomID, account)
	if err != nil {
		return fmt.Errorf("failed to load member %s in room %s: %w", account, roomID, err)
	}

	if !m.JoinDate.IsZero() {
		return nil
	}
	return s.store.SetMemberJoinDate(ctx, roomID, account)
}

// RecordFirstInteraction appends an audit log entry for a newly created user
// profile and forwards it to the operational logging webhook.
func (s *MembershipService) RecordFirstInteraction(ctx context.Context, u *user.User) error {
	entry := &logentry.Entry{
		Type:    logentry.TypeFirstInteraction,
		Account: u.Account,
		Message: fmt.Sprintf("First interaction from %s", u.Account),
	}
	if _, err := s.store.AppendLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to log first interaction for %s: %w", u.Account, err)
	}

	s.notifications.LogEvent(ctx, entry.Message)
	return nil
}
