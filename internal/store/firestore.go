package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"daoHiveAPI/internal/types/challenge"
	"daoHiveAPI/internal/types/leaderboard"
	"daoHiveAPI/internal/types/logentry"
	"daoHiveAPI/internal/types/member"
	"daoHiveAPI/internal/types/room"
	"daoHiveAPI/internal/types/user"
	"daoHiveAPI/internal/types/workproof"
)

type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore initializes the Firestore client. It first attempts to use
// credentials from the FIREBASE_SERVICE_ACCOUNT_JSON environment variable
// (Base64 encoded). If that's not found, it falls back to a local service
// account key file.
func NewFirestoreStore(ctx context.Context, localFilePath string) (*FirestoreStore, error) {
	var opt option.ClientOption

	encodedCreds := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials from FIREBASE_SERVICE_ACCOUNT_JSON: %v", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Println("Firestore: Initializing from FIREBASE_SERVICE_ACCOUNT_JSON environment variable.")
	} else {
		if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("local firebase file not found: %s, and FIREBASE_SERVICE_ACCOUNT_JSON environment variable is not set", localFilePath)
		}
		opt = option.WithCredentialsFile(localFilePath)
		log.Printf("Firestore: Initializing from local file: %s.", localFilePath)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %v", err)
	}

	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) Room(ctx context.Context, roomID string) (*room.Room, error) {
	doc, err := s.client.Collection("rooms").Doc(roomID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get room %s: %w", roomID, err)
	}

	r := &room.Room{}
	if err := doc.DataTo(r); err != nil {
		return nil, fmt.Errorf("failed to decode room %s: %w", roomID, err)
	}
	r.ID = doc.Ref.ID
	return r, nil
}

func (s *FirestoreStore) User(ctx context.Context, account string) (*user.User, error) {
	doc, err := s.client.Collection("users").Doc(account).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user %s: %w", account, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", account, err)
	}

	u := &user.User{}
	if err := doc.DataTo(u); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", account, err)
	}
	u.Account = doc.Ref.ID
	return u, nil
}

func (s *FirestoreStore) Challenge(ctx context.Context, challengeID string) (*challenge.Challenge, error) {
	doc, err := s.client.Collection("challenges").Doc(challengeID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get challenge %s: %w", challengeID, err)
	}

	d := &challengeDoc{}
	if err := doc.DataTo(d); err != nil {
		return nil, fmt.Errorf("failed to decode challenge %s: %w", challengeID, err)
	}
	return d.toChallenge(doc.Ref.ID), nil
}

func (s *FirestoreStore) ChallengesByRoom(ctx context.Context, roomID string) ([]*challenge.Challenge, error) {
	iter := s.client.Collection("challenges").Where("roomId", "==", roomID).Documents(ctx)
	defer iter.Stop()

	var challenges []*challenge.Challenge
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list challenges for room %s: %w", roomID, err)
		}
		d := &challengeDoc{}
		if err := doc.DataTo(d); err != nil {
			return nil, fmt.Errorf("failed to decode challenge %s: %w", doc.Ref.ID, err)
		}
		challenges = append(challenges, d.toChallenge(doc.Ref.ID))
	}
	return challenges, nil
}

func (s *FirestoreStore) SetSubmissionCount(ctx context.Context, challengeID string, count int) error {
	_, err := s.client.Collection("challenges").Doc(challengeID).Update(ctx, []firestore.Update{
		{Path: "meta.submissionCount", Value: count},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
		}
		return fmt.Errorf("failed to update submission count on challenge %s: %w", challengeID, err)
	}
	return nil
}

func (s *FirestoreStore) WorkProofsByChallenge(ctx context.Context, challengeID string) ([]*workproof.WorkProof, error) {
	iter := s.client.Collection("workproofs").Where("challengeId", "==", challengeID).Documents(ctx)
	return collectWorkProofs(iter)
}

func (s *FirestoreStore) WorkProofsByAuthor(ctx context.Context, roomID, account string) ([]*workproof.WorkProof, error) {
	iter := s.client.Collection("workproofs").
		Where("roomId", "==", roomID).
		Where("author", "==", account).
		Documents(ctx)
	return collectWorkProofs(iter)
}

func (s *FirestoreStore) WorkProofsByVerifier(ctx context.Context, roomID, account string) ([]*workproof.WorkProof, error) {
	// Firestore cannot filter on map-key presence, so this scans the room's
	// proofs and filters client-side.
	iter := s.client.Collection("workproofs").Where("roomId", "==", roomID).Documents(ctx)
	proofs, err := collectWorkProofs(iter)
	if err != nil {
		return nil, err
	}

	var verified []*workproof.WorkProof
	for _, p := range proofs {
		if p.HasVerifier(account) {
			verified = append(verified, p)
		}
	}
	return verified, nil
}

func (s *FirestoreStore) SetLeaderboardEntry(ctx context.Context, roomID string, entry *leaderboard.Entry) error {
	_, err := s.client.Collection("rooms").Doc(roomID).
		Collection("leaderboard").Doc(entry.UserAccount).
		Set(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to write leaderboard entry for %s in room %s: %w", entry.UserAccount, roomID, err)
	}
	return nil
}

func (s *FirestoreStore) LeaderboardByRoom(ctx context.Context, roomID string) ([]*leaderboard.Entry, error) {
	iter := s.client.Collection("rooms").Doc(roomID).
		Collection("leaderboard").
		OrderBy("verifiedExperience", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var entries []*leaderboard.Entry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list leaderboard for room %s: %w", roomID, err)
		}
		e := &leaderboard.Entry{}
		if err := doc.DataTo(e); err != nil {
			return nil, fmt.Errorf("failed to decode leaderboard entry %s: %w", doc.Ref.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *FirestoreStore) Member(ctx context.Context, roomID, account string) (*member.Member, error) {
	doc, err := s.client.Collection("rooms").Doc(roomID).Collection("members").Doc(account).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("member %s in room %s: %w", account, roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member %s in room %s: %w", account, roomID, err)
	}

	m := &member.Member{}
	if err := doc.DataTo(m); err != nil {
		return nil, fmt.Errorf("failed to decode member %s: %w", account, err)
	}
	return m, nil
}

func (s *FirestoreStore) SetMemberJoinDate(ctx context.Context, roomID, account string) error {
	_, err := s.client.Collection("rooms").Doc(roomID).Collection("members").Doc(account).
		Set(ctx, map[string]interface{}{"joinDate": firestore.ServerTimestamp}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to stamp join date for %s in room %s: %w", account, roomID, err)
	}
	return nil
}

func (s *FirestoreStore) AppendLog(ctx context.Context, entry *logentry.Entry) (string, error) {
	id := uuid.NewString()
	_, err := s.client.Collection("logs").Doc(id).Set(ctx, map[string]interface{}{
		"type":    entry.Type,
		"account": entry.Account,
		"roomId":  entry.RoomID,
		"message": entry.Message,
		"created": firestore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("failed to append log entry: %w", err)
	}
	return id, nil
}

func collectWorkProofs(iter *firestore.DocumentIterator) ([]*workproof.WorkProof, error) {
	defer iter.Stop()

	var proofs []*workproof.WorkProof
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list workproofs: %w", err)
		}
		d := &workProofDoc{}
		if err := doc.DataTo(d); err != nil {
			return nil, fmt.Errorf("failed to decode workproof %s: %w", doc.Ref.ID, err)
		}
		proofs = append(proofs, d.toWorkProof(doc.Ref.ID))
	}
	return proofs, nil
}

// workProofDoc and challengeDoc shadow the schema-less documents on the read
// path. Weight stays untyped so legacy non-numeric values fall through
// WeightFromAny to 0 instead of failing the decode and wedging the
// recomputation behind a permanent retry loop.
type workProofDoc struct {
	Author        string                            `firestore:"author"`
	RoomID        string                            `firestore:"roomId"`
	ChallengeID   string                            `firestore:"challengeId"`
	Weight        any                               `firestore:"weight"`
	Description   string                            `firestore:"description"`
	ImageURLs     []string                          `firestore:"imageUrls"`
	Verifications map[string]workproof.Verification `firestore:"verifications"`
	CreatedAt     time.Time                         `firestore:"created"`
}

func (d *workProofDoc) toWorkProof(id string) *workproof.WorkProof {
	return &workproof.WorkProof{
		ID:            id,
		Author:        d.Author,
		RoomID:        d.RoomID,
		ChallengeID:   d.ChallengeID,
		Weight:        workproof.WeightFromAny(d.Weight),
		Description:   d.Description,
		ImageURLs:     d.ImageURLs,
		Verifications: d.Verifications,
		CreatedAt:     d.CreatedAt,
	}
}

type challengeDoc struct {
	RoomID      string                    `firestore:"roomId"`
	Title       string                    `firestore:"title"`
	Description string                    `firestore:"description"`
	Weight      any                       `firestore:"weight"`
	Status      challenge.ChallengeStatus `firestore:"status"`
	Meta        challenge.Meta            `firestore:"meta"`
	CreatedAt   time.Time                 `firestore:"created"`
}

func (d *challengeDoc) toChallenge(id string) *challenge.Challenge {
	return &challenge.Challenge{
		ID:          id,
		RoomID:      d.RoomID,
		Title:       d.Title,
		Description: d.Description,
		Weight:      workproof.WeightFromAny(d.Weight),
		Status:      d.Status,
		Meta:        d.Meta,
		CreatedAt:   d.CreatedAt,
	}
}
