package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"daoHiveAPI/internal/store"
	"daoHiveAPI/internal/trigger"
	"daoHiveAPI/internal/types/room"
	"daoHiveAPI/internal/types/workproof"
	"daoHiveAPI/middleware"
	"daoHiveAPI/services"
)

const testSecret = "trigger-test-secret"

func init() {
	// The handler increments trigger metrics; register them once.
	middleware.InitPrometheus()
}

func newTestHandler(st *store.MemoryStore) *TriggerHandler {
	notifications := services.NewNotificationService(st, "")
	dispatcher := services.NewTriggerDispatcher(
		services.NewChallengeService(st),
		services.NewLeaderboardService(st),
		notifications,
		services.NewMembershipService(st, notifications),
	)
	return NewTriggerHandler(dispatcher, testSecret)
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postEvent(h *TriggerHandler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/triggers/firestore", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	w := httptest.NewRecorder()
	h.HandleFirestoreEvent(w, req)
	return w
}

func TestTriggerRejectsMissingSignature(t *testing.T) {
	h := newTestHandler(store.NewMemoryStore())

	w := postEvent(h, []byte(`{"collection":"users","eventType":"created","document":"users/0xA"}`), "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestTriggerRejectsBadSignature(t *testing.T) {
	h := newTestHandler(store.NewMemoryStore())

	body := []byte(`{"collection":"users","eventType":"created","document":"users/0xA"}`)
	w := postEvent(h, body, "deadbeef")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestTriggerProcessesSignedEvent(t *testing.T) {
	st := store.NewMemoryStore()
	h := newTestHandler(st)

	body := []byte(`{"collection":"users","eventType":"created","document":"users/0xA","after":{"name":"alice"}}`)
	w := postEvent(h, body, sign(body))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(st.Logs()) != 1 {
		t.Errorf("Expected the event to reach the dispatch table, got %d log entries", len(st.Logs()))
	}
}

func TestTriggerHandlerFailureMapsTo500(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutRoom(&room.Room{ID: "R"})
	h := newTestHandler(st)

	// Workproof against a challenge that does not exist: the counter must
	// fail hard so the event gets redelivered.
	p := &workproof.WorkProof{Author: "0xA", RoomID: "R", ChallengeID: "ghost", Weight: 5}
	snapshot, _ := json.Marshal(p)
	ev := &trigger.Event{
		Collection: "workproofs",
		Type:       trigger.Created,
		Path:       "workproofs/wp1",
		After:      snapshot,
	}
	body, _ := json.Marshal(ev)

	w := postEvent(h, body, sign(body))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}

func TestTriggerRejectsMalformedBody(t *testing.T) {
	h := newTestHandler(store.NewMemoryStore())

	body := []byte(`{not json`)
	w := postEvent(h, body, sign(body))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}
