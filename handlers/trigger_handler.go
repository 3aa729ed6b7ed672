package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"daoHiveAPI/internal/trigger"
	"daoHiveAPI/middleware"
)

const signatureHeader = "X-Trigger-Signature"

// TriggerHandler receives document lifecycle events pushed by the trigger
// infrastructure and feeds them to the dispatch table. Handler failures map
// to 500 so the infrastructure redelivers the event; delivery is
// at-least-once by design.
type TriggerHandler struct {
	dispatcher *trigger.Dispatcher
	secret     []byte
}

func NewTriggerHandler(dispatcher *trigger.Dispatcher, secret string) *TriggerHandler {
	return &TriggerHandler{
		dispatcher: dispatcher,
		secret:     []byte(secret),
	}
}

func (h *TriggerHandler) HandleFirestoreEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading trigger body: %v", err)
		http.Error(w, "Error reading body", http.StatusBadRequest)
		return
	}

	if !h.verifySignature(r, body) {
		log.Println("Invalid trigger signature")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var ev trigger.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		log.Printf("Error parsing trigger event: %v", err)
		http.Error(w, "Error parsing event", http.StatusBadRequest)
		return
	}

	log.Printf("Received trigger event: %s %s on %s", ev.Collection, ev.Type, ev.Path)

	if err := h.dispatcher.Dispatch(r.Context(), &ev); err != nil {
		log.Printf("Error handling %s %s on %s: %v", ev.Collection, ev.Type, ev.Path, err)
		middleware.TriggerEventsTotal.WithLabelValues(ev.Collection, string(ev.Type), "error").Inc()
		http.Error(w, "Error processing event", http.StatusInternalServerError)
		return
	}

	middleware.TriggerEventsTotal.WithLabelValues(ev.Collection, string(ev.Type), "ok").Inc()
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

func (h *TriggerHandler) verifySignature(r *http.Request, body []byte) bool {
	signature := r.Header.Get(signatureHeader)
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}
