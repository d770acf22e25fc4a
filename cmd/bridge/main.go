package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// The bridge stands in for a real WhatsApp gateway. It authenticates with a
// static bearer key, records every message it accepts, and answers in the
// shape the API's WhatsApp client expects.

type sentMessage struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type bridge struct {
	apiKey string

	mu   sync.Mutex
	sent []sentMessage
}

func (b *bridge) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !b.authorized(r) {
		respond(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "unauthorized"})
		return
	}

	var req struct {
		To      string `json:"to"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid request body"})
		return
	}
	if req.To == "" || req.Message == "" {
		respond(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "to and message are required"})
		return
	}

	msg := sentMessage{
		ID:        uuid.New().String(),
		To:        req.To,
		Message:   req.Message,
		Timestamp: time.Now(),
	}

	b.mu.Lock()
	b.sent = append(b.sent, msg)
	b.mu.Unlock()

	log.Printf("[Bridge] Delivered message %s to %s (%d bytes)", msg.ID, msg.To, len(msg.Message))

	respond(w, http.StatusOK, map[string]any{
		"ok":   true,
		"meta": map[string]any{"message_id": msg.ID, "delivered_at": msg.Timestamp},
	})
}

func (b *bridge) handleSent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !b.authorized(r) {
		respond(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "unauthorized"})
		return
	}

	b.mu.Lock()
	out := make([]sentMessage, len(b.sent))
	copy(out, b.sent)
	b.mu.Unlock()

	respond(w, http.StatusOK, out)
}

func (b *bridge) authorized(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	return strings.HasPrefix(header, "Bearer ") && strings.TrimPrefix(header, "Bearer ") == b.apiKey
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func main() {
	apiKey := os.Getenv("BRIDGE_API_KEY")
	if apiKey == "" {
		log.Fatal("[Bridge] BRIDGE_API_KEY environment variable is required")
	}

	b := &bridge{apiKey: apiKey}

	mux := http.NewServeMux()
	mux.HandleFunc("/send", b.handleSend)
	mux.HandleFunc("/sent", b.handleSent)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:    ":" + getEnv("PORT", "8090"),
		Handler: mux,
	}

	go func() {
		log.Printf("[Bridge] Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[Bridge] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Bridge] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
