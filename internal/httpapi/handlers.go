package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/plaufer/ahr-backend/internal/hub"
	"github.com/plaufer/ahr-backend/internal/lobby"
	"github.com/plaufer/ahr-backend/internal/store"
	"go.uber.org/zap"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createLobbyRequest struct {
	// Code reattaches to a known lobby, e.g. after a restart. Empty means
	// generate a fresh one.
	Code    string `json:"code,omitempty"`
	Recover bool   `json:"recover,omitempty"`
}

func CreateLobby(h *hub.Hub, st *store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLobbyRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req) // empty body is fine
		}

		code := req.Code
		if code == "" {
			for {
				c, err := GenerateCode()
				if err != nil {
					http.Error(w, "failed to generate code", http.StatusInternalServerError)
					return
				}
				reply := make(chan *lobby.Lobby, 1)
				h.Inbox() <- hub.GetLobby{Code: c, Reply: reply}
				if <-reply == nil {
					code = c
					break
				}
				log.Info("collision on code, regenerating")
			}
		}

		var prevQueue string
		if req.Recover && st != nil {
			pq, err := st.LoadQueue(code)
			if err != nil {
				log.Warn("queue snapshot load failed",
					zap.String("lobby", code), zap.Error(err))
			} else {
				prevQueue = pq
			}
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.CreateLobby{
			Code:          code,
			PreviousQueue: prevQueue,
			Recovering:    req.Recover,
			Reply:         reply,
		}
		if <-reply == nil {
			http.Error(w, "failed to create lobby", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

func LobbyQueue(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		stateReply := make(chan lobby.View, 1)
		lb.Inbox() <- lobby.GetState{Reply: stateReply}
		view := <-stateReply

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Version int      `json:"version"`
			Queue   []string `json:"queue"`
			Host    string   `json:"host"`
		}{Version: view.Version, Queue: view.Queue, Host: view.Host})
	}
}

func LobbyMessages(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			http.Error(w, "store not configured", http.StatusServiceUnavailable)
			return
		}
		code := chi.URLParam(r, "code")

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}

		msgs, err := st.ListMessages(code, limit)
		if err != nil {
			http.Error(w, "failed to list messages", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(msgs)
	}
}

func CreateUser(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			http.Error(w, "store not configured", http.StatusServiceUnavailable)
			return
		}
		var req struct {
			Name  string `json:"name"`
			Admin bool   `json:"admin"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if err := st.UpsertUser(req.Name, req.Admin); err != nil {
			http.Error(w, "failed to save user", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func GetUser(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			http.Error(w, "store not configured", http.StatusServiceUnavailable)
			return
		}
		u, err := st.GetUser(chi.URLParam(r, "name"))
		if err != nil {
			http.Error(w, "failed to load user", http.StatusInternalServerError)
			return
		}
		if u == nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(u)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
