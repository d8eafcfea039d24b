package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plaufer/ahr-backend/internal/hub"
	"github.com/plaufer/ahr-backend/internal/store"
	"github.com/plaufer/ahr-backend/internal/ws"
	"go.uber.org/zap"
)

func SetupRoutes(h *hub.Hub, st *store.Store, admins map[string]bool, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	var msgs ws.MessageSaver
	if st != nil {
		msgs = st
	}

	r.Post("/lobbies", CreateLobby(h, st, log))
	r.Get("/lobbies/{code}/queue", LobbyQueue(h))
	r.Get("/lobbies/{code}/messages", LobbyMessages(st))
	r.Post("/users", CreateUser(st))
	r.Get("/users/{name}", GetUser(st))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, msgs, admins, log))
	return r
}
