package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/plaufer/ahr-backend/internal/hub"
	"github.com/plaufer/ahr-backend/internal/lobby"
	"github.com/plaufer/ahr-backend/internal/types"
	"go.uber.org/zap"
)

// MessageSaver records inbound chat lines for the web API. May be nil.
type MessageSaver interface {
	SaveMessage(lobbyCode, sender, text string) error
}

// Handler bridges the chat relay to a lobby: inbound lobby events arrive as
// JSON client messages, outbound chat commands stream back as snapshots.
func Handler(h *hub.Hub, msgs MessageSaver, admins map[string]bool, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan lobby.Snapshot, 8)
		clientID := randID(6)

		// The lobby may have been removed by the hub while we were talking
		// to it; its loop is gone then, so every send selects on Done.
		select {
		case lb.Inbox() <- lobby.Join{ClientID: clientID, Outbox: out}:
		case <-lb.Done():
			return
		}
		defer func() {
			select {
			case lb.Inbox() <- lobby.Leave{ClientID: clientID}:
			case <-lb.Done():
			}
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{
					Type:     "Snapshot",
					Version:  snap.Version,
					Queue:    snap.Queue,
					Host:     snap.Host,
					Commands: snap.Commands,
				}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop: relay connections sit idle between lobby events, so
		// no read deadline here.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Clean close or not, the relay is gone (lobby.Leave in defer).
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			if cm.Type == "Chat" && msgs != nil {
				if err := msgs.SaveMessage(code, cm.Sender, cm.Text); err != nil {
					log.Warn("chat message save failed", zap.Error(err))
				}
			}

			m, ok := toLobbyMsg(cm, admins)
			if !ok {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
				continue
			}

			select {
			case lb.Inbox() <- m:
			case <-lb.Done():
				return
			}
		}
	}
}

func toLobbyMsg(cm types.ClientMessage, admins map[string]bool) (lobby.Msg, bool) {
	switch cm.Type {
	case "PlayerJoined":
		return lobby.PlayerJoined{Name: cm.Name}, true
	case "PlayerLeft":
		return lobby.PlayerLeft{Name: cm.Name}, true
	case "MatchStarted":
		return lobby.MatchStarted{}, true
	case "MatchFinished":
		return lobby.MatchFinished{}, true
	case "SettingsUpdated":
		return lobby.SettingsUpdated{Players: cm.Players, Host: cm.Host}, true
	case "HostChanged":
		return lobby.HostChanged{Name: cm.Name}, true
	case "Chat":
		return lobby.Chat{
			Sender: cm.Sender,
			Text:   cm.Text,
			Admin:  cm.Admin || admins[cm.Sender],
		}, true
	case "SetRecovering":
		return lobby.SetRecovering{Recovering: cm.Recovering}, true
	default:
		return nil, false
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
