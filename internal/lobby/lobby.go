package lobby

import (
	"context"
	"sort"
	"strings"

	"github.com/plaufer/ahr-backend/internal/rotation"
	"go.uber.org/zap"
)

type Msg interface{ isLobbyMsg() }

// Events from the chat relay.

type PlayerJoined struct{ Name string }

type PlayerLeft struct{ Name string }

type MatchStarted struct{}

type MatchFinished struct{}

// SettingsUpdated carries the authoritative settings replay: the full
// player list and the actual in-lobby host.
type SettingsUpdated struct {
	Players []string
	Host    string
}

type HostChanged struct{ Name string }

type Chat struct {
	Sender string
	Text   string
	Admin  bool
}

// SetRecovering flips the externally owned recovery flag. While it is set,
// no host commands leave the lobby.
type SetRecovering struct{ Recovering bool }

// Observer plumbing.

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

type Leave struct{ ClientID string }

type GetState struct {
	Reply chan View
}

type Shutdown struct{}

func (PlayerJoined) isLobbyMsg()    {}
func (PlayerLeft) isLobbyMsg()      {}
func (MatchStarted) isLobbyMsg()    {}
func (MatchFinished) isLobbyMsg()   {}
func (SettingsUpdated) isLobbyMsg() {}
func (HostChanged) isLobbyMsg()     {}
func (Chat) isLobbyMsg()            {}
func (SetRecovering) isLobbyMsg()   {}
func (Join) isLobbyMsg()            {}
func (Leave) isLobbyMsg()           {}
func (GetState) isLobbyMsg()        {}
func (Shutdown) isLobbyMsg()        {}

// Snapshot is broadcast to observers after every handled event. Commands
// holds the outbound chat lines produced by that event, in order; the relay
// fires them at the lobby and never reports back.
type Snapshot struct {
	Version  int
	Queue    []string
	Host     string
	Commands []string
}

// View is the test/introspection readout.
type View struct {
	Version    int
	NumClients int
	Queue      []string
	Host       string
	Players    []string
	Recovering bool
	InMatch    bool
}

// QueueSaver persists the rotation order so it can be replayed as
// PreviousQueue after a restart.
type QueueSaver interface {
	SaveQueue(lobbyCode, queue string) error
}

type Options struct {
	PreviousQueue string
	Recovering    bool
	Store         QueueSaver // may be nil
	Logger        *zap.Logger
}

type Lobby struct {
	code    string
	inbox   chan Msg
	ctrl    *rotation.Controller
	players map[string]bool
	host    string
	inMatch bool

	recovering bool
	prevQueue  string // consumed by the first settings replay while recovering

	version   int
	clients   map[string]chan Snapshot
	store     QueueSaver
	saveCh    chan string
	lastSaved string
	log       *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewLobby(parent context.Context, code string, opts Options) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("lobby", code))

	l := &Lobby{
		code:       code,
		inbox:      make(chan Msg, 64), // small buffer
		ctrl:       rotation.NewController(log),
		players:    make(map[string]bool),
		recovering: opts.Recovering,
		prevQueue:  opts.PreviousQueue,
		clients:    make(map[string]chan Snapshot),
		store:      opts.Store,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}

	if l.store != nil {
		l.saveCh = make(chan string, 16)
		go l.persister()
	}

	go l.loop()
	return l
}

// Inbox is where the relay and tests send messages. One goroutine drains
// it, so events for this lobby are handled strictly in arrival order.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) Code() string { return l.code }

// Done is closed once the lobby has shut down. Senders select on it so a
// message to a dead lobby does not block forever.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case PlayerJoined:
				l.players[msg.Name] = true
				l.finish(l.ctrl.PlayerJoined(l.view(), msg.Name))

			case PlayerLeft:
				delete(l.players, msg.Name)
				// host stays as-is: the lobby server tells us about the
				// replacement via HostChanged.
				l.finish(l.ctrl.PlayerLeft(l.view(), msg.Name, l.inMatch))

			case MatchStarted:
				l.inMatch = true
				l.ctrl.MatchStarted()
				l.finish(nil)

			case MatchFinished:
				l.inMatch = false
				l.finish(nil)

			case SettingsUpdated:
				clear(l.players)
				for _, p := range msg.Players {
					l.players[p] = true
				}
				l.host = msg.Host
				v := l.view()
				v.Players = msg.Players // keep settings order for discovery
				v.PreviousQueue = l.prevQueue
				cmds := l.ctrl.SettingsUpdated(v)
				if l.recovering && l.prevQueue != "" {
					l.prevQueue = "" // one-shot
				}
				l.finish(cmds)

			case HostChanged:
				l.host = msg.Name
				l.finish(l.ctrl.HostChanged(l.view(), msg.Name))

			case Chat:
				l.finish(l.ctrl.Chat(l.view(), msg.Sender, msg.Text, msg.Admin))

			case SetRecovering:
				l.recovering = msg.Recovering
				l.finish(nil)

			case Join:
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- l.snapshot(nil)

			case Leave:
				if ch, ok := l.clients[msg.ClientID]; ok {
					close(ch)
					delete(l.clients, msg.ClientID)
				}

			case GetState:
				// test-only: reflect internal state without data races
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					Queue:      l.ctrl.Queue(),
					Host:       l.host,
					Players:    l.playerList(),
					Recovering: l.recovering,
					InMatch:    l.inMatch,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) view() rotation.View {
	return rotation.View{
		Recovering:  l.recovering,
		Players:     l.playerList(),
		CurrentHost: l.host,
	}
}

func (l *Lobby) playerList() []string {
	names := make([]string, 0, len(l.players))
	for p := range l.players {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

// finish is the tail of every event handler: bump the version, fan the
// snapshot out and persist the queue if it moved.
func (l *Lobby) finish(cmds []string) {
	l.version++
	l.broadcast(l.snapshot(cmds))
	l.persistQueue()
}

func (l *Lobby) snapshot(cmds []string) Snapshot {
	return Snapshot{
		Version:  l.version,
		Queue:    l.ctrl.Queue(),
		Host:     l.host,
		Commands: cmds,
	}
}

func (l *Lobby) persistQueue() {
	if l.store == nil {
		return
	}
	joined := strings.Join(l.ctrl.Queue(), ",")
	if joined == l.lastSaved {
		return
	}
	l.lastSaved = joined
	// One persister goroutine applies snapshots in the order the actor
	// produced them, so an older queue can never land after a newer one.
	select {
	case l.saveCh <- joined:
	default:
		// Buffer full: drop the oldest pending snapshot, the latest wins.
		select {
		case <-l.saveCh:
		default:
		}
		l.saveCh <- joined
	}
}

// persister owns the store writes. Saves are fire-and-forget from the
// actor's point of view; losing the tail on shutdown only weakens the next
// recovery.
func (l *Lobby) persister() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case joined := <-l.saveCh:
			if err := l.store.SaveQueue(l.code, joined); err != nil {
				l.log.Warn("queue snapshot save failed", zap.Error(err))
			}
		}
	}
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
		}
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}
