package rotation

import (
	"strings"

	"go.uber.org/zap"
)

// View is the slice of lobby state an event handler gets to see. The lobby
// actor owns these facts; the controller only reads them.
type View struct {
	Recovering    bool
	Players       []string
	CurrentHost   string // "" when no host is assigned
	PreviousQueue string // comma-joined snapshot, only set during recovery
}

// Controller reacts to lobby events, mutates the rotation queue and returns
// the chat commands to send. It owns its Queue and Tally exclusively; all
// calls come from one lobby goroutine, in arrival order.
type Controller struct {
	queue *Queue
	votes *Tally

	// hostSkipped is armed when the current host disconnects mid-match, so
	// the settings update that follows is not processed as a second skip.
	hostSkipped bool

	log *zap.Logger
}

func NewController(log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		queue: NewQueue(),
		votes: NewTally(),
		log:   log,
	}
}

// Queue returns a copy of the current rotation order, front first.
func (c *Controller) Queue() []string { return c.queue.Names() }

// PlayerJoined enqueues the new player. Rejoining does not reorder.
func (c *Controller) PlayerJoined(v View, name string) []string {
	c.queue.Push(name)
	return c.ensureHost(v)
}

// PlayerLeft removes the player and, if they were hosting mid-match, arms
// the skipped flag so the upcoming settings update does not rotate again.
func (c *Controller) PlayerLeft(v View, name string, matchInProgress bool) []string {
	c.queue.Remove(name)
	if matchInProgress && name == v.CurrentHost {
		c.hostSkipped = true
	}
	return c.ensureHost(v)
}

// MatchStarted opens a fresh disconnect-tracking window.
func (c *Controller) MatchStarted() {
	c.hostSkipped = false
}

// SettingsUpdated runs whenever the lobby configuration (host included)
// changes. While recovering it reconciles the persisted snapshot with the
// players actually present; in normal operation it advances the rotation,
// unless the host was already skipped via disconnect.
func (c *Controller) SettingsUpdated(v View) []string {
	if v.Recovering && v.PreviousQueue != "" {
		c.queue.Clear()
		present := make(map[string]bool, len(v.Players))
		for _, p := range v.Players {
			present[p] = true
		}
		// Snapshot order wins; entries that are no longer present are dropped.
		for _, name := range strings.Split(v.PreviousQueue, ",") {
			name = strings.TrimSpace(name)
			if name != "" && present[name] {
				c.queue.Push(name)
			}
		}
		c.log.Info("restored host queue",
			zap.Strings("queue", c.queue.First(5)),
			zap.Int("size", c.queue.Len()))
	}

	// Catch anyone we missed, e.g. joins raced during the initial connect.
	for _, p := range v.Players {
		c.queue.Push(p)
	}

	if v.Recovering {
		return nil
	}
	if c.hostSkipped {
		return nil
	}

	// A settings change outside a clean skip means the host went away
	// mid-match without an explicit skip; rotate past them.
	c.rotate()
	cmds := c.ensureHost(v)
	return append(cmds, c.announceQueue())
}

// HostChanged handles the external notification that the in-lobby host is
// now name. External tools can swap the host behind our back; if the new
// host is not front of queue, put the right player back in charge.
func (c *Controller) HostChanged(v View, name string) []string {
	if v.Recovering || c.queue.Len() == 0 {
		return nil
	}
	if name != c.queue.Front() {
		return []string{hostCommand(c.queue.Front())}
	}
	return nil
}

// Chat dispatches on the recognized command surface. Unknown or malformed
// input falls through silently; the bot stays quiet rather than erroring.
func (c *Controller) Chat(v View, sender, text string, admin bool) []string {
	switch {
	case admin && strings.HasPrefix(text, "!forceskip"):
		c.rotate()
		return c.ensureHost(v)

	case admin && strings.HasPrefix(text, "!sethost"):
		name := strings.TrimSpace(strings.TrimPrefix(text, "!sethost"))
		if name == "" {
			// Missing argument: deliberately ignored, no reply.
			return nil
		}
		c.queue.MoveFront(name)
		return c.ensureHost(v)

	case strings.HasPrefix(text, "!q"): // covers !q and !queue
		return []string{c.announceQueue()}

	case strings.HasPrefix(text, "!skip"):
		if sender == v.CurrentHost {
			c.rotate()
			return c.ensureHost(v)
		}
		if c.votes.Vote(sender, requiredVotes(len(v.Players))) {
			c.rotate()
			return c.ensureHost(v)
		}
		return nil
	}
	return nil
}

// rotate advances the queue by one and invalidates any in-flight skip vote.
func (c *Controller) rotate() {
	c.queue.Rotate()
	c.hostSkipped = false
	c.votes.Reset()
}

// ensureHost issues a host command when the actual host is missing or is
// not the front of the queue. Suppressed entirely while recovering.
func (c *Controller) ensureHost(v View) []string {
	if v.Recovering || c.queue.Len() == 0 {
		return nil
	}
	next := c.queue.Front()
	if v.CurrentHost == "" || v.CurrentHost != next {
		return []string{hostCommand(next)}
	}
	return nil
}

func (c *Controller) announceQueue() string {
	names := c.queue.First(5)
	if len(names) == 0 {
		return "Host queue is empty"
	}
	return "Host queue: " + strings.Join(names, ", ")
}

// hostCommand formats the outbound host assignment. Names go out as one
// command token, so spaces become underscores.
func hostCommand(name string) string {
	return "!mp host " + strings.ReplaceAll(name, " ", "_")
}
