package rotation

// Tally counts distinct voters for a single skip decision. The required
// count is passed on every call so it tracks the live player count instead
// of being frozen when the first vote lands.
type Tally struct {
	voters map[string]struct{}
}

func NewTally() *Tally {
	return &Tally{voters: make(map[string]struct{})}
}

// Vote records voter and reports whether the decision fired. A repeat vote
// from the same voter is a no-op and never re-triggers the decision.
func (t *Tally) Vote(voter string, required int) bool {
	if _, ok := t.voters[voter]; ok {
		return false
	}
	t.voters[voter] = struct{}{}
	return len(t.voters) >= required
}

func (t *Tally) Count() int { return len(t.voters) }

// Reset clears all recorded voters. Called after every rotation so an
// in-flight vote dies the moment a skip happens by any path.
func (t *Tally) Reset() {
	clear(t.voters)
}

// requiredVotes is a strict majority of the present players.
func requiredVotes(players int) int {
	return players/2 + 1
}
