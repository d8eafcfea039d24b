package rotation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueue_PushIsDuplicateFree(t *testing.T) {
	q := NewQueue()

	require.True(t, q.Push("a"))
	require.True(t, q.Push("b"))
	require.False(t, q.Push("a"), "rejoin must not reorder or duplicate")
	require.Equal(t, []string{"a", "b"}, q.Names())
}

func TestQueue_Remove(t *testing.T) {
	q := NewQueue()
	q.Push("a")
	q.Push("b")
	q.Push("c")

	require.True(t, q.Remove("b"))
	require.False(t, q.Remove("b"))
	require.Equal(t, []string{"a", "c"}, q.Names())
}

func TestQueue_Rotate(t *testing.T) {
	cases := []struct {
		name  string
		start []string
		want  []string
	}{
		{name: "three entries", start: []string{"a", "b", "c"}, want: []string{"b", "c", "a"}},
		{name: "singleton is a no-op", start: []string{"a"}, want: []string{"a"}},
		{name: "empty is a no-op", start: nil, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQueue()
			for _, n := range tc.start {
				q.Push(n)
			}
			q.Rotate()
			require.Equal(t, tc.want, q.Names())
		})
	}
}

func TestQueue_MoveFront(t *testing.T) {
	cases := []struct {
		name string
		move string
		want []string
	}{
		{name: "mid entry jumps to front", move: "b", want: []string{"b", "a", "c"}},
		{name: "front entry stays put", move: "a", want: []string{"a", "b", "c"}},
		{name: "unknown name is inserted", move: "d", want: []string{"d", "a", "b", "c"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQueue()
			q.Push("a")
			q.Push("b")
			q.Push("c")
			q.MoveFront(tc.move)
			require.Equal(t, tc.want, q.Names())
		})
	}
}

func TestQueue_FrontAndFirst(t *testing.T) {
	q := NewQueue()
	require.Equal(t, "", q.Front())
	require.Empty(t, q.First(5))

	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		q.Push(n)
	}
	require.Equal(t, "a", q.Front())
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, q.First(5))
}

func TestQueue_RandomishJoinLeaveNeverDuplicates(t *testing.T) {
	q := NewQueue()
	events := []struct {
		join bool
		name string
	}{
		{true, "a"}, {true, "b"}, {true, "a"}, {false, "a"},
		{true, "c"}, {true, "a"}, {false, "b"}, {true, "b"}, {true, "b"},
	}
	for _, e := range events {
		if e.join {
			q.Push(e.name)
		} else {
			q.Remove(e.name)
		}
		seen := map[string]bool{}
		for _, n := range q.Names() {
			require.False(t, seen[n], "duplicate %q after event %+v", n, e)
			seen[n] = true
		}
	}
	require.Equal(t, []string{"c", "a", "b"}, q.Names())
}
