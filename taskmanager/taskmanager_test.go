package taskmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewKeyReturnsNotFoundThenUpdateMakesItAvailable(t *testing.T) {
	m := New[string, int](10)

	_, ok := m.ProcessTask("k")
	require.False(t, ok)

	m.UpdateTask("k", 42)

	v, ok := m.ProcessTask("k")
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestSecondCallerPollsUntilResultAppears(t *testing.T) {
	m := New[string, int](10)
	var slept []time.Duration
	m.sleep = func(d time.Duration) {
		slept = append(slept, d)
		if len(slept) == 2 {
			m.UpdateTask("k", 7)
		}
	}

	_, ok := m.ProcessTask("k") // producer
	require.False(t, ok)

	v, ok := m.ProcessTask("k") // poller
	require.True(t, ok)
	require.Equal(t, 7, v)
	require.Len(t, slept, 2)
}

func TestFIFOEvictionAtCapacity(t *testing.T) {
	m := New[string, int](2)
	m.ProcessTask("a")
	m.ProcessTask("b")
	m.ProcessTask("c") // evicts "a"

	require.NotContains(t, m.tasks, "a")
	require.Contains(t, m.tasks, "b")
	require.Contains(t, m.tasks, "c")
}
