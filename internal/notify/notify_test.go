package notify

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/storefront/internal/schedule"
)

func messages(ts []Toast) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Message)
	}
	return out
}

func active(t *testing.T, l *schedule.Loop, n *Notifier) []Toast {
	t.Helper()
	var out []Toast
	require.NoError(t, l.Do(func() { out = n.Active() }))
	return out
}

func TestNotify_OrderAndIndependentDismissal(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loop := schedule.New(clock)
	defer loop.Close()

	n := New(loop, 3*time.Second, nil)

	require.NoError(t, loop.Do(func() {
		n.Success("first")
		n.Info("second")
	}))
	clock.Advance(time.Second)
	require.NoError(t, loop.Do(func() { n.Error("third") }))

	assert.Equal(t, []string{"first", "second", "third"}, messages(active(t, loop, n)))

	clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool { return len(active(t, loop, n)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"third"}, messages(active(t, loop, n)))

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return len(active(t, loop, n)) == 0 }, time.Second, 5*time.Millisecond)
}

func TestNotify_DuplicatesAreNotCoalesced(t *testing.T) {
	loop := schedule.New(clockwork.NewFakeClock())
	defer loop.Close()
	n := New(loop, 0, nil)

	require.NoError(t, loop.Do(func() {
		a := n.Success("Widget added to cart!")
		b := n.Success("Widget added to cart!")
		assert.NotEqual(t, a.ID, b.ID)
	}))
	assert.Len(t, active(t, loop, n), 2)
}

func TestDismiss(t *testing.T) {
	loop := schedule.New(clockwork.NewFakeClock())
	defer loop.Close()
	n := New(loop, time.Second, nil)

	require.NoError(t, loop.Do(func() {
		toast := n.Info("bye")
		assert.True(t, n.Dismiss(toast.ID))
		assert.False(t, n.Dismiss(toast.ID))
	}))
	assert.Empty(t, active(t, loop, n))
	assert.Equal(t, 0, loop.Pending())
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	loop := schedule.New(clockwork.NewFakeClock())
	defer loop.Close()
	n := New(loop, time.Second, LogSink(zap.New(core)))

	require.NoError(t, loop.Do(func() { n.Error("Invalid credentials. Try admin/password") }))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "error", fields["level"])
	assert.Equal(t, "Invalid credentials. Try admin/password", fields["message"])
}
