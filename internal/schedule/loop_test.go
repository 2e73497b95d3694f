package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder collects labels appended from inside the loop.
type recorder struct {
	mu  sync.Mutex
	got []string
}

func (r *recorder) add(s string) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.got = append(r.got, s)
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

func TestDo_RunsSettleHook(t *testing.T) {
	l := New(clockwork.NewFakeClock())
	defer l.Close()

	settled := 0
	l.OnSettle(func() { settled++ })

	ran := false
	require.NoError(t, l.Do(func() { ran = true }))
	assert.True(t, ran)
	assert.Equal(t, 1, settled)
}

func TestAfter_FiresInDeadlineOrder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock)
	defer l.Close()

	rec := &recorder{}
	require.NoError(t, l.Do(func() {
		l.After(3*time.Second, rec.add("toast"))
		l.After(2*time.Second, rec.add("checkout"))
		l.After(1500*time.Millisecond, rec.add("contact"))
	}))
	assert.Equal(t, 3, l.Pending())

	clock.Advance(5 * time.Second)

	require.Eventually(t, func() bool { return l.Pending() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"contact", "checkout", "toast"}, rec.snapshot())
}

func TestAfter_DoesNotFireEarly(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock)
	defer l.Close()

	rec := &recorder{}
	require.NoError(t, l.Do(func() { l.After(2*time.Second, rec.add("done")) }))

	clock.Advance(1999 * time.Millisecond)
	assert.Never(t, func() bool { return len(rec.snapshot()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestTask_Cancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock)
	defer l.Close()

	rec := &recorder{}
	var task *Task
	require.NoError(t, l.Do(func() {
		task = l.After(time.Second, rec.add("cancelled"))
		l.After(2*time.Second, rec.add("kept"))
	}))

	var cancelled, again bool
	require.NoError(t, l.Do(func() {
		cancelled = task.Cancel()
		again = task.Cancel()
	}))
	assert.True(t, cancelled)
	assert.False(t, again)

	clock.Advance(3 * time.Second)
	require.Eventually(t, func() bool { return l.Pending() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"kept"}, rec.snapshot())
}

func TestClose_DropsPendingTasks(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock)

	rec := &recorder{}
	require.NoError(t, l.Do(func() { l.After(time.Second, rec.add("late")) }))
	l.Close()
	l.Close()

	clock.Advance(2 * time.Second)
	assert.Never(t, func() bool { return len(rec.snapshot()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.ErrorIs(t, l.Do(func() {}), ErrClosed)
	assert.Equal(t, 0, l.Pending())
}

func TestAfter_SettlesOncePerBatch(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock)
	defer l.Close()

	var mu sync.Mutex
	settled := 0
	l.OnSettle(func() {
		mu.Lock()
		settled++
		mu.Unlock()
	})

	require.NoError(t, l.Do(func() {
		l.After(time.Second, func() {})
		l.After(time.Second, func() {})
	}))

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return l.Pending() == 0 }, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	// One settle for Do and one for the expired batch.
	assert.Equal(t, 2, settled)
}

func TestView_SkipsSettleHook(t *testing.T) {
	l := New(clockwork.NewFakeClock())

	settled := 0
	l.OnSettle(func() { settled++ })

	ran := false
	require.NoError(t, l.View(func() { ran = true }))
	assert.True(t, ran)
	assert.Equal(t, 0, settled)

	l.Close()
	assert.ErrorIs(t, l.View(func() {}), ErrClosed)
}
