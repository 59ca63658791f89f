package player

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gerrors "github.com/cristianoliveira/gaudible/internal/errors"
	"github.com/cristianoliveira/gaudible/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mapResolver map[string]string

func (m mapResolver) Resolve(name string) string {
	if p, ok := m[name]; ok {
		return p
	}
	return m["*"]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testSounds = mapResolver{"*": "/snd/bell.oga", "calendar": "/snd/calendar.oga"}

func newTestDispatcher(runner Runner, clock *fakeClock, interval time.Duration) *Dispatcher {
	return New(Options{
		Player:   "/usr/bin/paplay",
		Sounds:   testSounds,
		Interval: interval,
		Runner:   runner,
		Now:      clock.Now,
	})
}

func TestClampInterval(t *testing.T) {
	assert.Equal(t, MinInterval, ClampInterval(0))
	assert.Equal(t, MinInterval, ClampInterval(-time.Second))
	assert.Equal(t, time.Second, ClampInterval(time.Second))
	assert.Equal(t, MinInterval, IntervalFromMillis(-1))
	assert.Equal(t, 500*time.Millisecond, IntervalFromMillis(500))
}

func TestNewRequiresSounds(t *testing.T) {
	assert.Panics(t, func() { New(Options{}) })
}

func TestPlayRateLimit(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, "/usr/bin/paplay", "/snd/calendar.oga").Return(nil)
	clock := &fakeClock{now: time.Unix(1000, 0)}
	d := newTestDispatcher(runner, clock, 500*time.Millisecond)

	assert.True(t, d.Play("calendar"), "first play is always accepted")
	clock.Advance(time.Millisecond)
	assert.False(t, d.Play("calendar"), "inside the quiet period")
	clock.Advance(499 * time.Millisecond)
	assert.False(t, d.Play("calendar"), "quiet period end is inclusive")
	clock.Advance(2 * time.Millisecond)
	assert.True(t, d.Play("calendar"), "after the quiet period")

	d.Wait()
	runner.AssertNumberOfCalls(t, "Run", 2)
}

func TestPlayWindowStartsAtAcceptance(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	clock := &fakeClock{now: time.Unix(1000, 0)}
	d := newTestDispatcher(runner, clock, 100*time.Millisecond)

	accepted := 0
	for i := 0; i < 30; i++ {
		if d.Play("calendar") {
			accepted++
		}
		clock.Advance(30 * time.Millisecond)
	}
	d.Wait()
	// accepted at 0, 120, 240, ... 840 ms
	assert.Equal(t, 8, accepted)
	runner.AssertNumberOfCalls(t, "Run", 8)
}

func TestPlayFallsBackToWildcard(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, "/usr/bin/paplay", "/snd/bell.oga").Return(nil)
	d := newTestDispatcher(runner, &fakeClock{now: time.Unix(1, 0)}, time.Second)

	assert.True(t, d.Play(""))
	d.Wait()
	runner.AssertExpectations(t)
}

func TestPlayConcurrentCallersAcceptOnce(t *testing.T) {
	var runs atomic.Int32
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Run(func(mock.Arguments) { runs.Add(1) }).Return(nil)
	d := newTestDispatcher(runner, &fakeClock{now: time.Unix(1, 0)}, time.Second)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Play("calendar") {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()
	d.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, int32(1), runs.Load())
}

func TestPlayFailureIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("exit status 1"))
	clock := &fakeClock{now: time.Unix(1, 0)}
	d := New(Options{
		Sounds:   testSounds,
		Interval: time.Second,
		Runner:   runner,
		Logger:   logging.NewWriter(&buf, "debug"),
		Now:      clock.Now,
	})

	assert.True(t, d.Play("calendar"))
	d.Wait()
	assert.Contains(t, buf.String(), "player failed")
	assert.Contains(t, buf.String(), "exit status 1")

	// the window stays reserved after a failure
	assert.False(t, d.Play("calendar"))
}

func TestPlayRecoversWorkerPanic(t *testing.T) {
	var buf bytes.Buffer
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Panic("boom")
	d := New(Options{Sounds: testSounds, Runner: runner, Logger: logging.NewWriter(&buf, "info")})

	require.NotPanics(t, func() {
		d.Play("calendar")
		d.Wait()
	})
	assert.Contains(t, buf.String(), "panicked")
}

func TestPlayDoesNotBlockForFullPlayback(t *testing.T) {
	release := make(chan struct{})
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Run(func(mock.Arguments) { <-release }).Return(nil)
	d := New(Options{Sounds: testSounds, Runner: runner, HandoffWait: 20 * time.Millisecond})

	start := time.Now()
	assert.True(t, d.Play("calendar"))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)

	close(release)
	d.Wait()
}

func TestPlayHandoffReturnsWhenWorkerFinishes(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d := New(Options{Sounds: testSounds, Runner: runner, HandoffWait: 5 * time.Second})

	start := time.Now()
	assert.True(t, d.Play("calendar"))
	assert.Less(t, time.Since(start), 5*time.Second)
	runner.AssertNumberOfCalls(t, "Run", 1)
}

func TestPlayPassesTimeoutContext(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything, mock.Anything).Return(nil)
	d := New(Options{Sounds: testSounds, Runner: runner, Timeout: time.Minute})

	d.Play("calendar")
	d.Wait()
	runner.AssertExpectations(t)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "player.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestExecRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("success receives the sound as sole argument", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "args")
		script := writeScript(t, `printf '%s|%s' "$#" "$1" > `+out)
		require.NoError(t, ExecRunner{}.Run(ctx, script, "/snd/bell.oga"))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "1|/snd/bell.oga", string(data))
	})

	t.Run("non-zero exit", func(t *testing.T) {
		script := writeScript(t, "echo 'no such sink' >&2; exit 3")
		err := ExecRunner{}.Run(ctx, script, "/snd/bell.oga")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exit status 3")
		assert.Contains(t, err.Error(), "no such sink")
	})

	t.Run("missing player", func(t *testing.T) {
		assert.Error(t, ExecRunner{}.Run(ctx, "/nonexistent/player", "/snd/bell.oga"))
	})

	t.Run("timeout", func(t *testing.T) {
		script := writeScript(t, "sleep 5")
		tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		err := ExecRunner{}.Run(tctx, script, "/snd/bell.oga")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timed out")
	})
}

func TestCheckExecutable(t *testing.T) {
	script := writeScript(t, "exit 0")
	assert.NoError(t, CheckExecutable(script))

	plain := filepath.Join(t.TempDir(), "sound.oga")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0644))

	for _, path := range []string{plain, t.TempDir(), "/nonexistent/paplay"} {
		err := CheckExecutable(path)
		require.Error(t, err, path)
		assert.True(t, gerrors.Is(err, gerrors.ErrInvalidConfiguration))
	}
}
