package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/finsense/plugin/ai/agent"
	"github.com/hrygo/finsense/plugin/ai/cache"
	storetest "github.com/hrygo/finsense/store/test"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	ts := storetest.NewTestingStore(context.Background(), t)
	c := cache.NewService(cache.DefaultServiceConfig())
	t.Cleanup(c.Close)
	return NewSessionStore(ts, c)
}

func TestSaveAndLoadState(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	state := agent.NewState()
	state.Append(agent.NewUserMessage("What was Q3 revenue?"))
	state.Append(agent.NewAssistantMessage("Revenue was $96.5B.", nil))
	state.Summary = "user asked about Q3 revenue"

	require.NoError(t, svc.SaveState(ctx, "session-1", state))

	loaded, err := svc.LoadState(ctx, "session-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, state.Messages[0].ID, loaded.Messages[0].ID)
	assert.Equal(t, "What was Q3 revenue?", loaded.Messages[0].Text())
	assert.Equal(t, "user asked about Q3 revenue", loaded.Summary)
}

func TestLoadStateNewSession(t *testing.T) {
	svc := newTestService(t)

	loaded, err := svc.LoadState(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSaveStateOverwrites(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first := agent.NewState()
	first.Append(agent.NewUserMessage("one"))
	require.NoError(t, svc.SaveState(ctx, "session-1", first))

	second := agent.NewState()
	second.Append(agent.NewUserMessage("one"), agent.NewAssistantMessage("two", nil))
	require.NoError(t, svc.SaveState(ctx, "session-1", second))

	loaded, err := svc.LoadState(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
}

func TestListSessions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	state := agent.NewState()
	state.Append(agent.NewUserMessage("latest question"))
	require.NoError(t, svc.SaveState(ctx, "session-a", state))

	summaries, err := svc.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "session-a", summaries[0].SessionID)
	assert.Equal(t, "latest question", summaries[0].LastMessage)
	assert.NotZero(t, summaries[0].UpdatedAt)
}

func TestDeleteSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveState(ctx, "session-1", agent.NewState()))
	require.NoError(t, svc.DeleteSession(ctx, "session-1"))

	loaded, err := svc.LoadState(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting again is a no-op.
	require.NoError(t, svc.DeleteSession(ctx, "session-1"))
}

func TestCleanupJobRunOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveState(ctx, "fresh", agent.NewState()))

	job := NewCleanupJob(svc, DefaultCleanupConfig())
	deleted, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.False(t, job.IsRunning())
}

func TestLockerSerializesSameSession(t *testing.T) {
	locker := NewLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "session-1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		release2, err := locker.Acquire(ctx, "session-1")
		if err == nil {
			release2()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should block while the lock is held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire should proceed after release")
	}
}

func TestLockerIndependentSessions(t *testing.T) {
	locker := NewLocker()
	ctx := context.Background()

	release1, err := locker.Acquire(ctx, "session-1")
	require.NoError(t, err)
	defer release1()

	// A different session must not block.
	done := make(chan struct{})
	go func() {
		release2, err := locker.Acquire(ctx, "session-2")
		require.NoError(t, err)
		release2()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent session should not block")
	}
}

func TestLockerRespectsCancellation(t *testing.T) {
	locker := NewLocker()

	release, err := locker.Acquire(context.Background(), "session-1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "session-1")
	assert.Error(t, err)
}

func TestLockerEvictsReleasedSessions(t *testing.T) {
	locker := NewLocker()
	ctx := context.Background()

	release1, err := locker.Acquire(ctx, "session-1")
	require.NoError(t, err)
	release2, err := locker.Acquire(ctx, "session-2")
	require.NoError(t, err)
	assert.Equal(t, 2, locker.Size())

	release1()
	assert.Equal(t, 1, locker.Size())
	release2()
	assert.Equal(t, 0, locker.Size())

	// A failed acquire must not leave an entry behind either.
	release3, err := locker.Acquire(ctx, "session-3")
	require.NoError(t, err)
	canceled, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(canceled, "session-3")
	require.Error(t, err)
	assert.Equal(t, 1, locker.Size())

	release3()
	assert.Equal(t, 0, locker.Size())
}
