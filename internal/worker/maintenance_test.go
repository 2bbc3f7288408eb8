package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubServices struct {
	expired, purged int64
	reconciled      int
	purgeErr        error
}

func (s *stubServices) ExpireInvitations(context.Context) (int64, error) { return s.expired, nil }

func (s *stubServices) PurgeExpiredSessions(context.Context) (int64, error) {
	return s.purged, s.purgeErr
}

func (s *stubServices) RecomputeAll(context.Context) (int, error) { return s.reconciled, nil }

func TestMaintenance_RunOnce(t *testing.T) {
	var ran []string
	record := func(name string, err error) Task {
		return Task{Name: name, Run: func(context.Context) (int64, error) {
			ran = append(ran, name)
			return 1, err
		}}
	}
	boom := errors.New("boom")
	m := NewMaintenance(time.Minute, record("a", nil), record("b", boom), record("c", nil))

	err := m.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b", "c"}, ran, "a failing task does not stop the rest")
}

func TestMaintenance_RunOnceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMaintenance(time.Minute, Task{Name: "never", Run: func(context.Context) (int64, error) {
		t.Fatal("task must not run")
		return 0, nil
	}})
	assert.ErrorIs(t, m.RunOnce(ctx), context.Canceled)
}

func TestMaintenance_RunTicks(t *testing.T) {
	var runs atomic.Int32
	m := NewMaintenance(10*time.Millisecond, Task{Name: "tick", Run: func(context.Context) (int64, error) {
		runs.Add(1)
		return 0, nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestServiceTasks(t *testing.T) {
	s := &stubServices{expired: 2, purged: 3, reconciled: 4}
	ctx := context.Background()

	for _, tc := range []struct {
		task Task
		name string
		want int64
	}{
		{ExpireInvitations(s), "expire_invitations", 2},
		{PurgeSessions(s), "purge_sessions", 3},
		{ReconcileCards(s), "reconcile_cards", 4},
	} {
		assert.Equal(t, tc.name, tc.task.Name)
		n, err := tc.task.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, tc.want, n)
	}

	s.purgeErr = errors.New("locked")
	_, err := PurgeSessions(s).Run(ctx)
	assert.Error(t, err)
}
