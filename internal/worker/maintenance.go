package worker

import (
	"context"
	"log/slog"
	"time"

	"conti/internal/metrics"
)

// Task is one periodic maintenance job. Run returns how many rows it touched.
type Task struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// Maintenance runs its tasks on a fixed interval until the context ends.
type Maintenance struct {
	tasks    []Task
	interval time.Duration
}

func NewMaintenance(interval time.Duration, tasks ...Task) *Maintenance {
	return &Maintenance{tasks: tasks, interval: interval}
}

// RunOnce runs every task once. A failing task is logged and does not stop
// the others; the first error is returned.
func (m *Maintenance) RunOnce(ctx context.Context) error {
	var first error
	for _, t := range m.tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		n, err := t.Run(ctx)
		metrics.MaintenanceRun(t.Name, err)
		if err != nil {
			slog.ErrorContext(ctx, "Maintenance task failed", "task", t.Name, "error", err)
			if first == nil {
				first = err
			}
			continue
		}
		slog.InfoContext(ctx, "Maintenance task finished",
			"task", t.Name,
			"affected", n,
			"duration_ms", time.Since(start).Milliseconds())
	}
	return first
}

// Run calls RunOnce immediately and then on every tick. It returns nil when
// ctx is cancelled.
func (m *Maintenance) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Starting maintenance loop", "interval", m.interval, "tasks", len(m.tasks))
	_ = m.RunOnce(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Maintenance loop stopped")
			return nil
		case <-ticker.C:
			_ = m.RunOnce(ctx)
		}
	}
}

type (
	invitationExpirer interface {
		ExpireInvitations(ctx context.Context) (int64, error)
	}
	sessionPurger interface {
		PurgeExpiredSessions(ctx context.Context) (int64, error)
	}
	fleetReconciler interface {
		RecomputeAll(ctx context.Context) (int, error)
	}
)

func ExpireInvitations(s invitationExpirer) Task {
	return Task{Name: "expire_invitations", Run: s.ExpireInvitations}
}

func PurgeSessions(s sessionPurger) Task {
	return Task{Name: "purge_sessions", Run: s.PurgeExpiredSessions}
}

func ReconcileCards(s fleetReconciler) Task {
	return Task{Name: "reconcile_cards", Run: func(ctx context.Context) (int64, error) {
		n, err := s.RecomputeAll(ctx)
		return int64(n), err
	}}
}
