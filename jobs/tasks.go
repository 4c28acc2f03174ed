package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/tenaris-admin/tenaris-admin/internal/events"
	jobmetrics "github.com/tenaris-admin/tenaris-admin/internal/jobs"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuditRecord persists an audit event off the request path.
	TaskTypeAuditRecord = "audit:record"
	// TaskTypeSessionSweep trims orphaned session keys from Redis.
	TaskTypeSessionSweep = "sessions:sweep"
)

// NewAuditRecordTask constructs the task carrying one audit event.
func NewAuditRecordTask(event events.Event) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditRecord, data), nil
}

// NewSessionSweepTask constructs the periodic session sweep task.
func NewSessionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionSweep, nil)
}

// AuditRecordHandler returns the asynq handler persisting audit events
// through the events service.
func AuditRecordHandler(recorder events.Recorder, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("audit_record")
		var event events.Event
		if err := json.Unmarshal(t.Payload(), &event); err != nil {
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		if err := recorder.Record(ctx, event); err != nil {
			logger.Error("persist audit event", slog.Any("error", err))
			return tracker.End(err)
		}
		return tracker.End(nil)
	}
}

// SessionSweepHandler returns the asynq handler pruning sessions of users
// listed in the deactivation set. Redis expires live sessions on its own;
// the sweep only covers users revoked while the API was down.
func SessionSweepHandler(sessions *shared.SessionManager, pending func(ctx context.Context) ([]string, error), metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("session_sweep")
		if pending == nil {
			return tracker.End(nil)
		}
		userIDs, err := pending(ctx)
		if err != nil {
			return tracker.End(err)
		}
		for _, userID := range userIDs {
			removed, err := sessions.RevokeUser(ctx, userID)
			if err != nil {
				logger.Warn("sweep sessions", slog.String("user_id", userID), slog.Any("error", err))
				continue
			}
			if removed > 0 {
				logger.Info("swept sessions", slog.String("user_id", userID), slog.Int("removed", removed))
			}
		}
		return tracker.End(nil)
	}
}
