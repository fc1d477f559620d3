package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gncbooks/gncledger/internal/apperrors"
	"github.com/gncbooks/gncledger/internal/core/domain"
	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

// PgxScheduledActionRepository persists scheduled actions in Postgres.
type PgxScheduledActionRepository struct {
	pool *pgxpool.Pool
}

func newPgxScheduledActionRepository(pool *pgxpool.Pool) portsrepo.ScheduledActionRepository {
	return &PgxScheduledActionRepository{pool: pool}
}

var _ portsrepo.ScheduledActionRepository = (*PgxScheduledActionRepository)(nil)

// BulkAddScheduledActions upserts the given scheduled actions. An action
// without a recurrence is meaningless and is rejected here, at the
// persistence boundary.
func (r *PgxScheduledActionRepository) BulkAddScheduledActions(ctx context.Context, bookUID string, actions []*domain.ScheduledAction) (int64, error) {
	query := `
		INSERT INTO scheduled_actions (uid, book_uid, action_type, action_uid,
			start_time, end_time, last_run_time, total_planned_count, execution_count,
			enabled, auto_create, auto_notify, advance_create_days, advance_notify_days,
			recurrence_period_type, recurrence_multiplier, recurrence_period_start,
			recurrence_period_end, recurrence_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (uid) DO UPDATE SET
			action_type = EXCLUDED.action_type,
			action_uid = EXCLUDED.action_uid,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			last_run_time = EXCLUDED.last_run_time,
			total_planned_count = EXCLUDED.total_planned_count,
			execution_count = EXCLUDED.execution_count,
			enabled = EXCLUDED.enabled,
			auto_create = EXCLUDED.auto_create,
			auto_notify = EXCLUDED.auto_notify,
			advance_create_days = EXCLUDED.advance_create_days,
			advance_notify_days = EXCLUDED.advance_notify_days,
			recurrence_period_type = EXCLUDED.recurrence_period_type,
			recurrence_multiplier = EXCLUDED.recurrence_multiplier,
			recurrence_period_start = EXCLUDED.recurrence_period_start,
			recurrence_period_end = EXCLUDED.recurrence_period_end,
			recurrence_count = EXCLUDED.recurrence_count;
	`
	conn := connFrom(ctx, r.pool)
	for _, action := range actions {
		if action.Recurrence == nil {
			return 0, fmt.Errorf("%w: scheduled action %s", apperrors.ErrMissingRecurrence, action.UID)
		}
		_, err := conn.Exec(ctx, query,
			action.UID, bookUID, action.ActionType, action.ActionUID,
			timePtr(action.StartTime), timePtr(action.EndTime), timePtr(action.LastRunTime),
			action.TotalPlannedCount, action.ExecutionCount,
			action.Enabled, action.AutoCreate, action.AutoNotify,
			action.AdvanceCreateDays, action.AdvanceNotifyDays,
			action.Recurrence.PeriodType, action.Recurrence.Multiplier,
			timePtr(action.Recurrence.PeriodStart), action.Recurrence.PeriodEnd, action.Recurrence.Count,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save scheduled action %s: %w", action.UID, err)
		}
	}
	return int64(len(actions)), nil
}

// ListScheduledActions returns every scheduled action of a book.
func (r *PgxScheduledActionRepository) ListScheduledActions(ctx context.Context, bookUID string) ([]*domain.ScheduledAction, error) {
	query := `
		SELECT uid, action_type, action_uid, start_time, end_time, last_run_time,
			total_planned_count, execution_count, enabled, auto_create, auto_notify,
			advance_create_days, advance_notify_days,
			recurrence_period_type, recurrence_multiplier, recurrence_period_start,
			recurrence_period_end, recurrence_count
		FROM scheduled_actions WHERE book_uid = $1;
	`
	rows, err := connFrom(ctx, r.pool).Query(ctx, query, bookUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled actions: %w", err)
	}
	defer rows.Close()

	var actions []*domain.ScheduledAction
	for rows.Next() {
		var action domain.ScheduledAction
		var recurrence domain.Recurrence
		var start, end, lastRun, periodStart *time.Time
		err := rows.Scan(&action.UID, &action.ActionType, &action.ActionUID,
			&start, &end, &lastRun,
			&action.TotalPlannedCount, &action.ExecutionCount,
			&action.Enabled, &action.AutoCreate, &action.AutoNotify,
			&action.AdvanceCreateDays, &action.AdvanceNotifyDays,
			&recurrence.PeriodType, &recurrence.Multiplier, &periodStart,
			&recurrence.PeriodEnd, &recurrence.Count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled action: %w", err)
		}
		if start != nil {
			action.StartTime = *start
		}
		if end != nil {
			action.EndTime = *end
		}
		if lastRun != nil {
			action.LastRunTime = *lastRun
		}
		if periodStart != nil {
			recurrence.PeriodStart = *periodStart
		}
		action.Recurrence = &recurrence
		actions = append(actions, &action)
	}
	return actions, rows.Err()
}
