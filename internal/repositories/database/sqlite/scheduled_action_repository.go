package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gncbooks/gncledger/internal/apperrors"
	"github.com/gncbooks/gncledger/internal/core/domain"
	portsrepo "github.com/gncbooks/gncledger/internal/core/ports/repositories"
)

// SQLiteScheduledActionRepository persists scheduled actions in SQLite.
type SQLiteScheduledActionRepository struct {
	db *sql.DB
}

func newSQLiteScheduledActionRepository(db *sql.DB) portsrepo.ScheduledActionRepository {
	return &SQLiteScheduledActionRepository{db: db}
}

var _ portsrepo.ScheduledActionRepository = (*SQLiteScheduledActionRepository)(nil)

// BulkAddScheduledActions upserts the given scheduled actions. An action
// without a recurrence is meaningless and is rejected here, at the
// persistence boundary.
func (r *SQLiteScheduledActionRepository) BulkAddScheduledActions(ctx context.Context, bookUID string, actions []*domain.ScheduledAction) (int64, error) {
	query := `
		INSERT INTO scheduled_actions (uid, book_uid, action_type, action_uid,
			start_time, end_time, last_run_time, total_planned_count, execution_count,
			enabled, auto_create, auto_notify, advance_create_days, advance_notify_days,
			recurrence_period_type, recurrence_multiplier, recurrence_period_start,
			recurrence_period_end, recurrence_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			action_type = excluded.action_type,
			action_uid = excluded.action_uid,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			last_run_time = excluded.last_run_time,
			total_planned_count = excluded.total_planned_count,
			execution_count = excluded.execution_count,
			enabled = excluded.enabled,
			auto_create = excluded.auto_create,
			auto_notify = excluded.auto_notify,
			advance_create_days = excluded.advance_create_days,
			advance_notify_days = excluded.advance_notify_days,
			recurrence_period_type = excluded.recurrence_period_type,
			recurrence_multiplier = excluded.recurrence_multiplier,
			recurrence_period_start = excluded.recurrence_period_start,
			recurrence_period_end = excluded.recurrence_period_end,
			recurrence_count = excluded.recurrence_count;
	`
	conn := connFrom(ctx, r.db)
	for _, action := range actions {
		if action.Recurrence == nil {
			return 0, fmt.Errorf("%w: scheduled action %s", apperrors.ErrMissingRecurrence, action.UID)
		}
		var periodEnd sql.NullTime
		if action.Recurrence.PeriodEnd != nil {
			periodEnd = sql.NullTime{Time: *action.Recurrence.PeriodEnd, Valid: true}
		}
		_, err := conn.ExecContext(ctx, query,
			action.UID, bookUID, action.ActionType, action.ActionUID,
			nullTime(action.StartTime), nullTime(action.EndTime), nullTime(action.LastRunTime),
			action.TotalPlannedCount, action.ExecutionCount,
			action.Enabled, action.AutoCreate, action.AutoNotify,
			action.AdvanceCreateDays, action.AdvanceNotifyDays,
			action.Recurrence.PeriodType, action.Recurrence.Multiplier,
			nullTime(action.Recurrence.PeriodStart), periodEnd, action.Recurrence.Count,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save scheduled action %s: %w", action.UID, err)
		}
	}
	return int64(len(actions)), nil
}

// ListScheduledActions returns every scheduled action of a book.
func (r *SQLiteScheduledActionRepository) ListScheduledActions(ctx context.Context, bookUID string) ([]*domain.ScheduledAction, error) {
	query := `
		SELECT uid, action_type, action_uid, start_time, end_time, last_run_time,
			total_planned_count, execution_count, enabled, auto_create, auto_notify,
			advance_create_days, advance_notify_days,
			recurrence_period_type, recurrence_multiplier, recurrence_period_start,
			recurrence_period_end, recurrence_count
		FROM scheduled_actions WHERE book_uid = ?;
	`
	rows, err := connFrom(ctx, r.db).QueryContext(ctx, query, bookUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled actions: %w", err)
	}
	defer rows.Close()

	var actions []*domain.ScheduledAction
	for rows.Next() {
		var action domain.ScheduledAction
		var recurrence domain.Recurrence
		var start, end, lastRun, periodStart, periodEnd sql.NullTime
		err := rows.Scan(&action.UID, &action.ActionType, &action.ActionUID,
			&start, &end, &lastRun,
			&action.TotalPlannedCount, &action.ExecutionCount,
			&action.Enabled, &action.AutoCreate, &action.AutoNotify,
			&action.AdvanceCreateDays, &action.AdvanceNotifyDays,
			&recurrence.PeriodType, &recurrence.Multiplier, &periodStart,
			&periodEnd, &recurrence.Count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled action: %w", err)
		}
		action.StartTime = start.Time
		action.EndTime = end.Time
		action.LastRunTime = lastRun.Time
		recurrence.PeriodStart = periodStart.Time
		if periodEnd.Valid {
			t := periodEnd.Time
			recurrence.PeriodEnd = &t
		}
		action.Recurrence = &recurrence
		actions = append(actions, &action)
	}
	return actions, rows.Err()
}
