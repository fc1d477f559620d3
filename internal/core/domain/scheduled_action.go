package domain

import "time"

// ActionType distinguishes what a scheduled action repeats.
type ActionType string

const (
	ActionTransaction ActionType = "TRANSACTION"
	ActionBackup      ActionType = "BACKUP"
)

// PeriodType is the unit of a recurrence period.
type PeriodType string

const (
	PeriodDay   PeriodType = "DAY"
	PeriodWeek  PeriodType = "WEEK"
	PeriodMonth PeriodType = "MONTH"
	PeriodYear  PeriodType = "YEAR"
)

// Approximate period lengths used by the retired on-disk format, which
// stored recurrences as raw millisecond periods.
const (
	dayMillis   int64 = 24 * 60 * 60 * 1000
	weekMillis  int64 = 7 * dayMillis
	monthMillis int64 = 30 * dayMillis
	yearMillis  int64 = 365 * dayMillis
)

// Recurrence describes how often a scheduled action repeats: every
// Multiplier PeriodTypes, starting at PeriodStart.
type Recurrence struct {
	PeriodType  PeriodType `json:"periodType"`
	Multiplier  int        `json:"multiplier"`
	PeriodStart time.Time  `json:"periodStart"`
	// PeriodEnd bounds the recurrence in time; nil means unbounded.
	PeriodEnd *time.Time `json:"periodEnd"`
	// Count bounds the recurrence by number of occurrences; zero means
	// unbounded.
	Count int `json:"count"`
}

// NewRecurrence creates a recurrence with a multiplier of at least one.
func NewRecurrence(periodType PeriodType, multiplier int) *Recurrence {
	if multiplier < 1 {
		multiplier = 1
	}
	return &Recurrence{PeriodType: periodType, Multiplier: multiplier}
}

// RecurrenceFromLegacyPeriod translates a raw millisecond period from the
// retired export format into the closest period type and multiplier.
func RecurrenceFromLegacyPeriod(periodMillis int64) *Recurrence {
	switch {
	case periodMillis >= yearMillis:
		return NewRecurrence(PeriodYear, int(periodMillis/yearMillis))
	case periodMillis >= monthMillis:
		return NewRecurrence(PeriodMonth, int(periodMillis/monthMillis))
	case periodMillis >= weekMillis:
		return NewRecurrence(PeriodWeek, int(periodMillis/weekMillis))
	default:
		return NewRecurrence(PeriodDay, int(periodMillis/dayMillis))
	}
}

// PeriodMillis returns the approximate length of one recurrence interval,
// the inverse of RecurrenceFromLegacyPeriod.
func (r *Recurrence) PeriodMillis() int64 {
	unit := dayMillis
	switch r.PeriodType {
	case PeriodWeek:
		unit = weekMillis
	case PeriodMonth:
		unit = monthMillis
	case PeriodYear:
		unit = yearMillis
	}
	return unit * int64(r.Multiplier)
}

// ScheduledAction is a rule repeating a template transaction or a
// maintenance action. It must carry a non-nil Recurrence before it may be
// persisted.
type ScheduledAction struct {
	UID        string     `json:"uid"`
	ActionType ActionType `json:"actionType"`
	// ActionUID references the template transaction (or backup parameters)
	// this action repeats.
	ActionUID string `json:"actionUID"`
	// TemplateAccountUID is the parse-time reference to the template
	// account hosting the action's formula splits; the importer resolves
	// it to ActionUID before the bulk commit.
	TemplateAccountUID   string      `json:"-"`
	StartTime            time.Time   `json:"startTime"`
	EndTime              time.Time   `json:"endTime"`
	LastRunTime          time.Time   `json:"lastRunTime"`
	TotalPlannedCount    int         `json:"totalPlannedCount"`
	ExecutionCount       int         `json:"executionCount"`
	Enabled              bool        `json:"enabled"`
	AutoCreate           bool        `json:"autoCreate"`
	AutoNotify           bool        `json:"autoNotify"`
	AdvanceCreateDays    int         `json:"advanceCreateDays"`
	AdvanceNotifyDays    int         `json:"advanceNotifyDays"`
	Recurrence           *Recurrence `json:"recurrence"`
	Timestamps
}
