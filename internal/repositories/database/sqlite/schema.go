package sqlite

import (
	"database/sql"
	"fmt"
)

// schema is applied on open; every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS books (
	uid              TEXT PRIMARY KEY,
	display_name     TEXT NOT NULL,
	root_account_uid TEXT NOT NULL DEFAULT '',
	source_uri       TEXT NOT NULL DEFAULT '',
	last_export_time TIMESTAMP,
	created_at       TIMESTAMP NOT NULL,
	modified_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	uid                 TEXT PRIMARY KEY,
	book_uid            TEXT NOT NULL REFERENCES books(uid) ON DELETE CASCADE,
	name                TEXT NOT NULL,
	full_name           TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	account_type        TEXT NOT NULL,
	parent_uid          TEXT,
	commodity_namespace TEXT NOT NULL,
	commodity_code      TEXT NOT NULL,
	commodity_fraction  INTEGER NOT NULL,
	placeholder         INTEGER NOT NULL DEFAULT 0,
	hidden              INTEGER NOT NULL DEFAULT 0,
	favorite            INTEGER NOT NULL DEFAULT 0,
	color               TEXT NOT NULL DEFAULT '',
	default_transfer_account_uid TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMP NOT NULL,
	modified_at         TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_accounts_book ON accounts(book_uid);
CREATE INDEX IF NOT EXISTS idx_accounts_parent ON accounts(parent_uid);

CREATE TABLE IF NOT EXISTS transactions (
	uid                  TEXT PRIMARY KEY,
	book_uid             TEXT NOT NULL REFERENCES books(uid) ON DELETE CASCADE,
	description          TEXT NOT NULL DEFAULT '',
	notes                TEXT NOT NULL DEFAULT '',
	timestamp            TIMESTAMP NOT NULL,
	created_at           TIMESTAMP NOT NULL,
	currency_code        TEXT NOT NULL,
	commodity_fraction   INTEGER NOT NULL,
	is_template          INTEGER NOT NULL DEFAULT 0,
	is_exported          INTEGER NOT NULL DEFAULT 0,
	scheduled_action_uid TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transactions_book ON transactions(book_uid);

CREATE TABLE IF NOT EXISTS splits (
	uid             TEXT PRIMARY KEY,
	transaction_uid TEXT NOT NULL REFERENCES transactions(uid) ON DELETE CASCADE,
	account_uid     TEXT NOT NULL,
	amount_num      INTEGER NOT NULL,
	amount_denom    INTEGER NOT NULL,
	currency_code   TEXT NOT NULL,
	memo            TEXT NOT NULL DEFAULT '',
	split_type      TEXT NOT NULL,
	reconcile_state TEXT NOT NULL DEFAULT 'n'
);
CREATE INDEX IF NOT EXISTS idx_splits_transaction ON splits(transaction_uid);
CREATE INDEX IF NOT EXISTS idx_splits_account ON splits(account_uid);

CREATE TABLE IF NOT EXISTS scheduled_actions (
	uid                     TEXT PRIMARY KEY,
	book_uid                TEXT NOT NULL REFERENCES books(uid) ON DELETE CASCADE,
	action_type             TEXT NOT NULL,
	action_uid              TEXT NOT NULL DEFAULT '',
	start_time              TIMESTAMP,
	end_time                TIMESTAMP,
	last_run_time           TIMESTAMP,
	total_planned_count     INTEGER NOT NULL DEFAULT 0,
	execution_count         INTEGER NOT NULL DEFAULT 0,
	enabled                 INTEGER NOT NULL DEFAULT 1,
	auto_create             INTEGER NOT NULL DEFAULT 0,
	auto_notify             INTEGER NOT NULL DEFAULT 0,
	advance_create_days     INTEGER NOT NULL DEFAULT 0,
	advance_notify_days     INTEGER NOT NULL DEFAULT 0,
	recurrence_period_type  TEXT NOT NULL,
	recurrence_multiplier   INTEGER NOT NULL DEFAULT 1,
	recurrence_period_start TIMESTAMP,
	recurrence_period_end   TIMESTAMP,
	recurrence_count        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_scheduled_actions_book ON scheduled_actions(book_uid);

CREATE TABLE IF NOT EXISTS preferences (
	book_uid TEXT NOT NULL,
	key      TEXT NOT NULL,
	value    TEXT NOT NULL,
	PRIMARY KEY (book_uid, key)
);
`

// InitSchema creates all tables and indexes if they do not exist.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
