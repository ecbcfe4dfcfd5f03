package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/initio-ai/initio/internal/profile"
	"github.com/initio-ai/initio/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a PostgreSQL database specified by the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	postgresDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	driver := DB{db: postgresDB, profile: profile}

	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// placeholder returns the positional parameter for the given 1-based index.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns a comma-separated list of positional parameters $1..$n.
func placeholders(n int) string {
	list := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		list = append(list, placeholder(i))
	}
	return strings.Join(list, ", ")
}

const schema = `
CREATE TABLE IF NOT EXISTS goal (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active',
	target_date TEXT,
	progress_percent REAL NOT NULL DEFAULT 0,
	is_scheduled BOOLEAN NOT NULL DEFAULT FALSE,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_goal_user_id ON goal (user_id);

CREATE TABLE IF NOT EXISTS step (
	id SERIAL PRIMARY KEY,
	goal_id INTEGER NOT NULL REFERENCES goal (id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	step_order INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'pending',
	estimated_hours REAL,
	planned_date TEXT,
	planned_time TEXT,
	duration_minutes INTEGER,
	linked_event_id INTEGER,
	completed_ts BIGINT
);

CREATE INDEX IF NOT EXISTS idx_step_goal_id ON step (goal_id);

CREATE TABLE IF NOT EXISTS event (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	date TEXT NOT NULL,
	time TEXT,
	duration_minutes INTEGER NOT NULL DEFAULT 60,
	kind TEXT NOT NULL DEFAULT 'user',
	linked_step_id INTEGER,
	linked_goal_id INTEGER,
	notes TEXT NOT NULL DEFAULT '',
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_event_user_date ON event (user_id, date);
`

// Migrate applies the schema. Statements are idempotent so this is safe
// to run on every startup.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
