//go:build sqlite
// +build sqlite

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"remindbot/internal/remind"
	logx "remindbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteBackend struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Backend, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	b := &sqliteBackend{db: db, log: log}
	if err := b.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func (b *sqliteBackend) migrate(ctx context.Context) error {
	sqlText, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx, string(sqlText))
	return err
}

func (b *sqliteBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *sqliteBackend) Load(ctx context.Context) (remind.UserReminderSet, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT user_id, task, frequency, time, start_date, end_date, datetime, sent
		 FROM reminders ORDER BY user_id, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := remind.UserReminderSet{}
	for rows.Next() {
		var (
			user string
			rec  record
			freq, tod, start, end, dt sql.NullString
			sent int
		)
		if err := rows.Scan(&user, &rec.Task, &freq, &tod, &start, &end, &dt, &sent); err != nil {
			return nil, err
		}
		rec.Frequency = freq.String
		rec.Time = tod.String
		rec.StartDate = start.String
		if end.Valid {
			s := end.String
			rec.EndDate = &s
		}
		rec.DateTime = dt.String
		rec.Sent = sent != 0

		r, err := decodeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", user, err)
		}
		set[user] = append(set[user], r)
	}
	return set, rows.Err()
}

// Save replaces the whole table in one transaction; the set is small enough
// that wholesale rewrite beats diffing.
func (b *sqliteBackend) Save(ctx context.Context, set remind.UserReminderSet) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reminders(user_id, position, task, frequency, time, start_date, end_date, datetime, sent)
		 VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for user, list := range set {
		for i, r := range list {
			rec := encodeRecord(r)
			sent := 0
			if rec.Sent {
				sent = 1
			}
			_, err := stmt.ExecContext(ctx, user, i,
				rec.Task, nullStr(rec.Frequency), nullStr(rec.Time), nullStr(rec.StartDate),
				nullStrPtr(rec.EndDate), nullStr(rec.DateTime), sent)
			if err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func nullStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullStrPtr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
