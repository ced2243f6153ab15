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
	"time"

	_ "modernc.org/sqlite"

	"github.com/SHIN-ko/chuihyang-sub000/internal/project"
	"github.com/SHIN-ko/chuihyang-sub000/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

// Open initializes the SQLite store. It returns (nil, nil) if Path is empty
// (storage disabled, only useful for throwaway runs).
func Open(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
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

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ---- Projects ----

func (s *sqliteStore) SaveProject(ctx context.Context, p project.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	var actual any
	if p.ActualEndDate != nil {
		actual = p.ActualEndDate.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects(id, name, status, start_date, expected_end, actual_end, recipe_key)
		 VALUES(?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, status=excluded.status, start_date=excluded.start_date,
		   expected_end=excluded.expected_end, actual_end=excluded.actual_end,
		   recipe_key=excluded.recipe_key`,
		p.ID, p.Name, string(p.Status), p.StartDate.String(), p.ExpectedEndDate.String(),
		actual, nullStr(p.RecipeKey),
	)
	return err
}

func (s *sqliteStore) GetProject(ctx context.Context, id string) (project.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, status, start_date, expected_end, actual_end, recipe_key
		 FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return project.Project{}, ErrNotFound
	}
	return p, err
}

func (s *sqliteStore) ListProjects(ctx context.Context) ([]project.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status, start_date, expected_end, actual_end, recipe_key
		 FROM projects ORDER BY start_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *sqliteStore) DeleteProject(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (project.Project, error) {
	var (
		p          project.Project
		status     string
		start, end string
		actual     sql.NullString
		recipe     sql.NullString
	)
	if err := r.Scan(&p.ID, &p.Name, &status, &start, &end, &actual, &recipe); err != nil {
		return project.Project{}, err
	}
	st, err := project.ParseStatus(status)
	if err != nil {
		return project.Project{}, err
	}
	p.Status = st
	if p.StartDate, err = project.ParseDate(start); err != nil {
		return project.Project{}, err
	}
	if p.ExpectedEndDate, err = project.ParseDate(end); err != nil {
		return project.Project{}, err
	}
	if actual.Valid && actual.String != "" {
		d, err := project.ParseDate(actual.String)
		if err != nil {
			return project.Project{}, err
		}
		p.ActualEndDate = &d
	}
	p.RecipeKey = recipe.String
	return p, nil
}

// ---- Settings blob ----

const settingsKey = "notification_settings"

func (s *sqliteStore) GetSettingsJSON(ctx context.Context) ([]byte, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(raw), true, nil
}

func (s *sqliteStore) PutSettingsJSON(ctx context.Context, raw []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings(key, value) VALUES(?,?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		settingsKey, string(raw),
	)
	return err
}

// ---- Registrations ----

func (s *sqliteStore) PutRegistration(ctx context.Context, r Registration) error {
	if strings.TrimSpace(r.Identifier) == "" {
		return errors.New("registration identifier required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO registrations(identifier, project_id, title, body, trigger_at, sound)
		 VALUES(?,?,?,?,?,?)
		 ON CONFLICT(identifier) DO UPDATE SET
		   project_id=excluded.project_id, title=excluded.title, body=excluded.body,
		   trigger_at=excluded.trigger_at, sound=excluded.sound`,
		r.Identifier, r.ProjectID, r.Title, r.Body, r.TriggerAt.UnixMilli(), boolInt(r.Sound),
	)
	return err
}

func (s *sqliteStore) DeleteRegistration(ctx context.Context, identifier string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM registrations WHERE identifier = ?`, identifier)
	return err
}

func (s *sqliteStore) ListRegistrations(ctx context.Context) ([]Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier, project_id, title, body, trigger_at, sound
		 FROM registrations ORDER BY trigger_at, identifier`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Registration
	for rows.Next() {
		var (
			r     Registration
			ms    int64
			sound int
		)
		if err := rows.Scan(&r.Identifier, &r.ProjectID, &r.Title, &r.Body, &ms, &sound); err != nil {
			return nil, err
		}
		r.TriggerAt = time.UnixMilli(ms)
		r.Sound = sound != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// ---- Delivery log ----

func (s *sqliteStore) AppendDelivery(ctx context.Context, rec DeliveryRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries(at, identifier, title, err) VALUES(?,?,?,?)`,
		rec.At.Format(time.RFC3339Nano), rec.Identifier, rec.Title, nullStr(rec.Error),
	)
	return err
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
