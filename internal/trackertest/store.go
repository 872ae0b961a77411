// Package trackertest provides an in-process tracking server backed by
// SQLite for exercising the client against realistic API behavior.
package trackertest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gcharanteja/unilogger/domain"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists the fake server's state in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dsn and creates the schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Shared-cache in-memory databases need a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			team_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			FOREIGN KEY (team_id) REFERENCES teams(id)
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			notes TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			hostname TEXT NOT NULL DEFAULT '',
			os_info TEXT NOT NULL DEFAULT '',
			runtime_version TEXT NOT NULL DEFAULT '',
			runtime_executable TEXT NOT NULL DEFAULT '',
			command TEXT NOT NULL DEFAULT '',
			client_version TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			finished_at DATETIME,
			runtime_seconds REAL,
			storage_used_mb REAL NOT NULL DEFAULT 0,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS metrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			value REAL,
			text_value TEXT,
			step INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metrics_run ON metrics(run_id, name, step)`,
		`CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL,
			filename TEXT NOT NULL,
			file_type TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			stored_name TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			team_id INTEGER,
			project_id INTEGER,
			run_id INTEGER,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS roles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			team_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			permissions TEXT NOT NULL DEFAULT '{}',
			FOREIGN KEY (team_id) REFERENCES teams(id)
		)`,
		`CREATE TABLE IF NOT EXISTS role_assignments (
			team_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			role_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTeam inserts a team and returns it.
func (s *Store) CreateTeam(ctx context.Context, name, description string) (*domain.Team, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (name, description, created_at) VALUES (?, ?, ?)`,
		name, description, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Team{ID: id, Name: name, Description: description, CreatedAt: now}, nil
}

// ListTeams returns all teams in creation order.
func (s *Store) ListTeams(ctx context.Context) ([]domain.Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM teams ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// GetTeam returns one team, or nil when it does not exist.
func (s *Store) GetTeam(ctx context.Context, id int64) (*domain.Team, error) {
	var t domain.Team
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM teams WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateProject inserts a project and returns it.
func (s *Store) CreateProject(ctx context.Context, teamID int64, name, description string) (*domain.Project, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (team_id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		teamID, name, description, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Project{ID: id, TeamID: teamID, Name: name, Description: description, CreatedAt: now}, nil
}

// ListProjects returns one team's projects in creation order.
func (s *Store) ListProjects(ctx context.Context, teamID int64) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, team_id, name, description, created_at FROM projects WHERE team_id = ? ORDER BY id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject returns one project, or nil when it does not exist.
func (s *Store) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	var p domain.Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, team_id, name, description, created_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.TeamID, &p.Name, &p.Description, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateRun inserts a run in running state and returns it.
func (s *Store) CreateRun(ctx context.Context, projectID int64, req domain.InitRunRequest) (*domain.Run, error) {
	cfg := req.Config
	if cfg == nil {
		cfg = domain.NewRunConfig()
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (project_id, name, status, config, notes, tags,
			hostname, os_info, runtime_version, runtime_executable, command, client_version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		projectID, req.Name, domain.RunStatusRunning, string(cfgJSON), req.Notes, string(tagsJSON),
		req.Hostname, req.OSInfo, req.RuntimeVersion, req.RuntimeExecutable, req.Command, req.ClientVersion, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetRun(ctx, id)
}

const runColumns = `id, project_id, name, status, config, notes, tags,
	hostname, os_info, runtime_version, runtime_executable, command, client_version,
	created_at, finished_at, runtime_seconds, storage_used_mb`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var r domain.Run
	var cfgJSON, tagsJSON string
	var finishedAt sql.NullTime
	var runtime sql.NullFloat64
	err := row.Scan(&r.ID, &r.ProjectID, &r.Name, &r.Status, &cfgJSON, &r.Notes, &tagsJSON,
		&r.Hostname, &r.OSInfo, &r.RuntimeVersion, &r.RuntimeExecutable, &r.Command, &r.ClientVersion,
		&r.CreatedAt, &finishedAt, &runtime, &r.StorageUsedMB)
	if err != nil {
		return nil, err
	}
	r.Config = domain.NewRunConfig()
	if err := json.Unmarshal([]byte(cfgJSON), r.Config); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		r.FinishedAt = &finishedAt.Time
	}
	if runtime.Valid {
		r.RuntimeSeconds = &runtime.Float64
	}
	return &r, nil
}

// GetRun returns one run, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, id int64) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FinishRun marks a run finished. Finishing an already finished run answers
// with the recorded runtime instead of failing. Returns nil when the run
// does not exist.
func (s *Store) FinishRun(ctx context.Context, id int64) (*domain.RunFinishResult, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil || run == nil {
		return nil, err
	}
	if run.Status == domain.RunStatusFinished {
		res := &domain.RunFinishResult{RunID: id, Status: run.Status, Message: "run already finished"}
		if run.RuntimeSeconds != nil {
			res.RuntimeSeconds = *run.RuntimeSeconds
		}
		return res, nil
	}

	now := time.Now().UTC()
	runtime := now.Sub(run.CreatedAt).Seconds()
	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, runtime_seconds = ? WHERE id = ?`,
		domain.RunStatusFinished, now, runtime, id)
	if err != nil {
		return nil, err
	}
	return &domain.RunFinishResult{RunID: id, Status: domain.RunStatusFinished, RuntimeSeconds: runtime}, nil
}

// InsertMetric records one metric sample against a run.
func (s *Store) InsertMetric(ctx context.Context, runID int64, req domain.LogMetricRequest) (*domain.Metric, error) {
	var value sql.NullFloat64
	var text sql.NullString
	if req.Value.IsText() {
		text = sql.NullString{String: req.Value.Text(), Valid: true}
	} else {
		value = sql.NullFloat64{Float64: req.Value.Float64(), Valid: true}
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO metrics (run_id, name, value, text_value, step, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, req.Name, value, text, req.Step, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Metric{ID: id, RunID: runID, Name: req.Name, Value: req.Value, Step: req.Step, CreatedAt: now}, nil
}

func scanMetric(rows *sql.Rows) (domain.Metric, error) {
	var m domain.Metric
	var value sql.NullFloat64
	var text sql.NullString
	if err := rows.Scan(&m.ID, &m.RunID, &m.Name, &value, &text, &m.Step, &m.CreatedAt); err != nil {
		return m, err
	}
	if text.Valid {
		m.Value = domain.TextValue(text.String)
	} else {
		m.Value = domain.NumberValue(value.Float64)
	}
	return m, nil
}

// ListMetrics returns every metric record of a run in insertion order.
func (s *Store) ListMetrics(ctx context.Context, runID int64) ([]domain.Metric, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, name, value, text_value, step, created_at FROM metrics WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []domain.Metric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// QueryMetrics returns a run's metric records matching every filter set in
// q. Text-valued records never match value filters.
func (s *Store) QueryMetrics(ctx context.Context, runID int64, q domain.MetricQuery) ([]domain.Metric, error) {
	query := `SELECT id, run_id, name, value, text_value, step, created_at FROM metrics WHERE run_id = ?`
	args := []any{runID}

	if q.MetricName != "" {
		query += ` AND name = ?`
		args = append(args, q.MetricName)
	}
	if q.MinValue != nil {
		query += ` AND value >= ?`
		args = append(args, *q.MinValue)
	}
	if q.MaxValue != nil {
		query += ` AND value <= ?`
		args = append(args, *q.MaxValue)
	}
	if q.MinStep != nil {
		query += ` AND step >= ?`
		args = append(args, *q.MinStep)
	}
	if q.MaxStep != nil {
		query += ` AND step <= ?`
		args = append(args, *q.MaxStep)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []domain.Metric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// AggregateMetrics summarizes a run's numeric metrics per name. Text-valued
// records are excluded.
func (s *Store) AggregateMetrics(ctx context.Context, runID int64) (map[string]domain.MetricSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, COUNT(*), MIN(value), MAX(value), AVG(value)
		 FROM metrics WHERE run_id = ? AND value IS NOT NULL GROUP BY name`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make(map[string]domain.MetricSummary)
	for rows.Next() {
		var name string
		var sum domain.MetricSummary
		if err := rows.Scan(&name, &sum.Count, &sum.Min, &sum.Max, &sum.Avg); err != nil {
			return nil, err
		}
		summaries[name] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lastRows, err := s.db.QueryContext(ctx,
		`SELECT m.name, m.value FROM metrics m
		 JOIN (SELECT name, MAX(id) AS last_id FROM metrics WHERE run_id = ? AND value IS NOT NULL GROUP BY name) latest
		 ON m.id = latest.last_id`, runID)
	if err != nil {
		return nil, err
	}
	defer lastRows.Close()

	for lastRows.Next() {
		var name string
		var last float64
		if err := lastRows.Scan(&name, &last); err != nil {
			return nil, err
		}
		sum := summaries[name]
		sum.Last = last
		summaries[name] = sum
	}
	return summaries, lastRows.Err()
}

// InsertFile records an uploaded file and bumps the run's storage usage.
func (s *Store) InsertFile(ctx context.Context, runID int64, filename string, fileType domain.FileType, sizeBytes int64, storedName string) (*domain.RunFile, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO files (run_id, filename, file_type, size_bytes, stored_name, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, filename, fileType, sizeBytes, storedName, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET storage_used_mb = storage_used_mb + ? WHERE id = ?`,
		float64(sizeBytes)/(1024*1024), runID)
	if err != nil {
		return nil, err
	}
	return &domain.RunFile{ID: id, RunID: runID, Filename: filename, FileType: fileType, SizeBytes: sizeBytes, CreatedAt: now}, nil
}

// ListFiles returns a run's files in upload order.
func (s *Store) ListFiles(ctx context.Context, runID int64) ([]domain.RunFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, filename, file_type, size_bytes, created_at FROM files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []domain.RunFile
	for rows.Next() {
		var f domain.RunFile
		if err := rows.Scan(&f.ID, &f.RunID, &f.Filename, &f.FileType, &f.SizeBytes, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// GetFile returns one file record plus its storage name, or nil when it does
// not exist under the given run.
func (s *Store) GetFile(ctx context.Context, runID, fileID int64) (*domain.RunFile, string, error) {
	var f domain.RunFile
	var storedName string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, filename, file_type, size_bytes, stored_name, created_at
		 FROM files WHERE id = ? AND run_id = ?`, fileID, runID).
		Scan(&f.ID, &f.RunID, &f.Filename, &f.FileType, &f.SizeBytes, &storedName, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return &f, storedName, nil
}

// Overview aggregates counts across all teams, projects and runs.
func (s *Store) Overview(ctx context.Context) (*domain.DashboardOverview, error) {
	var o domain.DashboardOverview
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM teams),
		        (SELECT COUNT(*) FROM projects),
		        (SELECT COUNT(*) FROM runs),
		        (SELECT COUNT(*) FROM runs WHERE status = ?),
		        (SELECT COALESCE(SUM(storage_used_mb), 0) FROM runs)`,
		domain.RunStatusRunning).
		Scan(&o.TotalTeams, &o.TotalProjects, &o.TotalRuns, &o.ActiveRuns, &o.StorageUsedMB)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ProjectDashboard summarizes one project with its five most recent runs.
func (s *Store) ProjectDashboard(ctx context.Context, projectID int64) (*domain.ProjectDashboard, error) {
	dash := &domain.ProjectDashboard{ProjectID: projectID}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(status = ?), 0) FROM runs WHERE project_id = ?`,
		domain.RunStatusRunning, projectID).
		Scan(&dash.RunCount, &dash.ActiveRuns)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE project_id = ? ORDER BY id DESC LIMIT 5`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		dash.RecentRuns = append(dash.RecentRuns, *run)
	}
	return dash, rows.Err()
}

// CompareRuns returns the latest numeric value per metric name for each of
// the given runs. Runs outside the project are skipped.
func (s *Store) CompareRuns(ctx context.Context, projectID int64, runIDs []int64) (*domain.RunComparison, error) {
	cmp := &domain.RunComparison{ProjectID: projectID}
	for _, runID := range runIDs {
		run, err := s.GetRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		if run == nil || run.ProjectID != projectID {
			continue
		}
		entry := domain.RunComparisonEntry{
			RunID:          run.ID,
			Name:           run.Name,
			Status:         run.Status,
			RuntimeSeconds: run.RuntimeSeconds,
			Metrics:        make(map[string]float64),
		}
		rows, err := s.db.QueryContext(ctx,
			`SELECT m.name, m.value FROM metrics m
			 JOIN (SELECT name, MAX(id) AS last_id FROM metrics WHERE run_id = ? AND value IS NOT NULL GROUP BY name) latest
			 ON m.id = latest.last_id`, runID)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var name string
			var value float64
			if err := rows.Scan(&name, &value); err != nil {
				rows.Close()
				return nil, err
			}
			entry.Metrics[name] = value
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
		cmp.Runs = append(cmp.Runs, entry)
	}
	return cmp, nil
}

// Timeseries returns a run's numeric samples for one metric ordered by step.
func (s *Store) Timeseries(ctx context.Context, runID int64, metricName string) ([]domain.TimeseriesPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, value, created_at FROM metrics
		 WHERE run_id = ? AND name = ? AND value IS NOT NULL ORDER BY step, id`, runID, metricName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.TimeseriesPoint
	for rows.Next() {
		var p domain.TimeseriesPoint
		if err := rows.Scan(&p.Step, &p.Value, &p.Timestamp); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Multiplot returns every numeric series of a run keyed by metric name.
func (s *Store) Multiplot(ctx context.Context, runID int64) (map[string][]domain.TimeseriesPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, step, value, created_at FROM metrics
		 WHERE run_id = ? AND value IS NOT NULL ORDER BY name, step, id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := make(map[string][]domain.TimeseriesPoint)
	for rows.Next() {
		var name string
		var p domain.TimeseriesPoint
		if err := rows.Scan(&name, &p.Step, &p.Value, &p.Timestamp); err != nil {
			return nil, err
		}
		series[name] = append(series[name], p)
	}
	return series, rows.Err()
}

// RecordAudit appends one audit entry. Failures here never block the change
// being recorded.
func (s *Store) RecordAudit(ctx context.Context, action domain.AuditAction, detail string, teamID, projectID, runID *int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (action, detail, team_id, project_id, run_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		action, detail, teamID, projectID, runID, time.Now().UTC())
	return err
}

// AuditLogs returns audit entries newest first, optionally scoped to a team
// or project.
func (s *Store) AuditLogs(ctx context.Context, limit int, teamID, projectID *int64) ([]domain.AuditLog, error) {
	query := `SELECT id, action, detail, team_id, project_id, run_id, created_at FROM audit_logs`
	var conds []string
	var args []any
	if teamID != nil {
		conds = append(conds, "team_id = ?")
		args = append(args, *teamID)
	}
	if projectID != nil {
		conds = append(conds, "project_id = ?")
		args = append(args, *projectID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id DESC`
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var entry domain.AuditLog
		var tID, pID, rID sql.NullInt64
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.Detail, &tID, &pID, &rID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if tID.Valid {
			entry.TeamID = &tID.Int64
		}
		if pID.Valid {
			entry.ProjectID = &pID.Int64
		}
		if rID.Valid {
			entry.RunID = &rID.Int64
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// CreateRole inserts a role and returns it.
func (s *Store) CreateRole(ctx context.Context, teamID int64, req domain.CreateRoleRequest) (*domain.Role, error) {
	perms := req.Permissions
	if perms == nil {
		perms = map[string]bool{}
	}
	permsJSON, err := json.Marshal(perms)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO roles (team_id, name, description, permissions) VALUES (?, ?, ?, ?)`,
		teamID, req.Name, req.Description, string(permsJSON))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Role{ID: id, TeamID: teamID, Name: req.Name, Description: req.Description, Permissions: perms}, nil
}

// ListRoles returns one team's roles.
func (s *Store) ListRoles(ctx context.Context, teamID int64) ([]domain.Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, team_id, name, description, permissions FROM roles WHERE team_id = ? ORDER BY id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var r domain.Role
		var permsJSON string
		if err := rows.Scan(&r.ID, &r.TeamID, &r.Name, &r.Description, &permsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(permsJSON), &r.Permissions); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// AssignRole binds a role to a team member.
func (s *Store) AssignRole(ctx context.Context, teamID, userID, roleID int64) (*domain.RoleAssignment, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO role_assignments (team_id, user_id, role_id, created_at) VALUES (?, ?, ?, ?)`,
		teamID, userID, roleID, now)
	if err != nil {
		return nil, err
	}
	return &domain.RoleAssignment{TeamID: teamID, UserID: userID, RoleID: roleID, CreatedAt: now}, nil
}
