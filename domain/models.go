package domain

import (
	"time"
)

// User represents the account that owns the API key.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Team represents an organization that groups projects.
type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Project represents an experiment namespace inside a team.
type Project struct {
	ID          int64     `json:"id"`
	TeamID      int64     `json:"team_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Run represents one tracked execution inside a project.
type Run struct {
	ID             int64      `json:"id"`
	ProjectID      int64      `json:"project_id"`
	Name           string     `json:"name"`
	Status         RunStatus  `json:"status"`
	Config         *RunConfig `json:"config,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	RuntimeSeconds *float64   `json:"runtime_seconds,omitempty"`
	StorageUsedMB  float64    `json:"storage_used_mb"`

	// Environment captured at creation time.
	Hostname          string `json:"hostname,omitempty"`
	OSInfo            string `json:"os_info,omitempty"`
	RuntimeVersion    string `json:"runtime_version,omitempty"`
	RuntimeExecutable string `json:"runtime_executable,omitempty"`
	Command           string `json:"command,omitempty"`
	ClientVersion     string `json:"client_version,omitempty"`
}

// Metric represents one recorded metric sample. Numeric metrics carry a
// float value; console-output records carry text.
type Metric struct {
	ID        int64       `json:"id"`
	RunID     int64       `json:"run_id"`
	Name      string      `json:"name"`
	Value     MetricValue `json:"value"`
	Step      int64       `json:"step"`
	CreatedAt time.Time   `json:"created_at"`
}

// RunFile describes a file attached to a run.
type RunFile struct {
	ID        int64     `json:"id"`
	RunID     int64     `json:"run_id"`
	Filename  string    `json:"filename"`
	FileType  FileType  `json:"file_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// MetricSummary aggregates all samples of one metric name within a run.
type MetricSummary struct {
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Last  float64 `json:"last"`
}

// AggregatedMetrics is the per-run aggregation keyed by metric name.
// Text-valued records are excluded from aggregation.
type AggregatedMetrics struct {
	RunID   int64                    `json:"run_id"`
	Metrics map[string]MetricSummary `json:"metrics"`
}

// MetricQueryResult is the response to a filtered metric query.
type MetricQueryResult struct {
	RunID   int64    `json:"run_id"`
	Count   int      `json:"count"`
	Results []Metric `json:"results"`
}

// RunFinishResult is the response to finishing a run.
type RunFinishResult struct {
	RunID          int64     `json:"run_id"`
	Status         RunStatus `json:"status"`
	RuntimeSeconds float64   `json:"runtime_seconds"`
	Message        string    `json:"message,omitempty"`
}

// DashboardOverview summarizes everything visible to the caller.
type DashboardOverview struct {
	TotalTeams    int64   `json:"total_teams"`
	TotalProjects int64   `json:"total_projects"`
	TotalRuns     int64   `json:"total_runs"`
	ActiveRuns    int64   `json:"active_runs"`
	StorageUsedMB float64 `json:"storage_used_mb"`
}

// ProjectDashboard summarizes one project.
type ProjectDashboard struct {
	ProjectID  int64 `json:"project_id"`
	RunCount   int64 `json:"run_count"`
	ActiveRuns int64 `json:"active_runs"`
	RecentRuns []Run `json:"recent_runs"`
}

// RunComparisonEntry is one run's slice of a cross-run comparison. Metrics
// holds the latest numeric value per metric name.
type RunComparisonEntry struct {
	RunID          int64              `json:"run_id"`
	Name           string             `json:"name"`
	Status         RunStatus          `json:"status"`
	RuntimeSeconds *float64           `json:"runtime_seconds,omitempty"`
	Metrics        map[string]float64 `json:"metrics"`
}

// RunComparison compares several runs of one project side by side.
type RunComparison struct {
	ProjectID int64                `json:"project_id"`
	Runs      []RunComparisonEntry `json:"runs"`
}

// TimeseriesPoint is one sample in a time-series plot.
type TimeseriesPoint struct {
	Step      int64     `json:"step"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// TimeseriesPlot is the step-ordered series of one metric within a run.
type TimeseriesPlot struct {
	RunID      int64             `json:"run_id"`
	MetricName string            `json:"metric_name"`
	Points     []TimeseriesPoint `json:"points"`
}

// MultiPlot holds every numeric series of a run keyed by metric name.
type MultiPlot struct {
	RunID  int64                        `json:"run_id"`
	Series map[string][]TimeseriesPoint `json:"series"`
}

// AuditLog records one administrative change. Scope columns are set when the
// action touches the corresponding resource.
type AuditLog struct {
	ID        int64       `json:"id"`
	Action    AuditAction `json:"action"`
	Detail    string      `json:"detail,omitempty"`
	TeamID    *int64      `json:"team_id,omitempty"`
	ProjectID *int64      `json:"project_id,omitempty"`
	RunID     *int64      `json:"run_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Role represents a named permission set within a team.
type Role struct {
	ID          int64           `json:"id"`
	TeamID      int64           `json:"team_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Permissions map[string]bool `json:"permissions"`
}

// RoleAssignment binds a role to a team member.
type RoleAssignment struct {
	TeamID    int64     `json:"team_id"`
	UserID    int64     `json:"user_id"`
	RoleID    int64     `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Health is the server liveness response.
type Health struct {
	Status string `json:"status"`
}
