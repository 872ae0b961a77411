package domain

// CreateTeamRequest is the body for creating a team.
type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateProjectRequest is the body for creating a project inside a team.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// InitRunRequest is the body for creating a run. Config and Tags are
// normalized by the client so the server always receives an object and an
// array.
type InitRunRequest struct {
	Name              string     `json:"name"`
	Config            *RunConfig `json:"config"`
	Notes             string     `json:"notes,omitempty"`
	Tags              []string   `json:"tags"`
	Hostname          string     `json:"hostname,omitempty"`
	OSInfo            string     `json:"os_info,omitempty"`
	RuntimeVersion    string     `json:"runtime_version,omitempty"`
	RuntimeExecutable string     `json:"runtime_executable,omitempty"`
	Command           string     `json:"command,omitempty"`
	ClientVersion     string     `json:"client_version,omitempty"`
}

// LogMetricRequest is the body for recording one metric sample.
type LogMetricRequest struct {
	Name  string      `json:"name"`
	Value MetricValue `json:"value"`
	Step  int64       `json:"step"`
}

// MetricQuery filters a run's metric records. Nil fields are not sent, and
// all present filters must match (conjunction).
type MetricQuery struct {
	MetricName string
	MinValue   *float64
	MaxValue   *float64
	MinStep    *int64
	MaxStep    *int64
}

// CreateRoleRequest is the body for creating a role within a team.
type CreateRoleRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Permissions map[string]bool `json:"permissions,omitempty"`
}
