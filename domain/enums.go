// Package domain defines the wire-level data model for the tracking API.
package domain

// RunStatus represents the lifecycle state of a run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusFinished RunStatus = "finished"
)

// FileType classifies a file attached to a run. The server accepts free-form
// values; these cover the common cases.
type FileType string

const (
	FileTypeConfig       FileType = "config"
	FileTypeCode         FileType = "code"
	FileTypeRequirements FileType = "requirements"
	FileTypeModel        FileType = "model"
	FileTypeOther        FileType = "other"
)

// AuditAction identifies the kind of change an audit-log entry records.
type AuditAction string

const (
	AuditTeamCreated    AuditAction = "team_created"
	AuditProjectCreated AuditAction = "project_created"
	AuditRunCreated     AuditAction = "run_created"
	AuditRunFinished    AuditAction = "run_finished"
	AuditFileUploaded   AuditAction = "file_uploaded"
	AuditRoleCreated    AuditAction = "role_created"
	AuditRoleAssigned   AuditAction = "role_assigned"
)
