package dispatch

import (
	"github.com/danmuck/seedctl/internal/project"
	"github.com/danmuck/seedctl/internal/seeds"
)

const (
	ToolSeed   = "seed"
	ToolDetect = "detect_project_type"
	ToolList   = "list_seeders"

	DefaultEnv = "development"

	// TimestampFormat is ISO-8601 in UTC with millisecond precision.
	TimestampFormat = "2006-01-02T15:04:05.000Z07:00"
)

// SeedRequest is the input of the seed tool.
type SeedRequest struct {
	ProjectPath string `json:"projectPath,omitempty" jsonschema:"filesystem path of the project to seed"`
	Env         string `json:"env,omitempty" jsonschema:"seed environment, defaults to development"`
	Force       bool   `json:"force,omitempty" jsonschema:"re-seed even when a prior seed for env is recorded"`
}

// PathRequest is the input of the detect_project_type and list_seeders tools.
type PathRequest struct {
	ProjectPath string `json:"projectPath,omitempty" jsonschema:"filesystem path of the project to inspect"`
}

// SeedResult is the seed tool envelope.
type SeedResult struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	ProjectType project.Type      `json:"projectType"`
	ProjectPath string            `json:"projectPath"`
	Env         string            `json:"env"`
	Output      string            `json:"output,omitempty"`
	FailureKind seeds.FailureKind `json:"failureKind,omitempty"`
	Skipped     bool              `json:"skipped,omitempty"`
	DurationMS  int64             `json:"durationMs,omitempty"`
	Timestamp   string            `json:"timestamp"`
}

// DetectResult is the detect_project_type envelope.
type DetectResult struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message,omitempty"`
	FailureKind   seeds.FailureKind      `json:"failureKind,omitempty"`
	ProjectType   project.Type           `json:"projectType"`
	ProjectPath   string                 `json:"projectPath"`
	DetectedFiles []project.DetectedFile `json:"detectedFiles"`
	Timestamp     string                 `json:"timestamp"`
}

// ListResult is the list_seeders envelope.
type ListResult struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message,omitempty"`
	FailureKind seeds.FailureKind  `json:"failureKind,omitempty"`
	ProjectType project.Type       `json:"projectType"`
	ProjectPath string             `json:"projectPath"`
	Seeders     []seeds.Descriptor `json:"seeders"`
	Timestamp   string             `json:"timestamp"`
}

// ToolInfo describes one dispatchable tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
