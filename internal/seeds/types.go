package seeds

import (
	"context"
	"time"

	"github.com/danmuck/seedctl/internal/project"
	"github.com/danmuck/seedctl/internal/tools"
)

// Metadata is the contract for adapter identity and display data.
type Metadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FailureKind classifies why a seed run did not succeed.
type FailureKind string

const (
	KindInvalidParams FailureKind = "invalid_params"
	KindNotFound      FailureKind = "not_found"
	KindUnsupported   FailureKind = "unsupported"
	KindBusy          FailureKind = "busy"
	KindCommandFailed FailureKind = "command_failed"
	KindLaunchFailed  FailureKind = "launch_failed"
	KindTimeout       FailureKind = "timeout"
	KindCancelled     FailureKind = "cancelled"
)

// Report is the uniform adapter outcome. Output carries stdout on success
// and stderr on failure.
type Report struct {
	Success  bool
	Message  string
	Output   string
	Kind     FailureKind
	ExitCode int
	Duration time.Duration
}

// Layout describes where an ecosystem keeps its seed definitions.
type Layout struct {
	Dir   string
	Tag   string
	Match func(name string) bool
}

// Descriptor is one candidate seed-definition file. It is not opened or validated.
type Descriptor struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// Adapter is the seeding boundary for one ecosystem.
type Adapter interface {
	Type() project.Type
	Metadata() Metadata
	// Command returns the invocation for env without a working directory.
	Command(env string) tools.Command
	Layout() Layout
	Seed(ctx context.Context, projectPath, env string) Report
}
