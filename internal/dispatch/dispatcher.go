package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/seedctl/internal/observability"
	"github.com/danmuck/seedctl/internal/project"
	"github.com/danmuck/seedctl/internal/seeds"
	"github.com/danmuck/seedctl/internal/tools"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures a Dispatcher. Zero values select the built-in adapters,
// a fresh lease table, reject-on-busy, and no re-seed guard.
type Options struct {
	Registry     *seeds.Registry
	Leases       *seeds.Leases
	WaitForLease bool
	SkipSeeded   bool
	Now          func() time.Time
}

type Dispatcher struct {
	registry     *seeds.Registry
	leases       *seeds.Leases
	waitForLease bool
	skipSeeded   bool
	now          func() time.Time
}

func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		registry:     opts.Registry,
		leases:       opts.Leases,
		waitForLease: opts.WaitForLease,
		skipSeeded:   opts.SkipSeeded,
		now:          opts.Now,
	}
	if d.registry == nil {
		d.registry = seeds.DefaultRegistry(tools.ExecRunner{}, nil)
	}
	if d.leases == nil {
		d.leases = seeds.NewLeases()
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Registry exposes the adapter registry for catalogue endpoints.
func (d *Dispatcher) Registry() *seeds.Registry {
	return d.registry
}

// Tools returns the dispatchable tools in a stable order.
func (d *Dispatcher) Tools() []ToolInfo {
	return []ToolInfo{
		{Name: ToolSeed, Description: "Detect the project's ORM ecosystem and run its seed command"},
		{Name: ToolDetect, Description: "Detect the project's ORM ecosystem and report every marker file found"},
		{Name: ToolList, Description: "List candidate seed files in the detected ecosystem's seed directory"},
	}
}

// Dispatch decodes raw JSON arguments and routes to the named tool.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	switch name {
	case ToolSeed:
		var req SeedRequest
		if err := decodeArgs(raw, &req); err != nil {
			return nil, err
		}
		return d.Seed(ctx, req), nil
	case ToolDetect:
		var req PathRequest
		if err := decodeArgs(raw, &req); err != nil {
			return nil, err
		}
		return d.DetectProjectType(ctx, req), nil
	case ToolList:
		var req PathRequest
		if err := decodeArgs(raw, &req); err != nil {
			return nil, err
		}
		return d.ListSeeders(ctx, req), nil
	default:
		log.Warn().Str("tool", name).Msg("dispatch: unknown tool")
		return nil, &UnknownToolError{Name: name}
	}
}

func decodeArgs(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

// Seed detects the project type and runs the matching adapter while holding
// the project's lease.
func (d *Dispatcher) Seed(ctx context.Context, req SeedRequest) SeedResult {
	start := time.Now()
	logger := requestLogger(ToolSeed)
	res := d.seed(ctx, req, logger)
	res.Timestamp = d.timestamp()

	observability.RecordToolCall(ToolSeed, res.Success, time.Since(start))
	event := logger.Info()
	if !res.Success {
		event = logger.Warn()
	}
	event.
		Str("project_type", string(res.ProjectType)).
		Str("project_path", res.ProjectPath).
		Str("env", res.Env).
		Bool("success", res.Success).
		Bool("skipped", res.Skipped).
		Str("kind", string(res.FailureKind)).
		Dur("duration", time.Since(start)).
		Msg(res.Message)
	return res
}

func (d *Dispatcher) seed(ctx context.Context, req SeedRequest, logger zerolog.Logger) SeedResult {
	env := strings.TrimSpace(req.Env)
	if env == "" {
		env = DefaultEnv
	}
	res := SeedResult{
		ProjectType: project.Unknown,
		ProjectPath: req.ProjectPath,
		Env:         env,
	}

	path := strings.TrimSpace(req.ProjectPath)
	if path == "" {
		res.Message = "projectPath is required"
		res.FailureKind = seeds.KindInvalidParams
		return res
	}
	if !project.IsDir(path) {
		res.Message = fmt.Sprintf("project path not found or not a directory: %s", path)
		res.FailureKind = seeds.KindNotFound
		return res
	}

	res.ProjectType = project.Detect(path)
	adapter, ok := d.registry.Resolve(res.ProjectType)
	if !ok {
		res.Message = d.unsupportedMessage()
		res.FailureKind = seeds.KindUnsupported
		return res
	}

	release, err := d.leases.Acquire(ctx, path, d.waitForLease)
	if err != nil {
		if errors.Is(err, seeds.ErrBusy) {
			res.Message = fmt.Sprintf("seeding in progress for %s", path)
			res.FailureKind = seeds.KindBusy
		} else {
			res.Message = fmt.Sprintf("%s seeding cancelled while waiting for lease: %v", res.ProjectType, err)
			res.FailureKind = seeds.KindCancelled
		}
		return res
	}
	defer release()

	// A queued caller may have waited out changes to the project tree.
	if d.waitForLease {
		if kind := project.Detect(path); kind != res.ProjectType {
			logger.Info().
				Str("project_path", path).
				Str("was", string(res.ProjectType)).
				Str("now", string(kind)).
				Msg("dispatch: project type changed while waiting for lease")
			res.ProjectType = kind
			if adapter, ok = d.registry.Resolve(kind); !ok {
				res.Message = d.unsupportedMessage()
				res.FailureKind = seeds.KindUnsupported
				return res
			}
		}
	}

	if d.skipSeeded && !req.Force {
		st, found, err := seeds.LoadState(path)
		if err != nil {
			logger.Warn().Err(err).Str("project_path", path).Msg("dispatch: ignoring unreadable seed state")
		}
		if found && st.Matches(res.ProjectType, env) {
			res.Success = true
			res.Skipped = true
			res.Message = fmt.Sprintf(
				"%s already seeded for env %s at %s; pass force to re-seed",
				adapter.Metadata().Name, env, st.SeededAt.UTC().Format(TimestampFormat),
			)
			observability.RecordSeedRun(string(res.ProjectType), "skipped", 0)
			return res
		}
	}

	report := adapter.Seed(ctx, path, env)
	res.Success = report.Success
	res.Message = report.Message
	res.Output = report.Output
	res.FailureKind = report.Kind
	res.DurationMS = report.Duration.Milliseconds()
	observability.RecordSeedRun(string(res.ProjectType), string(report.Kind), report.Duration)

	if report.Success && d.skipSeeded {
		st := seeds.State{
			ProjectType: res.ProjectType,
			Env:         env,
			Command:     adapter.Command(env).Line,
			SeededAt:    d.now().UTC(),
		}
		if err := seeds.SaveState(path, st); err != nil {
			logger.Warn().Err(err).Str("project_path", path).Msg("dispatch: seed state not recorded")
		}
	}
	return res
}

// DetectProjectType reports the winning ecosystem and every marker found.
func (d *Dispatcher) DetectProjectType(ctx context.Context, req PathRequest) DetectResult {
	start := time.Now()
	res := DetectResult{
		ProjectType:   project.Unknown,
		ProjectPath:   req.ProjectPath,
		DetectedFiles: make([]project.DetectedFile, 0),
	}
	path := strings.TrimSpace(req.ProjectPath)
	switch {
	case path == "":
		res.Message = "projectPath is required"
		res.FailureKind = seeds.KindInvalidParams
	case !project.IsDir(path):
		res.Message = fmt.Sprintf("project path not found or not a directory: %s", path)
		res.FailureKind = seeds.KindNotFound
	default:
		res.ProjectType, res.DetectedFiles = project.DetectAll(path)
		res.Success = true
	}
	res.Timestamp = d.timestamp()

	observability.RecordToolCall(ToolDetect, res.Success, time.Since(start))
	logger := requestLogger(ToolDetect)
	logger.Debug().
		Str("project_path", res.ProjectPath).
		Str("project_type", string(res.ProjectType)).
		Int("markers", len(res.DetectedFiles)).
		Msg("dispatch: detect")
	return res
}

// ListSeeders enumerates seed-definition files for the detected ecosystem.
func (d *Dispatcher) ListSeeders(ctx context.Context, req PathRequest) ListResult {
	start := time.Now()
	res := ListResult{
		ProjectType: project.Unknown,
		ProjectPath: req.ProjectPath,
		Seeders:     make([]seeds.Descriptor, 0),
	}
	path := strings.TrimSpace(req.ProjectPath)
	switch {
	case path == "":
		res.Message = "projectPath is required"
		res.FailureKind = seeds.KindInvalidParams
	case !project.IsDir(path):
		res.Message = fmt.Sprintf("project path not found or not a directory: %s", path)
		res.FailureKind = seeds.KindNotFound
	default:
		res.ProjectType, res.Seeders = d.registry.ListSeeders(path)
		res.Success = true
	}
	res.Timestamp = d.timestamp()

	observability.RecordToolCall(ToolList, res.Success, time.Since(start))
	logger := requestLogger(ToolList)
	logger.Debug().
		Str("project_path", res.ProjectPath).
		Str("project_type", string(res.ProjectType)).
		Int("seeders", len(res.Seeders)).
		Msg("dispatch: list")
	return res
}

func (d *Dispatcher) unsupportedMessage() string {
	types := d.registry.Types()
	names := make([]string, 0, len(types))
	for _, kind := range types {
		names = append(names, string(kind))
	}
	return "Unsupported or undetected project type. Supported types: " + strings.Join(names, ", ")
}

func (d *Dispatcher) timestamp() string {
	return d.now().UTC().Format(TimestampFormat)
}

func requestLogger(tool string) zerolog.Logger {
	return log.With().Str("tool", tool).Str("request_id", uuid.NewString()).Logger()
}
