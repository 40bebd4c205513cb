package seeds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/seedctl/internal/project"
	"github.com/danmuck/seedctl/internal/tools"
	"github.com/rs/zerolog/log"
)

const (
	PrismaCommand    = "npx prisma db seed --preview-feature"
	DjangoCommand    = "python manage.py loaddata fixtures/*.json"
	AlembicCommand   = "alembic upgrade head"
	SequelizeCommand = "npx sequelize-cli db:seed:all"

	// EnvVar carries the requested seed environment into every command.
	EnvVar = "SEEDCTL_ENV"
)

// ShellAdapter runs one fixed command line in the project directory.
type ShellAdapter struct {
	kind    project.Type
	meta    Metadata
	line    string
	nodeEnv bool
	layout  Layout
	runner  tools.CommandRunner
}

var _ Adapter = (*ShellAdapter)(nil)

func NewPrismaAdapter(runner tools.CommandRunner) *ShellAdapter {
	return &ShellAdapter{
		kind: project.Prisma,
		meta: Metadata{
			ID:          "seed.prisma",
			Name:        "Prisma",
			Description: "Runs the prisma seed script configured in package.json",
		},
		line:    PrismaCommand,
		nodeEnv: true,
		layout:  Layout{Dir: "prisma/seed", Tag: "prisma-seeder", Match: hasExt(".ts", ".js")},
		runner:  runnerOrDefault(runner),
	}
}

func NewDjangoAdapter(runner tools.CommandRunner) *ShellAdapter {
	return &ShellAdapter{
		kind: project.Django,
		meta: Metadata{
			ID:          "seed.django",
			Name:        "Django",
			Description: "Loads every JSON fixture under fixtures/ through manage.py",
		},
		line:   DjangoCommand,
		layout: Layout{Dir: "fixtures", Tag: "django-fixture", Match: hasExt(".json")},
		runner: runnerOrDefault(runner),
	}
}

func NewAlembicAdapter(runner tools.CommandRunner) *ShellAdapter {
	return &ShellAdapter{
		kind: project.Alembic,
		meta: Metadata{
			ID:          "seed.alembic",
			Name:        "Alembic",
			Description: "Upgrades to head so that seed revisions are applied",
		},
		line: AlembicCommand,
		layout: Layout{Dir: "alembic/versions", Tag: "alembic-seeder", Match: func(name string) bool {
			return strings.Contains(name, "seed") && strings.HasSuffix(name, ".py")
		}},
		runner: runnerOrDefault(runner),
	}
}

func NewSequelizeAdapter(runner tools.CommandRunner) *ShellAdapter {
	return &ShellAdapter{
		kind: project.Sequelize,
		meta: Metadata{
			ID:          "seed.sequelize",
			Name:        "Sequelize",
			Description: "Runs every seeder under seeders/ with sequelize-cli",
		},
		line:    SequelizeCommand,
		nodeEnv: true,
		layout:  Layout{Dir: "seeders", Tag: "sequelize-seeder", Match: hasExt(".js")},
		runner:  runnerOrDefault(runner),
	}
}

// WithCommandLine returns a copy that runs line instead of the default command.
// A blank line keeps the default.
func (a *ShellAdapter) WithCommandLine(line string) *ShellAdapter {
	out := *a
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		out.line = trimmed
	}
	return &out
}

func (a *ShellAdapter) Type() project.Type {
	return a.kind
}

func (a *ShellAdapter) Metadata() Metadata {
	return a.meta
}

func (a *ShellAdapter) Layout() Layout {
	return a.layout
}

// Command threads env through the environment only; the command line is fixed.
func (a *ShellAdapter) Command(env string) tools.Command {
	vars := []string{EnvVar + "=" + env}
	if a.nodeEnv {
		vars = append(vars, "NODE_ENV="+env)
	}
	return tools.Command{Line: a.line, Env: vars}
}

func (a *ShellAdapter) Seed(ctx context.Context, projectPath, env string) (report Report) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("project_type", string(a.kind)).Interface("panic", r).Msg("adapter panic")
			report = a.errorReport(fmt.Errorf("%v", r))
		}
	}()

	cmd := a.Command(env)
	cmd.Dir = projectPath
	log.Debug().
		Str("project_type", string(a.kind)).
		Str("project_path", projectPath).
		Str("command", cmd.Line).
		Str("env", env).
		Msg("seeds: running adapter command")

	res, err := a.runner.Run(ctx, cmd)
	if err != nil {
		log.Error().Err(err).Str("project_type", string(a.kind)).Msg("seeds: command launch failed")
		return a.errorReport(err)
	}

	report = Report{ExitCode: res.ExitCode, Duration: res.Duration}
	switch {
	case res.TimedOut:
		report.Kind = KindTimeout
		report.Message = fmt.Sprintf("%s seeding timed out after %s", a.meta.Name, res.Duration.Round(time.Millisecond))
		report.Output = res.Stderr
	case res.Cancelled:
		report.Kind = KindCancelled
		report.Message = fmt.Sprintf("%s seeding cancelled", a.meta.Name)
		report.Output = res.Stderr
	case res.Success:
		report.Success = true
		report.Message = fmt.Sprintf("%s seeding completed successfully", a.meta.Name)
		report.Output = res.Stdout
	default:
		report.Kind = KindCommandFailed
		report.Message = fmt.Sprintf("%s seeding failed", a.meta.Name)
		report.Output = res.Stderr
	}
	return report
}

func (a *ShellAdapter) errorReport(err error) Report {
	return Report{
		Kind:     KindLaunchFailed,
		Message:  fmt.Sprintf("%s seeding error: %v", a.kind, err),
		ExitCode: tools.ExitNotFound,
	}
}

func runnerOrDefault(runner tools.CommandRunner) tools.CommandRunner {
	if runner == nil {
		return tools.ExecRunner{}
	}
	return runner
}

func hasExt(exts ...string) func(string) bool {
	return func(name string) bool {
		for _, ext := range exts {
			if strings.HasSuffix(name, ext) {
				return true
			}
		}
		return false
	}
}
