package seeds

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danmuck/seedctl/internal/project"
	"github.com/danmuck/seedctl/internal/testutil/testlog"
	"github.com/danmuck/seedctl/internal/tools"
)

type fakeAdapter struct {
	kind project.Type
	meta Metadata
}

func (f fakeAdapter) Type() project.Type               { return f.kind }
func (f fakeAdapter) Metadata() Metadata               { return f.meta }
func (f fakeAdapter) Command(env string) tools.Command { return tools.Command{Line: "true"} }
func (f fakeAdapter) Layout() Layout                   { return Layout{} }
func (f fakeAdapter) Seed(ctx context.Context, projectPath, env string) Report {
	return Report{Success: true}
}

func TestRegisterResolveAndDuplicate(t *testing.T) {
	testlog.Start(t)
	r := NewRegistry()
	a := fakeAdapter{kind: project.Prisma, meta: Metadata{ID: "seed.prisma", Name: "Prisma", Description: "fake"}}

	if err := r.Register(a); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(a); !errors.Is(err, ErrAdapterExists) {
		t.Fatalf("expected ErrAdapterExists, got %v", err)
	}
	got, ok := r.Resolve(project.Prisma)
	if !ok || got.Metadata().ID != "seed.prisma" {
		t.Fatalf("resolve failed: ok=%v", ok)
	}
	if _, ok := r.Resolve(project.Unknown); ok {
		t.Fatalf("unknown type should not resolve")
	}
}

func TestRegisterRejectsInvalidAdapters(t *testing.T) {
	testlog.Start(t)
	r := NewRegistry()
	if err := r.Register(nil); !errors.Is(err, ErrAdapterNil) {
		t.Fatalf("expected ErrAdapterNil, got %v", err)
	}
	bad := fakeAdapter{kind: project.Django, meta: Metadata{ID: "Seed.Django", Name: "Django", Description: "x"}}
	if err := r.Register(bad); !errors.Is(err, ErrInvalidMetadata) {
		t.Fatalf("expected ErrInvalidMetadata, got %v", err)
	}
	unknown := fakeAdapter{kind: project.Unknown, meta: Metadata{ID: "seed.unknown", Name: "U", Description: "x"}}
	if err := r.Register(unknown); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestValidateMetadataFailures(t *testing.T) {
	testlog.Start(t)
	cases := []Metadata{
		{ID: "", Name: "Prisma", Description: "x"},
		{ID: "seed.prisma", Name: "", Description: "x"},
		{ID: "seed.prisma", Name: "Prisma", Description: ""},
		{ID: ".seed.prisma", Name: "Prisma", Description: "x"},
		{ID: "seed..prisma", Name: "Prisma", Description: "x"},
	}
	for _, meta := range cases {
		if err := ValidateMetadata(meta); !errors.Is(err, ErrInvalidMetadata) {
			t.Fatalf("expected ErrInvalidMetadata for meta=%+v, got %v", meta, err)
		}
	}
}

func TestDefaultRegistryTypesAndMetadata(t *testing.T) {
	testlog.Start(t)
	r := DefaultRegistry(&fakeRunner{}, nil)

	if got := r.Types(); !reflect.DeepEqual(got, project.Supported()) {
		t.Fatalf("types = %v, want %v", got, project.Supported())
	}
	var ids []string
	for _, meta := range r.ListMetadata() {
		ids = append(ids, meta.ID)
	}
	want := []string{"seed.alembic", "seed.django", "seed.prisma", "seed.sequelize"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("metadata ids = %v, want %v", ids, want)
	}
}

func TestDefaultRegistryCommandOverride(t *testing.T) {
	testlog.Start(t)
	r := DefaultRegistry(&fakeRunner{}, map[project.Type]string{
		project.Alembic: "alembic -x seed=true upgrade head",
		project.Django:  "   ",
	})
	a, _ := r.Resolve(project.Alembic)
	if line := a.Command("development").Line; line != "alembic -x seed=true upgrade head" {
		t.Fatalf("override not applied: %q", line)
	}
	d, _ := r.Resolve(project.Django)
	if line := d.Command("development").Line; line != DjangoCommand {
		t.Fatalf("blank override should keep default, got %q", line)
	}
}

func write(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestListSeedersPerEcosystem(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name    string
		markers []string
		files   []string
		kind    project.Type
		want    []string
		tag     string
	}{
		{
			name:    "prisma",
			markers: []string{"prisma/schema.prisma"},
			files:   []string{"prisma/seed/users.ts", "prisma/seed/posts.js", "prisma/seed/readme.md"},
			kind:    project.Prisma,
			want:    []string{"posts.js", "users.ts"},
			tag:     "prisma-seeder",
		},
		{
			name:    "django",
			markers: []string{"manage.py", "settings.py"},
			files:   []string{"fixtures/users.json", "fixtures/notes.yaml"},
			kind:    project.Django,
			want:    []string{"users.json"},
			tag:     "django-fixture",
		},
		{
			name:    "alembic",
			markers: []string{"alembic.ini"},
			files:   []string{"alembic/versions/001_seed_users.py", "alembic/versions/002_schema.py", "alembic/versions/003_seed.pyc"},
			kind:    project.Alembic,
			want:    []string{"001_seed_users.py"},
			tag:     "alembic-seeder",
		},
		{
			name:    "sequelize",
			markers: []string{"sequelize.js"},
			files:   []string{"seeders/20240101-demo.js", "seeders/20240102-demo.ts"},
			kind:    project.Sequelize,
			want:    []string{"20240101-demo.js"},
			tag:     "sequelize-seeder",
		},
	}
	r := DefaultRegistry(&fakeRunner{}, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			for _, f := range append(tc.markers, tc.files...) {
				write(t, root, f)
			}
			kind, list := r.ListSeeders(root)
			if kind != tc.kind {
				t.Fatalf("kind = %q, want %q", kind, tc.kind)
			}
			var names []string
			for _, d := range list {
				names = append(names, d.Name)
				if d.Type != tc.tag {
					t.Fatalf("tag = %q, want %q", d.Type, tc.tag)
				}
				if filepath.Base(d.Path) != d.Name || !filepath.IsAbs(d.Path) {
					t.Fatalf("unexpected path %q", d.Path)
				}
			}
			if !reflect.DeepEqual(names, tc.want) {
				t.Fatalf("names = %v, want %v", names, tc.want)
			}
		})
	}
}

func TestListSeedersEmptyCases(t *testing.T) {
	testlog.Start(t)
	r := DefaultRegistry(&fakeRunner{}, nil)

	kind, list := r.ListSeeders(t.TempDir())
	if kind != project.Unknown || list == nil || len(list) != 0 {
		t.Fatalf("unknown project should list nothing, got %q %#v", kind, list)
	}

	root := t.TempDir()
	write(t, root, "prisma/schema.prisma")
	kind, list = r.ListSeeders(root)
	if kind != project.Prisma || len(list) != 0 {
		t.Fatalf("missing seed dir should list nothing, got %q %v", kind, list)
	}
}

func TestListSeedersSkipsDirectories(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	write(t, root, "sequelize.js")
	write(t, root, "seeders/nested.js/keep")
	write(t, root, "seeders/top.js")

	_, list := DefaultRegistry(&fakeRunner{}, nil).ListSeeders(root)
	if len(list) != 1 || list[0].Name != "top.js" {
		t.Fatalf("expected only top.js, got %v", list)
	}
}
