package project

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danmuck/seedctl/internal/testutil/testlog"
)

func touch(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func mkdir(t *testing.T, root string, rel string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(rel)), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
}

func TestDetectSingleEcosystemLayouts(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name  string
		files []string
		dirs  []string
		want  Type
	}{
		{name: "prisma", files: []string{"prisma/schema.prisma"}, want: Prisma},
		{name: "django", files: []string{"manage.py", "settings.py"}, want: Django},
		{name: "alembic", files: []string{"alembic.ini"}, dirs: []string{"alembic"}, want: Alembic},
		{name: "sequelize config", files: []string{"config/database.js"}, want: Sequelize},
		{name: "sequelize root", files: []string{"sequelize.js"}, want: Sequelize},
		{name: "empty", want: Unknown},
		{name: "django missing settings", files: []string{"manage.py"}, want: Unknown},
		{name: "django nested settings", files: []string{"manage.py", "app/settings.py"}, want: Unknown},
		{name: "alembic without dir", files: []string{"alembic.ini"}, want: Unknown},
		{name: "alembic dir is file", files: []string{"alembic.ini", "alembic"}, want: Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			for _, f := range tc.files {
				touch(t, root, f)
			}
			for _, d := range tc.dirs {
				mkdir(t, root, d)
			}
			if got := Detect(root); got != tc.want {
				t.Fatalf("Detect = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetectPriorityPrismaOverDjango(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	touch(t, root, "prisma/schema.prisma")
	touch(t, root, "manage.py")
	touch(t, root, "settings.py")

	kind, files := DetectAll(root)
	if kind != Prisma {
		t.Fatalf("expected prisma to win, got %q", kind)
	}
	var types []Type
	for _, f := range files {
		types = append(types, f.Type)
	}
	want := []Type{Prisma, Django, Django}
	if !reflect.DeepEqual(types, want) {
		t.Fatalf("detected marker types = %v, want %v", types, want)
	}
	abs, _ := filepath.Abs(root)
	if files[0].File != "prisma/schema.prisma" || files[0].Path != filepath.Join(abs, "prisma", "schema.prisma") {
		t.Fatalf("unexpected prisma marker: %+v", files[0])
	}
}

func TestDetectAllEmptyDirectory(t *testing.T) {
	testlog.Start(t)
	kind, files := DetectAll(t.TempDir())
	if kind != Unknown {
		t.Fatalf("expected unknown, got %q", kind)
	}
	if files == nil || len(files) != 0 {
		t.Fatalf("expected empty non-nil marker list, got %#v", files)
	}
}

func TestDetectMissingPathIsUnknown(t *testing.T) {
	testlog.Start(t)
	kind, files := DetectAll(filepath.Join(t.TempDir(), "nope"))
	if kind != Unknown || len(files) != 0 {
		t.Fatalf("expected unknown with no markers, got %q %v", kind, files)
	}
}

func TestDetectIsStable(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	touch(t, root, "alembic.ini")
	mkdir(t, root, "alembic")
	touch(t, root, "sequelize.js")

	k1, f1 := DetectAll(root)
	k2, f2 := DetectAll(root)
	if k1 != k2 || !reflect.DeepEqual(f1, f2) {
		t.Fatalf("detection not stable: %q %v vs %q %v", k1, f1, k2, f2)
	}
	if k1 != Alembic {
		t.Fatalf("expected alembic over sequelize, got %q", k1)
	}
	if f1[1].File != "alembic/" {
		t.Fatalf("expected directory marker to be displayed with slash, got %q", f1[1].File)
	}
}
