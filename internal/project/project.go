package project

import (
	"os"
	"path/filepath"
)

// Type is the ecosystem tag derived from a project's file layout.
type Type string

const (
	Prisma    Type = "prisma"
	Django    Type = "django"
	Alembic   Type = "alembic"
	Sequelize Type = "sequelize"
	Unknown   Type = "unknown"
)

// Supported lists the detectable ecosystems in detection priority order.
func Supported() []Type {
	return []Type{Prisma, Django, Alembic, Sequelize}
}

// DetectedFile records one marker found while inspecting a project.
type DetectedFile struct {
	Type Type   `json:"type"`
	File string `json:"file"`
	Path string `json:"path"`
}

type marker struct {
	file string
	dir  bool
}

type rule struct {
	kind    Type
	markers []marker
	// all requires every marker; otherwise any single marker matches.
	all bool
}

// rules are evaluated in order and the first satisfied rule wins. Django
// only matches a flat layout with settings.py next to manage.py.
var rules = []rule{
	{kind: Prisma, markers: []marker{{file: "prisma/schema.prisma"}}, all: true},
	{kind: Django, markers: []marker{{file: "manage.py"}, {file: "settings.py"}}, all: true},
	{kind: Alembic, markers: []marker{{file: "alembic.ini"}, {file: "alembic", dir: true}}, all: true},
	{kind: Sequelize, markers: []marker{{file: "config/database.js"}, {file: "sequelize.js"}}},
}

// Detect returns the first ecosystem whose markers are present under root.
// Unreadable or missing paths classify as Unknown.
func Detect(root string) Type {
	for _, r := range rules {
		if r.matches(root) {
			return r.kind
		}
	}
	return Unknown
}

// DetectAll returns the winning type along with every marker file that was
// found, including markers of rules that lost on priority or were only
// partially satisfied.
func DetectAll(root string) (Type, []DetectedFile) {
	base := absOrSelf(root)
	found := make([]DetectedFile, 0)
	for _, r := range rules {
		for _, m := range r.markers {
			if !m.present(root) {
				continue
			}
			found = append(found, DetectedFile{
				Type: r.kind,
				File: m.display(),
				Path: filepath.Join(base, filepath.FromSlash(m.file)),
			})
		}
	}
	return Detect(root), found
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (r rule) matches(root string) bool {
	if r.all {
		for _, m := range r.markers {
			if !m.present(root) {
				return false
			}
		}
		return len(r.markers) > 0
	}
	for _, m := range r.markers {
		if m.present(root) {
			return true
		}
	}
	return false
}

func (m marker) present(root string) bool {
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(m.file)))
	if err != nil {
		return false
	}
	if m.dir {
		return info.IsDir()
	}
	return !info.IsDir()
}

func (m marker) display() string {
	if m.dir {
		return m.file + "/"
	}
	return m.file
}

func absOrSelf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
