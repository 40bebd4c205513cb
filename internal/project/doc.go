// Package project classifies a directory into one of the supported
// database seeding ecosystems by looking for marker files.
//
// Ownership boundary:
// - project type tags
// - ordered marker rules
// - marker discovery for diagnostics
package project
