// Package tools provides reusable runtime helpers shared by seeding adapters.
//
// Ownership boundary:
// - shell command execution with captured output
//
// - timeout and cancellation of whole process groups
package tools
