// Package seeds owns the ecosystem adapters that turn a "seed this project"
// request into one concrete shell invocation.
//
// Ownership boundary:
// - adapter metadata, command, and seeder layout contracts
// - adapter registry keyed by project type
// - seeder file enumeration
// - per-project leases and the seed-state marker
package seeds
