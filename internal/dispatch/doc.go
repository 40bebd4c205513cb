// Package dispatch routes named tool invocations to project detection,
// seeder listing, and ecosystem adapters, and wraps every outcome in a
// timestamped JSON envelope.
//
// Domain failures (unknown ecosystem, failing subprocess, missing
// parameters) are returned as data. Only protocol misuse, an unknown tool
// name or undecodable arguments, is returned as an error.
package dispatch
