// Package juno resolves release metadata from the Juno catalog API.
//
// The resolver never fails: when the API is unconfigured, unreachable, or
// returns garbage, it degrades to a deterministic synthetic release so the
// export pipeline stays usable without live credentials. The Source value
// returned alongside each release records which path supplied it.
package juno
