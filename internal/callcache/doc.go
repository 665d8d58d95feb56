// Package callcache persists the results of expensive extraction calls.
//
// Every entry is keyed by an operation name plus the full effective
// parameter list of the call, rendered into a deterministic, human-diffable
// file name under the cache directory of the owning recording. Two calls
// with the same effective parameters share one entry; a call differing in
// any parameter gets its own. Entries are CBOR-encoded epoch tables.
//
// Each operation declares its own key builder rather than deriving keys by
// reflection, which keeps the key contract auditable and stable across
// refactors.
package callcache
