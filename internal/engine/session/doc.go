// Package session owns the chunked-storage lifecycle: activation
// builds the chunk store, window and ingestor for a chunk size;
// deactivation and clear discard them. The session also selects which
// line-source variant the viewer holds, swapping between the normal
// in-memory store and the read-only chunked window without any shared
// mutable getters.
//
// Lifecycle transitions and window reload completions publish on the
// wired event bus so the viewer knows to re-query its line source.
package session
