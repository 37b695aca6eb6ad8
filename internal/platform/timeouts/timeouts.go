// Package timeouts defines shared timeout constants used across processes.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// Telemetry caps how long span exporters may flush on process exit.
const Telemetry = 5 * time.Second

// CacheOp caps a single cache round trip so a slow cache never stalls reads.
const CacheOp = 250 * time.Millisecond

// StoreOpen caps how long an embedded database waits for its file lock.
const StoreOpen = time.Second
