// Package timeouts defines shared timeout constants used across the service.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second

// StoreCall caps a single layout persistence round-trip issued on behalf of
// a UI event or tool call.
const StoreCall = 3 * time.Second

// WebSocketWrite caps how long a state push may block on one client.
const WebSocketWrite = 2 * time.Second
