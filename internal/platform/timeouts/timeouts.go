// Package timeouts defines shared timeout constants used across the
// planner's entrypoints. Centralizing these values prevents drift and
// makes the durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// CalendarPush caps a single calendar provider round trip during sync.
const CalendarPush = 30 * time.Second
