// Package connection manages the session to one SOX endpoint.
//
// A Manager owns the endpoint's node, dials the device with the credentials
// stored on that node, mirrors the device tree below it and keeps the
// session alive:
//
//   - Checked connects (addServer) report transport failures to the caller.
//   - Unchecked connects (restore, timer) log the failure and retry.
//   - A lost session schedules a reconnect.
//
// # Retry
//
// By default the manager retries every 5 seconds, forever. An exponential
// BackoffConfig can be supplied instead:
//
//	actual_delay = base_delay + random(0, base_delay * jitter)
//
// # Event loop
//
// Device notifications and node observer changes are queued on a bounded
// channel and handled by one goroutine per manager. The mirror builder and
// the subscription multiplexer only run there. When the queue is full,
// component change notifications are dropped (the next change refreshes the
// component again); observer events wait for room.
package connection
