// Package realtime implements the event subscription client.
//
// A single Manager per process owns the duplex connection to the MakrX
// event bus and multiplexes logical event-type subscriptions over it:
//   - transport lifecycle and fixed-interval bounded reconnection
//   - application-level ping/pong heartbeat with liveness timeout
//   - subscription set replay on every successful (re)connect
//   - dispatch of inbound events to registered handlers, exact type
//     first, then wildcard
//
// Delivery is at-least-once and in order within one connection; events
// in flight during a disconnect window are not replayed.
package realtime
