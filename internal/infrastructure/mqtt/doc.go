// Package mqtt provides the optional presence beacon.
//
// The daemon is publish-only on MQTT: it announces itself on a retained
// status topic and emits heartbeat beats, so dashboards and other
// services can tell a running daemon from a dead one without polling.
//
// # Offline Detection
//
// A Last Will and Testament (LWT) is registered at connect time. If the
// daemon crashes or loses its network link, the broker publishes the
// retained offline status on its behalf; a graceful shutdown publishes
// its own offline status before disconnecting, with a reason that
// distinguishes the two.
//
// # Topic Hierarchy
//
//	pisense/{site}/status     retained presence (online/offline JSON)
//	pisense/{site}/heartbeat  liveness beats, not retained
//
// # Thread Safety
//
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Reconnection is automatic with exponential backoff; the retained
//     online status is re-published on every reconnect.
package mqtt
