// Package feed provides narrow, pre-filtered read-only views over the
// realtime dispatch table: bounded newest-first buffers of recent
// events per domain (orders, service jobs, inventory alerts, exports)
// for display layers to poll.
package feed
