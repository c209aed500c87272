// Package runlog persists daemon run history in SQLite.
//
// Each daemon run gets a row keyed by a generated id, updated by periodic
// heartbeats and closed with an end reason at shutdown. Lifecycle events
// (started, heartbeat gaps, termination) are appended to an events table. The
// CLI reads this history for `daedalus status`; nothing in here is consulted
// for the single-instance guarantee, which belongs to the pid-file lock.
package runlog
