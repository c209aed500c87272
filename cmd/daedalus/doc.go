// Package main hosts the daedalus CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into daemon
// lifecycle operations: running the daemon (detached or in the foreground),
// probing and stopping it through its pid file, and configuration
// scaffolding. It centralizes configuration resolution so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
