// Package ipc exposes the daemon over JSON-RPC unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs. The
// server embeds the daemon; CLI status output is a pure observer of the
// scheduler's snapshots and never drives a scheduling decision.
package ipc
