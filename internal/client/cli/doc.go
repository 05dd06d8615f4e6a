// Package cli provides the interactive authkeeper command-line client.
//
// It wires configuration, the local secret store and an account backend
// (the remote HTTP API or an embedded SQLite user store) into a small REPL.
//
// Commands:
//   - register / login / logout
//   - whoami: show the profile behind the stored session
//   - status: session state and backend reachability
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
