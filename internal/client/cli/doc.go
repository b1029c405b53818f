// Package cli provides the interactive InsightDesk command-line client.
//
// It wires configuration, the local metadata store, the HTTP API client and
// an interactive REPL. The signed session token is kept in SQLite so a later
// run stays signed in until the token expires.
//
// Commands:
//   - login / logout / whoami
//   - providers, signin-url <provider>
//   - image <path>
//   - summarize <text | url | file>
//   - last (show the last result and error)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
