// Package client contains the CLI's building blocks for talking to the
// InsightDesk server.
//
// It provides the Client contract and its HTTP implementation (HTTPClient),
// which sends the session token as a Bearer header and maps non-2xx answers
// to *APIError. A 401 matches ErrUnauthorized with errors.Is; transport
// failures match ErrUnavailable.
//
// InitDatabase and RunMigrations prepare the local SQLite store with the
// embedded goose migrations.
package client
