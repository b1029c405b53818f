// Package models holds the server's persisted and in-flight identity types.
package models

import "time"

// Account is a persisted identity keyed by email. PasswordHash is nil for
// accounts that only sign in through a federated provider.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the account can use credential sign-in.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// FederatedAssertion is the identity an external provider vouched for once
// its own redirect flow completed.
type FederatedAssertion struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// FederatedIdentity links a provider subject to an account.
type FederatedIdentity struct {
	Provider  string
	Subject   string
	AccountID string
	CreatedAt time.Time
}
