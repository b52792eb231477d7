// Package directory integrates the externally-hosted end-user directory:
// an identity provider reached over HTTP and an S3-compatible store
// holding one profile document per user. Admin accounts live elsewhere
// (Postgres); everything in this package concerns end users only.
package directory

import "context"

// User statuses stored in the profile document.
const (
	StatusActive  = "active"
	StatusOnHold  = "on_hold"
	StatusPending = "pending"
)

// User is the profile document kept in the document store. UID is assigned
// by the identity provider.
type User struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    string `json:"status"`
}

// Page is one page of a user listing. LastUID is the cursor for the next
// page; empty means the listing is exhausted.
type Page struct {
	Users   []User `json:"users"`
	LastUID string `json:"last_uid,omitempty"`
}

// IdentityProvider is the black-box authentication service holding the
// end-user credentials. Only its API surface is modeled.
type IdentityProvider interface {
	// CreateUser registers an email and returns the assigned UID.
	CreateUser(ctx context.Context, email string) (string, error)

	// LookupUID resolves an email to its UID.
	LookupUID(ctx context.Context, email string) (string, error)

	// UpdateEmail changes the login email for uid.
	UpdateEmail(ctx context.Context, uid, email string) error

	// SetDisabled blocks or unblocks sign-in for uid.
	SetDisabled(ctx context.Context, uid string, disabled bool) error

	// DeleteUser removes the account.
	DeleteUser(ctx context.Context, uid string) error

	// PasswordResetLink returns a one-time reset link for email.
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// DocumentStore keeps the per-user profile documents.
type DocumentStore interface {
	Put(ctx context.Context, user User) error
	Get(ctx context.Context, uid string) (*User, error)
	Delete(ctx context.Context, uid string) error

	// List returns up to limit users in UID order, starting after lastUID
	// ("" starts from the beginning). status filters the result; "" or
	// "all" disables the filter.
	List(ctx context.Context, limit int, lastUID, status string) (*Page, error)
}
