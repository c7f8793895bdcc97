// Package identity defines the port for resolving platform user identities.
// The identity provider is an external collaborator; the engine only needs
// display names and contact details for occupants with platform accounts.
package identity

import "context"

// Profile is the subset of a user profile the lifecycle engine consumes.
type Profile struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// Resolver looks up user profiles by ID.
type Resolver interface {
	Resolve(ctx context.Context, userID string) (*Profile, error)
}
