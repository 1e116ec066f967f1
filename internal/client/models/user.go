// Package models defines the records shared by the session store, the
// incident repository and both backend adapters.
package models

import "time"

// User is the public identity attached to a session and stamped on incidents.
// It is what gets persisted under the "user" session key.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is a directory record: the user plus its hashed secret.
// The hash never leaves the directory and session packages.
type Account struct {
	User
	SecretHash string `json:"secret_hash"`
}
