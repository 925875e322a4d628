// Package models holds the account records persisted by the server.
package models

import "time"

// User is a registered account. UserName is also the escrow account id.
type User struct {
	UserName  string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
