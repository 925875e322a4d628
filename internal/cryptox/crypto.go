// Package cryptox derives the login verifier from a password. The password
// never leaves the client; the server stores only the salt and verifier.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// DeriveMasterKey stretches password with argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier is the value sent to the server in place of the password.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// VerifierMatches compares verifiers in constant time.
func VerifierMatches(stored, candidate []byte) bool {
	return subtle.ConstantTimeCompare(stored, candidate) == 1
}
