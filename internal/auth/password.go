// Package auth implements password hashing and session token issuance for
// both principal kinds (developer, player). Password hashing must stay
// reproducible (same password, same salt in, same digest out) because
// hash_password's own callers compare a freshly computed digest against the
// stored one rather than using a verify function — a per-hash random salt
// (bcrypt, scrypt) cannot satisfy that contract, so this hashes with
// golang.org/x/crypto/sha3 over the password and a process-wide salt.
package auth

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// HashPassword returns the hex-encoded SHA3-256 digest of password+salt,
// mirroring hash_password's salted hexdigest.
func HashPassword(password, salt string) string {
	sum := sha3.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether password hashes to want under salt.
func VerifyPassword(password, salt, want string) bool {
	return HashPassword(password, salt) == want
}
