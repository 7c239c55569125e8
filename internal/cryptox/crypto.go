// Package cryptox implements the password hashing schemes used for stored
// records.
//
// Two schemes coexist:
//
//   - "sha256": the legacy unsalted hex digest. Records written by earlier
//     deployments verify only under this scheme, so it stays the default.
//   - "argon2id": a salted, slow KDF. The stored form is
//     "argon2id$<salt-hex>$<digest-hex>".
//
// Verification dispatches on the stored form, so a store may hold a mix of
// both.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Scheme names accepted in configuration.
const (
	SchemeSHA256   = "sha256"
	SchemeArgon2id = "argon2id"
)

const argon2Prefix = "argon2id$"

// HashSHA256Hex returns the hex-encoded SHA-256 digest of password.
func HashSHA256Hex(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func deriveArgon2id(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
}

// HashArgon2idEncoded derives an argon2id digest of password under a fresh
// random salt and returns the self-describing stored form.
func HashArgon2idEncoded(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	digest := deriveArgon2id(password, salt)
	return argon2Prefix + hex.EncodeToString(salt) + "$" + hex.EncodeToString(digest), nil
}

// Hash produces the stored form of password under the named scheme.
// Unknown scheme names fall back to sha256.
func Hash(scheme, password string) (string, error) {
	if scheme == SchemeArgon2id {
		return HashArgon2idEncoded(password)
	}
	return HashSHA256Hex(password), nil
}

// Verify reports whether password matches the stored hash, dispatching on the
// stored form. Comparison is constant-time in both schemes.
func Verify(password, stored string) bool {
	if rest, ok := strings.CutPrefix(stored, argon2Prefix); ok {
		saltHex, digestHex, ok := strings.Cut(rest, "$")
		if !ok {
			return false
		}
		salt, err := hex.DecodeString(saltHex)
		if err != nil {
			return false
		}
		want, err := hex.DecodeString(digestHex)
		if err != nil {
			return false
		}
		got := deriveArgon2id(password, salt)
		return subtle.ConstantTimeCompare(got, want) == 1
	}

	candidate := HashSHA256Hex(password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1
}
