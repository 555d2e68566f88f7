package auth

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Two digest schemes coexist in the user table.  Accounts created by
// this server store bcrypt; rows migrated from the original deployment
// store the legacy keyed MD5 digest.  The legacy scheme must stay
// byte-for-byte stable or migrated users lose their passwords.

// HashPassword returns a bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LegacyDigest computes the historical password digest:
// base64(hex(md5(salt || password))).  The hex digest is base64-encoded
// as a string, not the raw MD5 bytes.
func LegacyDigest(salt, plain string) string {
	sum := md5.Sum([]byte(salt + plain))
	return base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(sum[:])))
}

// VerifyPassword compares a stored digest against a plaintext password,
// dispatching on the digest format.  bcrypt hashes carry their "$2"
// version prefix; everything else is treated as a legacy digest and
// compared in constant time.
func VerifyPassword(stored, plain, salt string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	}
	want := LegacyDigest(salt, plain)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(want)) == 1
}
