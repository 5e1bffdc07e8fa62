package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password schemes selectable through PASSWORD_SCHEME.
const (
	PasswordSchemeSHA256 = "sha256"
	PasswordSchemeBcrypt = "bcrypt"
)

// PasswordHasher hashes and verifies passwords. Callers never see which scheme is used.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// HashPassword returns the hex SHA-256 digest of the UTF-8 password bytes. It is unsalted,
// so equal passwords share a digest; kept for compatibility with existing user files.
func HashPassword(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// SHA256Hasher is the unsalted digest scheme of the original user file.
type SHA256Hasher struct{}

// Hash implements PasswordHasher.
func (SHA256Hasher) Hash(plain string) (string, error) {
	return HashPassword(plain), nil
}

// Verify compares digests exactly.
func (SHA256Hasher) Verify(hash, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(hash), []byte(HashPassword(plain))) == 1
}

// BcryptHasher is the salted scheme. Verification falls back to SHA-256 digests so
// existing accounts keep working after switching schemes.
type BcryptHasher struct {
	Cost int
}

// Hash implements PasswordHasher.
func (h BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify implements PasswordHasher.
func (h BcryptHasher) Verify(hash, plain string) bool {
	if strings.HasPrefix(hash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	}
	return SHA256Hasher{}.Verify(hash, plain)
}

// NewPasswordHasher returns the hasher for a scheme name, defaulting to SHA-256.
func NewPasswordHasher(scheme string) PasswordHasher {
	if strings.EqualFold(scheme, PasswordSchemeBcrypt) {
		return BcryptHasher{}
	}
	return SHA256Hasher{}
}
