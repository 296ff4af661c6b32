// Package cryptox implements the credential schemes used to store and
// verify account passwords.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/workplan/internal/common"
)

const (
	SchemePlain    = "plain"
	SchemeArgon2id = "argon2id"
	SchemeBcrypt   = "bcrypt"

	argonPrefix  = "argon2id"
	argonSaltLen = 16
)

// Scheme turns a password into its stored form and checks a candidate
// against it.
type Scheme interface {
	Name() string
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// ParseScheme returns the scheme registered under name.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "", SchemePlain:
		return Plain{}, nil
	case SchemeArgon2id:
		return Argon2id{}, nil
	case SchemeBcrypt:
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	}
	return nil, fmt.Errorf("%w: unknown credential scheme %q", common.ErrorValidation, name)
}

// Plain stores the password verbatim.
type Plain struct{}

func (Plain) Name() string { return SchemePlain }

func (Plain) Hash(password string) (string, error) { return password, nil }

func (Plain) Verify(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// Argon2id stores argon2id$<salt hex>$<verifier hex>, where the verifier is
// the SHA-256 of the derived key.
type Argon2id struct{}

func (Argon2id) Name() string { return SchemeArgon2id }

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

func makeVerifier(key []byte) []byte {
	h := sha256.Sum256(key)
	return h[:]
}

func (Argon2id) Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(argonSaltLen)
	pw := []byte(password)
	key := deriveKey(pw, salt)
	defer common.WipeByteArray(key)
	defer common.WipeByteArray(pw)

	return strings.Join([]string{
		argonPrefix,
		hex.EncodeToString(salt),
		hex.EncodeToString(makeVerifier(key)),
	}, "$"), nil
}

func (Argon2id) Verify(stored, password string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 || parts[0] != argonPrefix {
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}

	pw := []byte(password)
	key := deriveKey(pw, salt)
	defer common.WipeByteArray(key)
	defer common.WipeByteArray(pw)

	return subtle.ConstantTimeCompare(makeVerifier(key), want) == 1
}

// Bcrypt stores the standard bcrypt encoding.
type Bcrypt struct {
	Cost int
}

func (Bcrypt) Name() string { return SchemeBcrypt }

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

func (Bcrypt) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
