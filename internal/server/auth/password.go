// Package auth provides the credential and authorization primitives of the
// store layer: password digests and the role policy.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/planboard/internal/shared"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// Method identifies a password digest format.
type Method string

const (
	MethodScrypt Method = "scrypt"
	MethodPBKDF2 Method = "pbkdf2"
	MethodArgon2 Method = "argon2"
)

// Digest prefixes recognised as hashed credentials. Anything else stored in
// a user record is a legacy plaintext password.
const (
	prefixPBKDF2 = "pbkdf2:sha256:"
	prefixScrypt = "scrypt:"
	prefixArgon2 = "argon2:"
)

const saltLength = 16

// Hasher is the password-hash capability consumed by the user store.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(digest, password string) bool
}

// IsHashed reports whether stored carries a known digest prefix.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, prefixPBKDF2) ||
		strings.HasPrefix(stored, prefixScrypt) ||
		strings.HasPrefix(stored, prefixArgon2)
}

// PasswordHasher produces digests in the "method:params$salt$hex" layout:
//
//	scrypt:32768:8:1$<salt>$<hex>
//	pbkdf2:sha256:600000$<salt>$<hex>
//	argon2:id:1:65536:4$<salt>$<hex>
//
// The scrypt and pbkdf2 forms are the ones werkzeug writes, so digests made
// by the previous deployment verify unchanged.
type PasswordHasher struct {
	method     Method
	scryptN    int
	pbkdf2Iter int
	argonTime  uint32
	argonMem   uint32
	argonPar   uint8
}

// Option adjusts PasswordHasher cost parameters.
type Option func(*PasswordHasher)

// WithScryptN sets the scrypt CPU/memory cost (a power of two).
func WithScryptN(n int) Option { return func(h *PasswordHasher) { h.scryptN = n } }

// WithPBKDF2Iterations sets the PBKDF2 iteration count.
func WithPBKDF2Iterations(n int) Option { return func(h *PasswordHasher) { h.pbkdf2Iter = n } }

// WithArgon2 sets argon2id time and memory (KiB) costs.
func WithArgon2(time, memory uint32) Option {
	return func(h *PasswordHasher) { h.argonTime, h.argonMem = time, memory }
}

// NewPasswordHasher returns a hasher writing digests with method.
func NewPasswordHasher(method Method, opts ...Option) (*PasswordHasher, error) {
	switch method {
	case MethodScrypt, MethodPBKDF2, MethodArgon2:
	default:
		return nil, fmt.Errorf("unsupported hash method %q", method)
	}
	h := &PasswordHasher{
		method:     method,
		scryptN:    32768,
		pbkdf2Iter: 600000,
		argonTime:  1,
		argonMem:   64 * 1024,
		argonPar:   4,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Hash returns a salted digest of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt, err := shared.MakeSalt(saltLength)
	if err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	switch h.method {
	case MethodScrypt:
		key, err := scrypt.Key([]byte(password), []byte(salt), h.scryptN, 8, 1, 64)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%d:8:1$%s$%s", prefixScrypt, h.scryptN, salt, hex.EncodeToString(key)), nil
	case MethodPBKDF2:
		key := pbkdf2.Key([]byte(password), []byte(salt), h.pbkdf2Iter, sha256.Size, sha256.New)
		return fmt.Sprintf("%s%d$%s$%s", prefixPBKDF2, h.pbkdf2Iter, salt, hex.EncodeToString(key)), nil
	case MethodArgon2:
		key := argon2.IDKey([]byte(password), []byte(salt), h.argonTime, h.argonMem, h.argonPar, 32)
		return fmt.Sprintf("%sid:%d:%d:%d$%s$%s", prefixArgon2, h.argonTime, h.argonMem, h.argonPar, salt, hex.EncodeToString(key)), nil
	}
	return "", fmt.Errorf("unsupported hash method %q", h.method)
}

// Verify checks password against any supported digest, whatever method the
// hasher itself writes. Malformed digests never verify.
func (h *PasswordHasher) Verify(digest, password string) bool {
	method, salt, want, ok := splitDigest(digest)
	if !ok {
		return false
	}

	var got []byte
	switch {
	case strings.HasPrefix(method, prefixScrypt):
		p := strings.Split(strings.TrimPrefix(method, prefixScrypt), ":")
		if len(p) != 3 {
			return false
		}
		n, err1 := strconv.Atoi(p[0])
		r, err2 := strconv.Atoi(p[1])
		par, err3 := strconv.Atoi(p[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return false
		}
		key, err := scrypt.Key([]byte(password), []byte(salt), n, r, par, len(want))
		if err != nil {
			return false
		}
		got = key
	case strings.HasPrefix(method, prefixPBKDF2):
		iter, err := strconv.Atoi(strings.TrimPrefix(method, prefixPBKDF2))
		if err != nil || iter <= 0 {
			return false
		}
		got = pbkdf2.Key([]byte(password), []byte(salt), iter, len(want), sha256.New)
	case strings.HasPrefix(method, prefixArgon2):
		p := strings.Split(strings.TrimPrefix(method, prefixArgon2), ":")
		if len(p) != 4 || p[0] != "id" {
			return false
		}
		t, err1 := strconv.ParseUint(p[1], 10, 32)
		m, err2 := strconv.ParseUint(p[2], 10, 32)
		par, err3 := strconv.ParseUint(p[3], 10, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return false
		}
		// argon2.IDKey panics on these.
		if t == 0 || par == 0 || m < 8*par {
			return false
		}
		got = argon2.IDKey([]byte(password), []byte(salt), uint32(t), uint32(m), uint8(par), uint32(len(want)))
	default:
		return false
	}

	return subtle.ConstantTimeCompare(got, want) == 1
}

func splitDigest(digest string) (method, salt string, key []byte, ok bool) {
	parts := strings.Split(digest, "$")
	if len(parts) != 3 || parts[1] == "" {
		return "", "", nil, false
	}
	key, err := hex.DecodeString(parts[2])
	if err != nil || len(key) == 0 {
		return "", "", nil, false
	}
	return parts[0], parts[1], key, true
}
