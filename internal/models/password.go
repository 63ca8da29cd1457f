package models

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrMalformedHash is returned when a stored password hash cannot be parsed
var ErrMalformedHash = errors.New("malformed password hash")

// HashParams are the scrypt cost parameters. Hashes are stored as
// "scrypt:N:r:p$salt$hexdigest" so a hash verifies with the parameters it was made with.
type HashParams struct {
	N          int
	R          int
	P          int
	SaltLength int
	KeyLength  int
}

// DefaultHashParams is used by NewUser and SetPassword
var DefaultHashParams = HashParams{
	N:          1 << 15,
	R:          8,
	P:          1,
	SaltLength: 16,
	KeyLength:  64,
}

// HashPassword returns a freshly salted scrypt hash of password
func HashPassword(password string, params HashParams) (string, error) {
	salt, err := generateSalt(params.SaltLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), []byte(salt), params.N, params.R, params.P, params.KeyLength)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return fmt.Sprintf("scrypt:%d:%d:%d$%s$%s", params.N, params.R, params.P, salt, hex.EncodeToString(key)), nil
}

// CheckPasswordHash reports whether password matches hash
func CheckPasswordHash(password, hash string) (bool, error) {
	parts := strings.SplitN(hash, "$", 3)
	if len(parts) != 3 {
		return false, ErrMalformedHash
	}

	method := strings.Split(parts[0], ":")
	if len(method) != 4 || method[0] != "scrypt" {
		return false, fmt.Errorf("%w: unsupported method %q", ErrMalformedHash, parts[0])
	}

	var cost [3]int
	for i, s := range method[1:] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
		cost[i] = n
	}

	want, err := hex.DecodeString(parts[2])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	got, err := scrypt.Key([]byte(password), []byte(parts[1]), cost[0], cost[1], cost[2], len(want))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func generateSalt(length int) (string, error) {
	max := big.NewInt(int64(len(saltChars)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = saltChars[n.Int64()]
	}
	return string(buf), nil
}
