// signature/crypto.go
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dev-mohitbeniwal/coregate/config"
)

// bcrypt only reads the first 72 bytes of its input.
const maxPayloadBytes = 72

// EncryptSignature hashes the signing payload with bcrypt at the given cost.
// The result is one-way: use Compare to check a payload against it.
func EncryptSignature(query, body, publicKey string, saltRounds int) (string, error) {
	if saltRounds == 0 {
		saltRounds = config.DefaultSaltRounds
	}
	if saltRounds < config.MinSaltRounds || saltRounds > config.MaxSaltRounds {
		return "", fmt.Errorf("salt rounds %d out of range [%d, %d]", saltRounds, config.MinSaltRounds, config.MaxSaltRounds)
	}

	payload := truncate(SigningPayload(query, body, publicKey))
	hash, err := bcrypt.GenerateFromPassword([]byte(payload), saltRounds)
	if err != nil {
		return "", fmt.Errorf("failed to hash signing payload: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether hash was produced from payload.
func Compare(payload, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(truncate(payload))) == nil
}

func truncate(payload string) string {
	if len(payload) > maxPayloadBytes {
		return payload[:maxPayloadBytes]
	}
	return payload
}

// Fingerprint identifies a public key in logs, audit records and rate limit
// keys without revealing it. The key alone is enough to sign requests.
func Fingerprint(publicKey string) string {
	if publicKey == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(publicKey))
	return hex.EncodeToString(sum[:8])
}
