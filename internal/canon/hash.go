package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content identity. The version suffix allows the
// encoding to change without colliding with old hashes.
const (
	DomainProgram = "turing/program/v1"
	DomainConfig  = "turing/config/v1"
	DomainRun     = "turing/run/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash canonicalizes v and hashes it under domain.
func Hash(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// RunKey identifies a run by its inputs. Runs with equal keys must produce
// equal outcomes.
func RunKey(programHash, configHash, input string) string {
	data, err := Marshal(Object{
		"program": programHash,
		"config":  configHash,
		"input":   input,
	})
	if err != nil {
		// strings only; Marshal cannot fail here
		panic(err)
	}
	return hashWithDomain(DomainRun, data)
}
