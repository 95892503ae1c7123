// Package id generates identifiers for governance records.
//
// An identifier is 16 random bytes carrying UUIDv4 version and variant
// marks, rendered as unpadded lowercase base32 (RFC 4648): 26 characters,
// safe in URLs, file paths, and SQL keys.
package id

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a fresh identifier, or an error when entropy is unavailable.
func NewID() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	// Stamp the RFC 4122 version and variant bits so the raw bytes decode
	// as a valid UUIDv4.
	raw[6] = raw[6]&0x0f | 0x40
	raw[8] = raw[8]&0x3f | 0x80

	return strings.ToLower(encoding.EncodeToString(raw)), nil
}
