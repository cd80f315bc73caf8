// Package uuid generates time-ordered identifiers for verification and
// password-reset tokens.
package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. The leading 48 bits carry the Unix timestamp
// in milliseconds, so tokens sort by creation time; the rest is random with
// the RFC 4122 version and variant bits set.
func New() string {
	var id [16]byte

	ms := uint64(time.Now().UnixMilli())
	binary.BigEndian.PutUint64(id[:8], ms<<16)

	if _, err := rand.Read(id[6:]); err != nil {
		// No randomness available; a v4 from the library still suffices
		// as an opaque token.
		return googleuuid.New().String()
	}

	id[6] = (id[6] & 0x0f) | 0x70 // version 7
	id[8] = (id[8] & 0x3f) | 0x80 // variant 10

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// IsValid reports whether s parses as a UUID of any version.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
