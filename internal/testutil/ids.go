package testutil

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// SeqUUID returns a predictable UUID for golden traces. The last eight bytes
// hold n and the version and variant bits are set so the value parses as a
// v4 UUID.
func SeqUUID(n uint64) uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[8:], n)
	u[6] = (u[6] & 0x0f) | 0x40
	u[8] = (u[8] & 0x3f) | 0x80
	return u
}
