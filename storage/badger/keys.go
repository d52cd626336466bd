package badger

import (
	"encoding/binary"

	"github.com/poiesic/verity/core"
)

// Key prefixes for different data types
const (
	runPrefix = "trnrun:"
	runIDSeq  = "trnrunseq"
)

// makeRunKey generates a key for a training run by ID.
// Format: prefix + 8 byte big-endian ID, so keys sort in ID order.
func makeRunKey(id core.ID) []byte {
	buf := make([]byte, len(runPrefix)+8)
	offset := copy(buf, runPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// runKeyUpperBound is the seek position for a reverse scan over all runs.
func runKeyUpperBound() []byte {
	return makeRunKey(core.ID(^uint64(0)))
}
