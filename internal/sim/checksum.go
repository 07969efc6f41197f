package sim

import (
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"lukechampine.com/blake3"
)

// Checksum digests the msgpack encoding of s with blake3. Snapshots hold no
// maps, so equal states always encode to equal bytes.
func Checksum(s Snapshot) (string, error) {
	data, err := msgpack.Marshal(&s)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
