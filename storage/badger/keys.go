package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/soukdata/souq/core"
)

// Key prefixes for different data types
const (
	productRecordPrefix   = "prorec"
	embeddingRecordPrefix = "embrec"
)

// makeProductKey generates a key for a canonical product by ID.
func makeProductKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", productRecordPrefix, id))
}

// makeEmbeddingKey generates a composite key for an embedding.
// Format: prefix:modelVersion:id with the ID in BigEndian so embeddings of
// one model version iterate in stable ID order.
func makeEmbeddingKey(modelVersion string, id core.ID) []byte {
	prefix := embeddingRecordPrefix + ":" + modelVersion + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialEmbeddingKey generates the scan prefix for one model version.
// Format: prefix:modelVersion:
func makePartialEmbeddingKey(modelVersion string) []byte {
	return []byte(embeddingRecordPrefix + ":" + modelVersion + ":")
}

// parseEmbeddingKey extracts the model version from an embedding key.
// The trailing 8 bytes are the BigEndian product ID, so model versions may
// freely contain the separator character.
func parseEmbeddingKey(key []byte) (modelVersion string, id core.ID, ok bool) {
	prefix := embeddingRecordPrefix + ":"
	minSize := len(prefix) + 1 + 8 // version separator + ID bytes
	if len(key) < minSize {
		return "", 0, false
	}
	if string(key[:len(prefix)]) != prefix {
		return "", 0, false
	}
	if key[len(key)-9] != ':' {
		return "", 0, false
	}
	modelVersion = string(key[len(prefix) : len(key)-9])
	id = core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
	return modelVersion, id, true
}
