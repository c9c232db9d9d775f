package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/verbata/core"
)

// Key prefixes for different data types. The record and index prefixes must
// not be prefixes of each other so iterators never cross namespaces.
const (
	chunkRecordPrefix = "docchk"
	chunkSourcePrefix = "docsrc"
)

// makeChunkKey generates a key for a document chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkSourceKey generates a composite key for the source file index.
// Format: prefix:source\x00id
// The NUL separator terminates the source path, which cannot contain NUL,
// so one source's entries never shadow another's.
func makeChunkSourceKey(sourceFile string, id core.ID) []byte {
	prefix := makePartialChunkSourceKey(sourceFile)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialChunkSourceKey generates a partial key for source file scans.
// Format: prefix:source\x00
func makePartialChunkSourceKey(sourceFile string) []byte {
	prefix := chunkSourcePrefix + ":"
	buf := make([]byte, len(prefix)+len(sourceFile)+1)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], sourceFile)
	buf[offset] = 0
	return buf
}

// sourceFromIndexKey extracts the source file path from a source index key.
// Returns false if the key is not a valid source index key.
func sourceFromIndexKey(key []byte) (string, bool) {
	prefix := []byte(chunkSourcePrefix + ":")
	if len(key) < len(prefix)+9 {
		return "", false
	}
	// Source path sits between the prefix and the trailing NUL + 8 byte ID.
	source := key[len(prefix) : len(key)-9]
	if key[len(key)-9] != 0 {
		return "", false
	}
	return string(source), true
}
