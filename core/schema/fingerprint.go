package schema

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a stable content hash of the document. Map keys are
// encoded in sorted order, so reloading unchanged files yields the same
// fingerprint. Non-finite numbers such as a .inf default are hashed like any
// other value.
func Fingerprint(doc Document) (string, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	sum := blake2b.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
