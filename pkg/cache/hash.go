package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// digest derives a key of the form kind:sha256 from the JSON encodings of
// parts. Each part is encoded on its own line, so a netlist hash can never
// run into the options that follow it.
func digest(kind string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		_ = enc.Encode(p) // parts are plain option structs and strings
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. The runner uses it for netlist and
// layout fingerprints; the file cache uses it for file names.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
