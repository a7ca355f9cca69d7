package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/cxxflow/pkg/cfg"
)

// Key derives a cache key from file content and the settings that affect the
// resulting graph, such as the function name and the no-return list.
func Key(content []byte, parts ...string) string {
	h := sha256.New()
	h.Write(content)
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GraphCache stores exported graphs keyed by Key.
type GraphCache struct {
	*LRUCache
}

// NewGraphCache creates a graph cache holding at most maxEntries graphs.
func NewGraphCache(maxEntries int) *GraphCache {
	return &GraphCache{LRUCache: New(Options{MaxSize: maxEntries})}
}

// Lookup returns the graph stored under key. An entry that no longer decodes is
// dropped and reported as a miss.
func (c *GraphCache) Lookup(key string) (*cfg.CFGInfo, bool) {
	data, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	info, err := decodeInfo(data)
	if err != nil {
		c.Delete(key)
		return nil, false
	}
	return info, true
}

// Store encodes info and stores it under key.
func (c *GraphCache) Store(key string, info *cfg.CFGInfo) error {
	data, err := encodeInfo(info)
	if err != nil {
		return fmt.Errorf("encoding graph %s: %w", info.FunctionName, err)
	}
	c.Set(key, data)
	return nil
}

// The graph is encoded with its JSON field names so both forms share one schema.
func encodeInfo(info *cfg.CFGInfo) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(info); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeInfo(data []byte) (*cfg.CFGInfo, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var info cfg.CFGInfo
	if err := dec.Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}
