package process

import (
	"sync"

	"github.com/consensys/gnark/backend/groth16"
)

// KeyCache stores synthesized proving/verifying key pairs per function.
// Keys are always inserted as a pair: a verifying key is never present
// without its proving key. There is no eviction; entries live as long
// as the owning Process.
type KeyCache struct {
	mu    sync.RWMutex
	pairs map[string]keyPair
}

type keyPair struct {
	proving   groth16.ProvingKey
	verifying groth16.VerifyingKey
}

// NewKeyCache creates an empty cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{pairs: make(map[string]keyPair)}
}

// Get returns the cached key pair for the function. A miss is not an
// error; it signals that keys must be synthesized.
func (c *KeyCache) Get(function string) (groth16.ProvingKey, groth16.VerifyingKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pair, ok := c.pairs[function]
	return pair.proving, pair.verifying, ok
}

// Put inserts a key pair for the function, replacing any existing one.
func (c *KeyCache) Put(function string, pk groth16.ProvingKey, vk groth16.VerifyingKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pairs[function] = keyPair{proving: pk, verifying: vk}
}

// Contains reports whether a key pair is cached for the function.
func (c *KeyCache) Contains(function string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.pairs[function]
	return ok
}

// Len returns the number of cached pairs.
func (c *KeyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pairs)
}
