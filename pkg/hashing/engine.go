// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hashing

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Algorithm names, as used for in-toto resource descriptors.
const (
	SHA256  = "sha256"
	Blake2b = "blake2b"
)

// Engine incrementally hashes data.
type Engine interface {
	// Update appends data to the hash state.
	Update(data []byte)

	// Reset clears the hash state and seeds it with data.
	Reset(data []byte)

	// Compute returns the digest of everything written so far.
	Compute() Digest

	// Name returns the algorithm name recorded on the digest.
	Name() string

	// Size returns the digest length in bytes.
	Size() int
}

// Factory creates a fresh engine.
type Factory func() (Engine, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

func init() {
	MustRegister(SHA256, func() (Engine, error) {
		return newEngine(SHA256, sha256.Size, func() (hash.Hash, error) { return sha256.New(), nil })
	})
	MustRegister(Blake2b, func() (Engine, error) {
		// 512-bit unkeyed BLAKE2b.
		return newEngine(Blake2b, blake2b.Size, func() (hash.Hash, error) { return blake2b.New512(nil) })
	})
}

// Register adds a factory under name. Names are case-insensitive and may
// be registered once.
func Register(name string, f Factory) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("hash engine name is required")
	}
	if f == nil {
		return fmt.Errorf("hash engine factory for %q is nil", name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[key]; dup {
		return fmt.Errorf("hash engine %q already registered", key)
	}
	factories[key] = f
	return nil
}

// MustRegister is Register that panics on error. Used from init.
func MustRegister(name string, f Factory) {
	if err := Register(name, f); err != nil {
		panic(err)
	}
}

// New creates an engine for name.
func New(name string) (Engine, error) {
	mu.RLock()
	f, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported hash algorithm %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return f()
}

// Supported reports whether name has a registered engine.
func Supported(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names returns the registered algorithm names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Sum hashes data with the named algorithm.
func Sum(name string, data []byte) (Digest, error) {
	e, err := New(name)
	if err != nil {
		return Digest{}, err
	}
	e.Update(data)
	return e.Compute(), nil
}

// engine adapts a hash.Hash constructor to Engine.
type engine struct {
	name    string
	size    int
	newHash func() (hash.Hash, error)
	h       hash.Hash
}

func newEngine(name string, size int, newHash func() (hash.Hash, error)) (*engine, error) {
	h, err := newHash()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s: %w", name, err)
	}
	return &engine{name: name, size: size, newHash: newHash, h: h}, nil
}

func (e *engine) Update(data []byte) {
	if len(data) > 0 {
		_, _ = e.h.Write(data)
	}
}

func (e *engine) Reset(data []byte) {
	if h, err := e.newHash(); err == nil {
		e.h = h
	} else {
		e.h.Reset()
	}
	e.Update(data)
}

func (e *engine) Compute() Digest {
	return NewDigest(e.name, e.h.Sum(nil))
}

func (e *engine) Name() string { return e.name }

func (e *engine) Size() int { return e.size }
