/*
 * paperback: resilient paper backups for the very paranoid
 * Copyright (C) 2018 Aleksa Sarai <cyphar@cyphar.com>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package gfshare is the public API of the secret sharing scheme: Init,
// Share, Combine, NewShare, ExtractShareComponents, GetConfig, SetRng and
// Random, plus an explicit *Config type for callers who want an isolated
// instance rather than the package-level convenience wrapper.
//
// The reference scheme this is wire-compatible with keeps one implicit,
// mutable, process-wide configuration object, including letting Combine
// silently re-initialize it when handed shares of a different width. That
// convenience comes at the cost of action-at-a-distance: two goroutines
// calling Combine with different widths race on the shared state. Here,
// Combine instead builds a transient field engine scoped to the call and
// never touches the Config it was invoked against; only Init and SetRng
// mutate a Config, and they do so under a lock.
package gfshare

import (
	"sync"

	"github.com/cyphar/gfshare/pkg/field"
	"github.com/cyphar/gfshare/pkg/rng"
)

// DefaultWidth is the width Init uses when the caller doesn't specify one,
// matching the reference scheme's default of a byte-wide field.
const DefaultWidth = 8

// Config holds one width's field tables and the RNG provider used to draw
// polynomial coefficients. The zero value is UNINITIALIZED; Init (or
// NewConfig) must run before Share or Random will accept it. Combine and
// NewShare take the width from the shares themselves and do not read the
// Config, so they work on an uninitialized one too.
type Config struct {
	mu       sync.RWMutex
	w        int
	engine   *field.Engine
	provider rng.Provider
}

// NewConfig builds a ready-to-use Config for width w (DefaultWidth if
// w == 0), with a platform CSPRNG installed.
func NewConfig(w int) (*Config, error) {
	c := &Config{}
	if err := c.Init(w); err != nil {
		return nil, err
	}
	return c, nil
}

// Init (re-)builds this Config's field tables for width w (DefaultWidth
// if w == 0) and installs a platform CSPRNG. It is safe to call on an
// already-initialized Config: the prior state is discarded.
func (c *Config) Init(w int) error {
	if w == 0 {
		w = DefaultWidth
	}
	engine, err := field.Build(w)
	if err != nil {
		return newError(InitError, err, "failed to build field tables for width %d", w).withContext("width", w)
	}

	provider := rng.NewPlatform()
	if err := rng.SelfTest(provider, w); err != nil {
		return newError(InvalidRng, err, "platform RNG failed self-test for width %d", w)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.w = w
	c.engine = engine
	c.provider = provider
	return nil
}

// SetRng installs p as this Config's RNG provider after running its
// self-test (§4.2). If p is nil, a platform CSPRNG is selected. The
// Config must already be initialized (via Init/NewConfig).
func (c *Config) SetRng(p rng.Provider) error {
	if p == nil {
		p = rng.NewPlatform()
	}
	c.mu.RLock()
	w := c.w
	c.mu.RUnlock()
	if w == 0 {
		return newError(InitError, nil, "SetRng called before Init")
	}
	if err := rng.SelfTest(p, w); err != nil {
		return newError(InvalidRng, err, "RNG provider failed self-test")
	}
	c.mu.Lock()
	c.provider = p
	c.mu.Unlock()
	return nil
}

// Snapshot is the read-only view returned by GetConfig.
type Snapshot struct {
	Width     int
	Radix     int
	MaxShares int
	HasRng    bool
	RngTag    rng.Tag
}

// GetConfig returns a read-only snapshot of this Config's current state.
func (c *Config) GetConfig() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{Width: c.w, Radix: 16}
	if c.engine != nil {
		snap.MaxShares = c.engine.NMax()
	}
	if c.provider != nil {
		snap.HasRng = true
		snap.RngTag = c.provider.Tag()
	}
	return snap
}

// state returns the engine and provider currently installed, or an
// InitError if the Config hasn't been initialized yet.
func (c *Config) state() (*field.Engine, rng.Provider, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.engine == nil {
		return nil, nil, newError(InitError, nil, "gfshare: Config used before Init")
	}
	return c.engine, c.provider, nil
}
