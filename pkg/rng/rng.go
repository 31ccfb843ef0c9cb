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

// Package rng provides the pluggable CSPRNG abstraction used by the
// polynomial kernel to draw random field elements. Every Provider returns
// a bit-string (characters '0'/'1') of an exact requested length; callers
// never see raw bytes.
package rng

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/pkg/errors"
)

// MaxRejectionRetries bounds how many times a Provider may redraw after
// an all-zero result before giving up with RngFailure. The expected
// number of redraws is vanishingly small (2^-n per draw), so this only
// ever fires against a broken or adversarial Provider.
const MaxRejectionRetries = 16

// Tag names the kind of Provider in use, surfaced via Config.GetConfig so
// callers can tell a production CSPRNG from a test fixture.
type Tag string

const (
	TagPlatform Tag = "platform"
	TagTest     Tag = "test"
	TagUser     Tag = "user-supplied"
)

// Provider returns a uniformly random bit-string of exactly n characters,
// rejecting (and internally redrawing on) all-zero results.
type Provider interface {
	// Random returns a string of exactly n '0'/'1' characters.
	Random(n int) (string, error)
	// Tag identifies the provider kind for GetConfig.
	Tag() Tag
}

// platform is the production Provider, backed by crypto/rand.
type platform struct{}

// NewPlatform returns a Provider backed by the operating system's CSPRNG.
func NewPlatform() Provider {
	return platform{}
}

func (platform) Tag() Tag { return TagPlatform }

func (p platform) Random(n int) (string, error) {
	if n <= 0 {
		return "", errors.Errorf("rng: requested bit length must be positive, got %d", n)
	}
	for attempt := 0; attempt < MaxRejectionRetries; attempt++ {
		max := new(big.Int).Lsh(big.NewInt(1), uint(n))
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "rng: platform CSPRNG read failed")
		}
		if v.Sign() == 0 {
			continue
		}
		return padBits(v.Text(2), n), nil
	}
	return "", errors.Errorf("rng: exhausted %d attempts drawing a nonzero %d-bit value", MaxRejectionRetries, n)
}

// deterministic is a fixed-pattern test Provider: it always fills with
// the repeating constant 0xA5A5A5A5, truncated/repeated to the requested
// length. It MUST NOT be selected in production, since it offers no
// secrecy whatsoever; it exists solely to reproduce known-answer test
// vectors byte-for-byte across implementations.
type deterministic struct {
	pattern string
}

// NewDeterministic returns a Provider that always returns bits derived
// from a fixed, non-secret pattern. Intended for tests only.
func NewDeterministic() Provider {
	return deterministic{pattern: "10100101101001011010010110100101"} // 0xA5A5A5A5, binary
}

func (deterministic) Tag() Tag { return TagTest }

func (d deterministic) Random(n int) (string, error) {
	if n <= 0 {
		return "", errors.Errorf("rng: requested bit length must be positive, got %d", n)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = d.pattern[i%len(d.pattern)]
	}
	return string(out), nil
}

// padBits left-pads a base-2 string (as produced by big.Int.Text(2)) with
// zeros to exactly n characters.
func padBits(s string, n int) string {
	if len(s) >= n {
		return s[len(s)-n:]
	}
	pad := make([]byte, n-len(s))
	for i := range pad {
		pad[i] = '0'
	}
	return string(pad) + s
}

// SelfTest exercises the §4.2 self-test contract: rand(w) must return a
// string of exactly w bits that parses as a positive base-2 integer.
// It's invoked whenever a new Provider is installed via SetRng.
func SelfTest(p Provider, w int) error {
	s, err := p.Random(w)
	if err != nil {
		return errors.Wrap(err, "rng: self-test draw failed")
	}
	if len(s) != w {
		return errors.Errorf("rng: self-test draw returned %d bits, want %d", len(s), w)
	}
	v, err := strconv.ParseUint(s, 2, 64)
	if err != nil {
		return errors.Wrap(err, "rng: self-test draw did not parse as base-2")
	}
	if v == 0 {
		return errors.New("rng: self-test draw was all-zero")
	}
	return nil
}
