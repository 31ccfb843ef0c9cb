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

package gfshare

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/cyphar/gfshare/pkg/rng"
)

// newTestConfig returns a Config at the given width, seeded with the
// deterministic test RNG so scenarios are reproducible.
func newTestConfig(t *testing.T, w int) *Config {
	t.Helper()
	c, err := NewConfig(w)
	if err != nil {
		t.Fatalf("NewConfig(%d): %v", w, err)
	}
	if err := c.SetRng(rng.NewDeterministic()); err != nil {
		t.Fatalf("SetRng: %v", err)
	}
	return c
}

// Scenario 1: init(8,"test"); share("abc123",5,3) with the deterministic
// RNG must produce exactly 5 shares, each starting with "8", each id 2
// hex chars, and combine of any 3 returns "abc123".
func TestScenarioDeterministicShareAndCombine(t *testing.T) {
	c := newTestConfig(t, 8)

	shares, err := c.Share("abc123", 5, 3, DefaultPadLength)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if len(shares) != 5 {
		t.Fatalf("Share returned %d shares, want 5", len(shares))
	}
	wantIDs := []string{"01", "02", "03", "04", "05"}
	for i, s := range shares {
		if !strings.HasPrefix(s, "8") {
			t.Errorf("share %d = %q, want prefix \"8\"", i, s)
		}
		w, _, _, err := ExtractShareComponents(s)
		if err != nil {
			t.Fatalf("ExtractShareComponents(%q): %v", s, err)
		}
		if w != 8 {
			t.Errorf("share %d width = %d, want 8", i, w)
		}
		gotID := s[1:3]
		if gotID != wantIDs[i] {
			t.Errorf("share %d id hex = %q, want %q", i, gotID, wantIDs[i])
		}
	}

	got, err := c.Combine(shares[1:4], 0)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if got != "abc123" {
		t.Errorf("Combine(any 3) = %q, want \"abc123\"", got)
	}
}

// Scenario 2.
func TestScenarioThreeOfTwo(t *testing.T) {
	c := newTestConfig(t, 8)
	shares, err := c.Share("deadbeef", 3, 2, DefaultPadLength)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	got, err := c.Combine(shares[:2], 0)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if got != "deadbeef" {
		t.Errorf("Combine = %q, want \"deadbeef\"", got)
	}
}

// Scenario 3: leading zeros survive.
func TestScenarioLeadingZerosPreserved(t *testing.T) {
	c := newTestConfig(t, 8)
	shares, err := c.Share("00000000", 5, 3, DefaultPadLength)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	got, err := c.Combine(shares[:3], 0)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if got != "00000000" {
		t.Errorf("Combine = %q, want \"00000000\"", got)
	}
}

// Scenario 4: mismatched widths must fail.
func TestScenarioMismatchedWidths(t *testing.T) {
	c8 := newTestConfig(t, 8)
	c10 := newTestConfig(t, 10)

	shares8, err := c8.Share("abc123", 5, 3, DefaultPadLength)
	if err != nil {
		t.Fatalf("Share(w=8): %v", err)
	}
	shares10, err := c10.Share("abc123", 5, 3, DefaultPadLength)
	if err != nil {
		t.Fatalf("Share(w=10): %v", err)
	}

	mixed := []string{shares8[0], shares10[0]}
	_, err = c8.Combine(mixed, 0)
	if err == nil {
		t.Fatal("Combine across widths should fail")
	}
	var gfErr *Error
	if !errors.As(err, &gfErr) || gfErr.Code != MismatchedShares {
		t.Fatalf("Combine across widths error = %v, want MismatchedShares", err)
	}
}

// Scenario 5: newShare compatibility.
func TestScenarioNewShareCompatibility(t *testing.T) {
	c := newTestConfig(t, 8)
	shares, err := c.Share("ff", 5, 3, DefaultPadLength)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	n, err := c.NewShare(6, shares[:3])
	if err != nil {
		t.Fatalf("NewShare: %v", err)
	}
	got, err := c.Combine([]string{shares[1], shares[2], n}, 0)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if got != "ff" {
		t.Errorf("Combine(with new share) = %q, want \"ff\"", got)
	}
}

// Scenario 6: random(128).
func TestScenarioRandom128(t *testing.T) {
	c := newTestConfig(t, 8)
	if err := c.SetRng(rng.NewPlatform()); err != nil {
		t.Fatalf("SetRng(platform): %v", err)
	}
	a, err := c.Random(128)
	if err != nil {
		t.Fatalf("Random(128): %v", err)
	}
	if len(a) != 32 {
		t.Fatalf("Random(128) returned %d hex chars, want 32", len(a))
	}
	b, err := c.Random(128)
	if err != nil {
		t.Fatalf("Random(128): %v", err)
	}
	if a == b {
		t.Errorf("two successive Random(128) calls returned identical values")
	}
}

func TestRoundTripAcrossWidthsAndThresholds(t *testing.T) {
	rnd := rand.New(rand.NewSource(99))
	for trial := 0; trial < 30; trial++ {
		w := 3 + rnd.Intn(18)
		c := newTestConfig(t, w)
		t2 := 2 + rnd.Intn(4)
		n := t2 + rnd.Intn(4)
		if n > c.GetConfig().MaxShares {
			n = c.GetConfig().MaxShares
			if n < t2 {
				continue
			}
		}

		secret := randomHex(rnd, 1+rnd.Intn(16))
		shares, err := c.Share(secret, n, t2, DefaultPadLength)
		if err != nil {
			t.Fatalf("Share(w=%d,n=%d,t=%d,secret=%q): %v", w, n, t2, secret, err)
		}

		rnd.Shuffle(len(shares), func(i, j int) { shares[i], shares[j] = shares[j], shares[i] })
		got, err := c.Combine(shares[:t2], 0)
		if err != nil {
			t.Fatalf("Combine: %v", err)
		}
		if strings.TrimLeft(got, "0") != strings.TrimLeft(strings.ToLower(secret), "0") {
			t.Fatalf("width %d: Combine = %q, want %q", w, got, secret)
		}
	}
}

func TestCombineTooFewSharesStillInterpolatesButDisagrees(t *testing.T) {
	// Combine doesn't itself enforce a minimum count (callers that want
	// that check compare against GetConfig or their own bookkeeping); it
	// always interpolates whatever points it's handed. This test only
	// documents that a too-small subset generally does NOT reproduce the
	// secret, which is the whole point of the threshold scheme.
	c := newTestConfig(t, 8)
	shares, err := c.Share("abc123", 5, 4, DefaultPadLength)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	got, err := c.Combine(shares[:2], 0)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if got == "abc123" {
		t.Fatalf("Combine with fewer than T shares unexpectedly recovered the secret")
	}
}

func TestInvalidParameterErrors(t *testing.T) {
	c := newTestConfig(t, 8)
	if _, err := c.Share("ab", 300, 3, DefaultPadLength); err == nil {
		t.Error("Share with n > NMax should fail")
	}
	if _, err := c.Share("ab", 3, 1, DefaultPadLength); err == nil {
		t.Error("Share with t < 2 should fail")
	}
	if _, err := c.Random(1); err == nil {
		t.Error("Random(1) should fail")
	}
	if _, err := c.Random(70000); err == nil {
		t.Error("Random(70000) should fail")
	}
}

func randomHex(rnd *rand.Rand, n int) string {
	const digits = "0123456789abcdef"
	b := make([]byte, n)
	for i := range b {
		b[i] = digits[rnd.Intn(len(digits))]
	}
	return string(b)
}
