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

// Package field implements GF(2^w) arithmetic for w in [3,20], using
// precomputed exponential/logarithm tables against a fixed primitive
// polynomial per width. All higher layers (polynomial, chunk, gfshare)
// only ever touch the field through an *Engine.
package field

import (
	"github.com/pkg/errors"
)

// MinWidth and MaxWidth bound the configurable field width w.
const (
	MinWidth = 3
	MaxWidth = 20
)

// primitivePolynomial gives, for each width w in [3,20], the integer
// encoding of a primitive polynomial of GF(2) of degree w (bit i is the
// coefficient of x^i). These values are fixed for wire compatibility: two
// implementations that disagree on this table will produce incompatible
// shares at the same width.
var primitivePolynomial = map[int]int{
	3: 3, 4: 3, 5: 5, 6: 3, 7: 3, 8: 29, 9: 17, 10: 9,
	11: 5, 12: 83, 13: 27, 14: 43, 15: 3, 16: 45, 17: 9,
	18: 39, 19: 39, 20: 9,
}

// Engine holds the GF(2^w) log/antilog tables for one width. It is built
// once by Build and is immutable thereafter, so a single *Engine may be
// shared freely across goroutines.
type Engine struct {
	w    int
	nMax int // 2^w - 1, the order of the multiplicative group.
	exp  []int
	log  []int
}

// Build constructs the field tables for the given width. w must be in
// [MinWidth, MaxWidth] or Build returns an error (which package gfshare
// reports as an InitError).
func Build(w int) (*Engine, error) {
	if w < MinWidth || w > MaxWidth {
		return nil, errors.Errorf("field: width must be an integer between %d and %d, inclusive: got %d", MinWidth, MaxWidth, w)
	}
	poly, ok := primitivePolynomial[w]
	if !ok {
		return nil, errors.Errorf("field: no primitive polynomial registered for width %d", w)
	}

	size := 1 << uint(w)
	nMax := size - 1

	exp := make([]int, size)
	log := make([]int, size)

	x := 1
	for i := 0; i < nMax; i++ {
		exp[i] = x
		log[x] = i

		x <<= 1
		if x >= size {
			x = (x ^ poly) & nMax
		}
	}
	// exp has one entry per exponent in [0, nMax), plus a duplicate at
	// nMax itself (g^nMax == g^0 == 1). Mul and Div reduce exponents
	// modulo nMax, so they never index this last entry.
	exp[nMax] = exp[0]
	// log[0] is undefined; by convention it is left at the zero value
	// and callers must never look it up (Mul/Div special-case zero).

	e := &Engine{w: w, nMax: nMax, exp: exp, log: log}
	if err := e.selfCheck(); err != nil {
		return nil, errors.Wrap(err, "field: built tables failed invariant check")
	}
	return e, nil
}

// selfCheck verifies the invariants Build is supposed to establish: exp is
// a permutation of {1,...,nMax} over indices [0,nMax), log[1] == 0, and
// log inverts exp everywhere it's defined.
func (e *Engine) selfCheck() error {
	if e.log[1] != 0 {
		return errors.Errorf("log[1] = %d, want 0", e.log[1])
	}
	seen := make([]bool, e.nMax+1)
	for i := 0; i < e.nMax; i++ {
		v := e.exp[i]
		if v < 1 || v > e.nMax {
			return errors.Errorf("exp[%d] = %d out of range", i, v)
		}
		if seen[v] {
			return errors.Errorf("exp is not a permutation: %d repeated", v)
		}
		seen[v] = true
		if e.log[v] != i {
			return errors.Errorf("log[exp[%d]] = %d, want %d", i, e.log[v], i)
		}
	}
	return nil
}

// Width returns the field's bit width w.
func (e *Engine) Width() int { return e.w }

// NMax returns 2^w - 1, the maximum valid share index and the order of
// the field's multiplicative group.
func (e *Engine) NMax() int { return e.nMax }

// Add returns a XOR b, the field's addition (and its own inverse).
func (e *Engine) Add(a, b int) int {
	return a ^ b
}

// Mul returns a*b in GF(2^w). Either operand zero yields zero.
func (e *Engine) Mul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return e.exp[(e.log[a]+e.log[b])%e.nMax]
}

// Div returns a/b in GF(2^w). b must be nonzero; Div panics otherwise,
// matching the invariant that every caller in this module only divides by
// a nonzero difference of distinct share indices.
func (e *Engine) Div(a, b int) int {
	if b == 0 {
		panic("field: division by zero")
	}
	if a == 0 {
		return 0
	}
	return e.exp[((e.log[a]-e.log[b])%e.nMax+e.nMax)%e.nMax]
}

// Valid reports whether v is a representable field element for this
// engine's width, i.e. 0 <= v <= 2^w - 1.
func (e *Engine) Valid(v int) bool {
	return v >= 0 && v <= e.nMax
}
