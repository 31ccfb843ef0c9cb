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

// Package polynomial implements the sharing and reconstruction halves of
// Shamir's scheme over a field.Engine: Horner's method to split a single
// field-element chunk into N shares, and Lagrange interpolation to
// recombine T or more of them.
package polynomial

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/cyphar/gfshare/pkg/field"
	"github.com/cyphar/gfshare/pkg/rng"
)

// Point is one (x, y) evaluation of a chunk's sharing polynomial: x is the
// share index in [1, NMax], y is the field element held by that share for
// this chunk.
type Point struct {
	X int
	Y int
}

// ShareChunk draws a random degree-(t-1) polynomial whose constant term is
// secret, and evaluates it at x = 1..n. The returned slice has exactly n
// points, ordered by x. Each of the t-1 random coefficients is drawn
// independently from the given Provider as a w-bit draw.
func ShareChunk(e *field.Engine, provider rng.Provider, secret int, n, t int) ([]Point, error) {
	if !e.Valid(secret) {
		return nil, errors.Errorf("polynomial: secret chunk %d is not a valid field element for width %d", secret, e.Width())
	}
	if t < 2 {
		return nil, errors.Errorf("polynomial: threshold must be an integer between 2 and %d, inclusive: got %d", e.NMax(), t)
	}
	if n < t || n > e.NMax() {
		return nil, errors.Errorf("polynomial: share count must be an integer between %d and %d, inclusive: got %d", t, e.NMax(), n)
	}

	// coeffs holds the polynomial in increasing powers of x: coeffs[0] is
	// the secret itself, coeffs[1..t-1] are drawn uniformly at random.
	coeffs := make([]int, t)
	coeffs[0] = secret
	for i := 1; i < t; i++ {
		c, err := drawCoefficient(provider, e.Width())
		if err != nil {
			return nil, errors.Wrapf(err, "polynomial: drawing coefficient %d", i)
		}
		coeffs[i] = c
	}

	points := make([]Point, n)
	for x := 1; x <= n; x++ {
		points[x-1] = Point{X: x, Y: evalHorner(e, coeffs, x)}
	}
	return points, nil
}

// evalHorner evaluates the polynomial given by coeffs (increasing powers of
// x) at the point x, using Horner's method: starting from the highest-degree
// coefficient, repeatedly multiply by x and add in the next coefficient.
// When the running value is zero, fmul(0,x) is 0 regardless of x, so adding
// the next coefficient directly is equivalent to routing through Mul; it's
// written out here to match the documented special case rather than rely on
// that equivalence being obvious to a reader.
func evalHorner(e *field.Engine, coeffs []int, x int) int {
	y := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		if y == 0 {
			y = coeffs[i]
		} else {
			y = e.Add(e.Mul(y, x), coeffs[i])
		}
	}
	return y
}

// drawCoefficient draws one nonzero w-bit field element from provider.
// Providers are themselves responsible for rejecting all-zero raw draws
// (see package rng); this just does the bit-string -> int conversion.
func drawCoefficient(provider rng.Provider, w int) (int, error) {
	bits, err := provider.Random(w)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(bits, 2, 64)
	if err != nil {
		return 0, errors.Wrap(err, "polynomial: coefficient draw was not a binary string")
	}
	return int(v), nil
}
