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

package polynomial

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cyphar/gfshare/pkg/field"
)

var (
	// ErrTooFewPoints is returned if interpolation was attempted with no
	// points at all. Callers that want the "need at least T shares" check
	// should perform it themselves (this package has no notion of T).
	ErrTooFewPoints = errors.New("polynomial: need at least one point to interpolate")

	// ErrInconsistentPoints describes a point set in which two points share
	// an X value but disagree on Y. CombineChunk does not return it: it
	// collapses duplicate X values, first occurrence wins.
	ErrInconsistentPoints = errors.New("polynomial: inconsistent points (same x, different y)")
)

// uniquePoints returns points with duplicate X values collapsed, first
// occurrence wins, in first-occurrence order. It reports whether any
// duplicate X carried a conflicting Y (the caller's share set would then
// be internally inconsistent, though per the documented duplicate-id
// policy this is not itself fatal -- see combine's design notes).
func uniquePoints(points []Point) (unique []Point, inconsistent bool) {
	seen := make(map[int]int, len(points))
	for _, p := range points {
		if idx, ok := seen[p.X]; ok {
			if unique[idx].Y != p.Y {
				inconsistent = true
			}
			continue
		}
		seen[p.X] = len(unique)
		unique = append(unique, p)
	}
	return unique, inconsistent
}

// CombineChunk reconstructs f(at) given a set of (x, f(x)) points on a
// degree-(T-1) polynomial f, using Lagrange interpolation over the field
// described by e:
//
//	f(at) = XOR_i  y_i * PROD_{j!=i} (at XOR x_j) / (x_i XOR x_j)
//
// Duplicate x values are collapsed (first occurrence wins); this matches
// the documented behaviour of the public Combine operation. If any y_i is
// zero that term contributes zero; if at equals some x_j (j != i), the
// i-th term's numerator factor is zero so the whole term is skipped
// without ever computing a zero-dividend log lookup.
func CombineChunk(e *field.Engine, points []Point, at int) (int, error) {
	unique, _ := uniquePoints(points)
	if len(unique) == 0 {
		return 0, ErrTooFewPoints
	}

	result := 0
	for i, pi := range unique {
		if pi.Y == 0 {
			continue
		}

		term := pi.Y
		skip := false
		for j, pj := range unique {
			if i == j {
				continue
			}
			if at == pj.X {
				skip = true
				break
			}
			num := e.Add(at, pj.X)
			den := e.Add(pi.X, pj.X)
			term = e.Mul(term, e.Div(num, den))
		}
		if skip {
			continue
		}
		result = e.Add(result, term)
	}
	return result, nil
}

// CombineChunks runs CombineChunk once per chunk position, in parallel.
// pointSets[c] holds the points for chunk c; the returned slice has the
// same length and ordering. Each chunk's interpolation is independent of
// every other, so fanning them out is safe and, for secrets with many
// chunks at small widths, meaningfully faster than a sequential loop.
func CombineChunks(e *field.Engine, pointSets [][]Point, at int) ([]int, error) {
	results := make([]int, len(pointSets))

	var g errgroup.Group
	for c := range pointSets {
		c := c
		g.Go(func() error {
			y, err := CombineChunk(e, pointSets[c], at)
			if err != nil {
				return errors.Wrapf(err, "chunk %d", c)
			}
			results[c] = y
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
