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

package field

import (
	"math/rand"
	"testing"
)

func allWidths() []int {
	ws := make([]int, 0, MaxWidth-MinWidth+1)
	for w := MinWidth; w <= MaxWidth; w++ {
		ws = append(ws, w)
	}
	return ws
}

func TestBuildRejectsOutOfRangeWidth(t *testing.T) {
	for _, w := range []int{-1, 0, 1, 2, 21, 100} {
		if _, err := Build(w); err == nil {
			t.Errorf("Build(%d): expected error, got nil", w)
		}
	}
}

func TestBuildPermutationInvariant(t *testing.T) {
	for _, w := range allWidths() {
		w := w
		t.Run(widthName(w), func(t *testing.T) {
			e, err := Build(w)
			if err != nil {
				t.Fatalf("Build(%d): %v", w, err)
			}
			seen := make(map[int]bool)
			for i := 0; i < e.NMax(); i++ {
				v := e.exp[i]
				if seen[v] {
					t.Fatalf("exp[%d]=%d repeats a previous value", i, v)
				}
				seen[v] = true
				if e.log[v] != i {
					t.Fatalf("log[exp[%d]] = %d, want %d", i, e.log[v], i)
				}
			}
			if len(seen) != e.NMax() {
				t.Fatalf("exp covers %d distinct values, want %d", len(seen), e.NMax())
			}
		})
	}
}

func TestMulAssociativeAndCommutative(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, w := range []int{3, 8, 16, 20} {
		e, err := Build(w)
		if err != nil {
			t.Fatalf("Build(%d): %v", w, err)
		}
		for trial := 0; trial < 200; trial++ {
			a := rng.Intn(e.NMax() + 1)
			b := rng.Intn(e.NMax() + 1)
			c := rng.Intn(e.NMax() + 1)

			if got, want := e.Mul(a, b), e.Mul(b, a); got != want {
				t.Fatalf("width %d: Mul(%d,%d)=%d, Mul(%d,%d)=%d", w, a, b, got, b, a, want)
			}
			lhs := e.Mul(e.Mul(a, b), c)
			rhs := e.Mul(a, e.Mul(b, c))
			if lhs != rhs {
				t.Fatalf("width %d: (%d*%d)*%d=%d, %d*(%d*%d)=%d", w, a, b, c, lhs, a, b, c, rhs)
			}
		}
	}
}

func TestAddSelfInverse(t *testing.T) {
	e, err := Build(8)
	if err != nil {
		t.Fatalf("Build(8): %v", err)
	}
	for a := 0; a <= e.NMax(); a++ {
		if got := e.Add(a, a); got != 0 {
			t.Errorf("Add(%d,%d) = %d, want 0", a, a, got)
		}
	}
}

func TestMulDivRoundTrip(t *testing.T) {
	e, err := Build(8)
	if err != nil {
		t.Fatalf("Build(8): %v", err)
	}
	for a := 1; a <= e.NMax(); a++ {
		for b := 1; b <= e.NMax(); b++ {
			prod := e.Mul(a, b)
			if got := e.Div(prod, b); got != a {
				t.Errorf("Div(Mul(%d,%d),%d) = %d, want %d", a, b, b, got, a)
			}
		}
	}
}

func TestDivByZeroPanics(t *testing.T) {
	e, err := Build(3)
	if err != nil {
		t.Fatalf("Build(3): %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("Div(1,0) did not panic")
		}
	}()
	e.Div(1, 0)
}

func widthName(w int) string {
	return "w=" + string(rune('0'+w/10)) + string(rune('0'+w%10))
}
