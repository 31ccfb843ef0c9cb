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

// Package sharecodec implements the portable share wire string:
// <w36><id_hex><data_hex>, a single self-describing ASCII string that
// carries the field width, the share index, and the share's data
// payload. Unlike the teacher's JSON+signature share format, this wire
// form carries no authentication of its own -- it is a plain, compact
// encoding, matching the scheme this library is wire-compatible with.
package sharecodec

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cyphar/gfshare/pkg/field"
)

const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

var shareRe = regexp.MustCompile(`^([3-9A-Ka-k])([0-9a-fA-F]+)$`)

// idHexLength returns ceil(log16(nMax)), the number of hex characters
// needed to represent any share index up to nMax.
func idHexLength(nMax int) int {
	n := 0
	for v := nMax; v > 0; v >>= 4 {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

// Encode produces the canonical share string for one (w, id, data) triple.
// id must be in [1, 2^w-1]; dataHex is emitted lowercased, matching how
// the rest of this package emits hex.
func Encode(w, id int, dataHex string) (string, error) {
	if w < field.MinWidth || w > field.MaxWidth {
		return "", errors.Errorf("sharecodec: width must be an integer between %d and %d, inclusive: got %d", field.MinWidth, field.MaxWidth, w)
	}
	nMax := (1 << uint(w)) - 1
	if id < 1 || id > nMax {
		return "", errors.Errorf("sharecodec: share id must be an integer between 1 and %d, inclusive: got %d", nMax, id)
	}

	w36 := strings.ToUpper(string(base36Digits[w]))
	idLen := idHexLength(nMax)
	idHex := strconv.FormatInt(int64(id), 16)
	if len(idHex) > idLen {
		return "", errors.Errorf("sharecodec: share id %d does not fit in %d hex characters for width %d", id, idLen, w)
	}
	idHex = strings.Repeat("0", idLen-len(idHex)) + idHex

	return w36 + idHex + strings.ToLower(dataHex), nil
}

// Decode parses a share string back into its (w, id, dataHex) components.
// It returns an error wrapping InvalidShare semantics on any malformed
// input: bad width character, wrong id length, out-of-range id, or a
// payload containing non-hex characters.
func Decode(share string) (w, id int, dataHex string, err error) {
	m := shareRe.FindStringSubmatch(share)
	if m == nil {
		return 0, 0, "", errors.Errorf("sharecodec: malformed share string %q", share)
	}

	wDigit := strings.ToLower(m[1])
	w = strings.IndexByte(base36Digits, wDigit[0])
	if w < field.MinWidth || w > field.MaxWidth {
		return 0, 0, "", errors.Errorf("sharecodec: width must be an integer between %d and %d, inclusive: got %d", field.MinWidth, field.MaxWidth, w)
	}

	nMax := (1 << uint(w)) - 1
	idLen := idHexLength(nMax)
	rest := m[2]
	if len(rest) < idLen {
		return 0, 0, "", errors.Errorf("sharecodec: share string too short for width %d (need at least %d id hex chars)", w, idLen)
	}

	idHex, data := rest[:idLen], rest[idLen:]
	idVal, parseErr := strconv.ParseInt(idHex, 16, 64)
	if parseErr != nil {
		return 0, 0, "", errors.Wrap(parseErr, "sharecodec: invalid share id hex")
	}
	id = int(idVal)
	if id < 1 || id > nMax {
		return 0, 0, "", errors.Errorf("sharecodec: share id must be an integer between 1 and %d, inclusive: got %d", nMax, id)
	}

	return w, id, data, nil
}
