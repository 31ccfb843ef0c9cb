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
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cyphar/gfshare/pkg/chunk"
	"github.com/cyphar/gfshare/pkg/field"
	"github.com/cyphar/gfshare/pkg/polynomial"
	"github.com/cyphar/gfshare/pkg/sharecodec"
)

// DefaultPadLength mirrors the reference scheme's default pad length for
// Share's sentinel-prefixed bitstring.
const DefaultPadLength = 128

// Share splits secretHex into n shares such that any t of them
// reconstruct it, using this Config's installed width and RNG provider.
func (c *Config) Share(secretHex string, n, t, padLength int) ([]string, error) {
	engine, provider, err := c.state()
	if err != nil {
		return nil, err
	}

	if t < 2 {
		return nil, newError(InvalidParameter, nil, "threshold must be an integer between 2 and %d, inclusive: got %d", engine.NMax(), t).withContext("t", t)
	}
	if n < t || n > engine.NMax() {
		return nil, newError(InvalidParameter, nil, "share count must be an integer between %d and %d, inclusive: got %d (need a wider field for more shares)", t, engine.NMax(), n).withContext("n", n, "width", engine.Width())
	}
	if padLength < 0 || padLength > chunk.MaxPadLength {
		return nil, newError(InvalidParameter, nil, "padLength must be an integer between 0 and %d, inclusive: got %d", chunk.MaxPadLength, padLength)
	}

	secretChunks, err := chunk.Encode(secretHex, engine.Width(), padLength)
	if err != nil {
		return nil, newError(InvalidParameter, err, "invalid secret hex")
	}

	// perShare[j] accumulates, in chunk order (most-significant first),
	// the y-value this share holds for each chunk.
	perShare := make([][]int, n)
	for _, secretChunk := range secretChunks {
		points, err := polynomial.ShareChunk(engine, provider, secretChunk, n, t)
		if err != nil {
			return nil, newError(RngFailure, err, "failed to share a chunk")
		}
		for _, p := range points {
			perShare[p.X-1] = append(perShare[p.X-1], p.Y)
		}
	}

	shares := make([]string, n)
	for j := 0; j < n; j++ {
		dataHex, err := encodeShareData(perShare[j], engine.Width())
		if err != nil {
			return nil, newError(InvalidParameter, err, "failed to encode share %d payload", j+1)
		}
		s, err := sharecodec.Encode(engine.Width(), j+1, dataHex)
		if err != nil {
			return nil, newError(InvalidParameter, err, "failed to encode share %d", j+1)
		}
		shares[j] = s
	}
	return shares, nil
}

// Combine reconstructs the value at x = at from a set of shares (at = 0,
// the default, recovers the original secret; at != 0 produces the raw
// payload a new share at that index would hold). All shares must share
// the same width, or Combine fails with MismatchedShares. Duplicate share
// ids are collapsed, first occurrence wins, matching the reference
// scheme's documented (if debatable -- see the design notes) behaviour.
//
// Unlike the reference scheme, a width different from this Config's own
// does not mutate the Config: Combine builds a transient field engine
// scoped to this call alone.
func (c *Config) Combine(shares []string, at int) (string, error) {
	if len(shares) == 0 {
		return "", newError(InvalidParameter, nil, "combine requires at least one share")
	}

	type decodedShare struct {
		id      int
		dataHex string
	}
	decoded := make([]decodedShare, 0, len(shares))
	width := -1
	for _, s := range shares {
		w, id, data, err := sharecodec.Decode(s)
		if err != nil {
			return "", newError(InvalidShare, err, "malformed share %q", s)
		}
		if width == -1 {
			width = w
		} else if w != width {
			return "", newError(MismatchedShares, nil, "shares have inconsistent widths: %d vs %d", width, w).withContext("share", s)
		}
		decoded = append(decoded, decodedShare{id: id, dataHex: data})
	}

	engine, err := field.Build(width)
	if err != nil {
		return "", newError(InitError, err, "failed to build field tables for width %d", width)
	}

	// Collapse duplicate ids, first occurrence wins.
	seen := make(map[int]bool, len(decoded))
	var unique []decodedShare
	for _, d := range decoded {
		if seen[d.id] {
			continue
		}
		seen[d.id] = true
		unique = append(unique, d)
	}

	// Decode every share's data payload into its sequence of w-bit chunk
	// values, and verify they all agree on how many chunks there are.
	chunkCount := -1
	perShareChunks := make([][]int, len(unique))
	for i, d := range unique {
		ys, err := decodeShareData(d.dataHex, engine.Width())
		if err != nil {
			return "", newError(InvalidShare, err, "malformed share payload for id %d", d.id)
		}
		if chunkCount == -1 {
			chunkCount = len(ys)
		} else if len(ys) != chunkCount {
			return "", newError(MismatchedShares, nil, "shares disagree on chunk count: %d vs %d", chunkCount, len(ys))
		}
		perShareChunks[i] = ys
	}

	pointSets := make([][]polynomial.Point, chunkCount)
	for pos := 0; pos < chunkCount; pos++ {
		pts := make([]polynomial.Point, len(unique))
		for i, d := range unique {
			pts[i] = polynomial.Point{X: d.id, Y: perShareChunks[i][pos]}
		}
		pointSets[pos] = pts
	}

	resultChunks, err := polynomial.CombineChunks(engine, pointSets, at)
	if err != nil {
		return "", newError(InvalidShare, err, "interpolation failed")
	}

	if at == 0 {
		return chunk.Decode(resultChunks, engine.Width())
	}
	return encodeShareData(resultChunks, engine.Width())
}

// NewShare derives an additional share at index id from an existing set
// of shares, by evaluating Combine at x = id and re-encoding the result.
func (c *Config) NewShare(id int, shares []string) (string, error) {
	if len(shares) == 0 {
		return "", newError(InvalidParameter, nil, "newShare requires at least one existing share")
	}
	if id < 1 {
		return "", newError(InvalidParameter, nil, "share id must be a positive integer: got %d", id)
	}

	w, _, _, err := sharecodec.Decode(shares[0])
	if err != nil {
		return "", newError(InvalidShare, err, "malformed share %q", shares[0])
	}
	nMax := (1 << uint(w)) - 1
	if id > nMax {
		return "", newError(InvalidParameter, nil, "share id must be an integer between 1 and %d, inclusive: got %d", nMax, id)
	}

	dataHex, err := c.Combine(shares, id)
	if err != nil {
		return "", err
	}
	return sharecodec.Encode(w, id, dataHex)
}

// ExtendMany derives count new shares at sequentially chosen unused ids,
// starting just above the highest id present in shares. It is a thin
// convenience wrapper around repeated NewShare calls; nothing in this
// package's wire format or state machine is affected by using it.
func (c *Config) ExtendMany(count int, shares []string) ([]string, error) {
	if count <= 0 {
		return nil, newError(InvalidParameter, nil, "count must be positive: got %d", count)
	}
	maxID := 0
	for _, s := range shares {
		_, id, _, err := sharecodec.Decode(s)
		if err != nil {
			return nil, newError(InvalidShare, err, "malformed share %q", s)
		}
		if id > maxID {
			maxID = id
		}
	}

	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, err := c.NewShare(maxID+1+i, shares)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Random returns a hex string of ceil(bits/4) characters drawn from this
// Config's RNG provider. bits must be in [2, 65536].
func (c *Config) Random(bits int) (string, error) {
	_, provider, err := c.state()
	if err != nil {
		return "", err
	}
	if bits < 2 || bits > 65536 {
		return "", newError(InvalidParameter, nil, "bits must be an integer between 2 and 65536, inclusive: got %d", bits)
	}
	bitstr, err := provider.Random(bits)
	if err != nil {
		return "", newError(RngFailure, err, "RNG draw failed")
	}
	return bitsToHex(bitstr), nil
}

// encodeShareData concatenates ys (each a w-bit field element,
// most-significant chunk first) into the DATA portion of a share string:
// a flat bitstring, left-padded with zeros to a multiple of 4 bits, then
// hex-encoded.
func encodeShareData(ys []int, w int) (string, error) {
	var sb strings.Builder
	for _, y := range ys {
		if y < 0 || y >= 1<<uint(w) {
			return "", errors.Errorf("value %d is not a valid %d-bit field element", y, w)
		}
		sb.WriteString(padBits(strconv.FormatInt(int64(y), 2), w))
	}
	return bitsToHex(sb.String()), nil
}

// decodeShareData is encodeShareData's inverse: it recovers the sequence
// of w-bit chunk values from a share's DATA hex. Because hex-encoding
// only ever adds up to 3 zero padding bits (to reach a multiple of 4),
// while a genuine w-bit chunk contributes w >= 3 bits, the chunk count is
// the k with ceil(k*w/4) == len(dataHex) whose leading padding bits are
// all zero. For w >= 4 only one k fits the length; at w=3 two counts can
// share a length, and they are told apart by the padding bits except when
// the larger count's leading chunk is all-zero, in which case the smaller
// count is taken.
func decodeShareData(dataHex string, w int) ([]int, error) {
	bits, err := hexToBits(dataHex)
	if err != nil {
		return nil, err
	}
	totalBits := len(bits)

	k := totalBits / w
	for delta := -1; delta <= 1; delta++ {
		cand := k + delta
		if cand < 0 {
			continue
		}
		// The bits ahead of cand chunks are hex padding and must be zero.
		if ceilDiv(cand*w, 4) == len(dataHex) && strings.Trim(bits[:totalBits-cand*w], "0") == "" {
			k = cand
			break
		}
	}
	if ceilDiv(k*w, 4) != len(dataHex) {
		return nil, errors.Errorf("could not determine chunk count for %d-char payload at width %d", len(dataHex), w)
	}

	payload := bits[totalBits-k*w:]
	ys := make([]int, k)
	for i := 0; i < k; i++ {
		group := payload[i*w : (i+1)*w]
		v, err := strconv.ParseUint(group, 2, 64)
		if err != nil {
			return nil, errors.Wrap(err, "internal bit-group parse failure")
		}
		ys[i] = int(v)
	}
	return ys, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func padBits(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}

func hexToBits(hexStr string) (string, error) {
	var sb strings.Builder
	for _, c := range hexStr {
		v, err := strconv.ParseUint(string(c), 16, 8)
		if err != nil {
			return "", errors.Errorf("not a hex digit: %q", c)
		}
		sb.WriteString(padBits(strconv.FormatUint(v, 2), 4))
	}
	return sb.String(), nil
}

func bitsToHex(bits string) string {
	padded := padBits(bits, ceilDiv(len(bits), 4)*4)
	var sb strings.Builder
	for i := 0; i < len(padded); i += 4 {
		v, _ := strconv.ParseUint(padded[i:i+4], 2, 8)
		sb.WriteString(strconv.FormatUint(v, 16))
	}
	return sb.String()
}
