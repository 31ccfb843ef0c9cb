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
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/pkg/errors"
)

// Fingerprint returns a short hex digest of a recovered secret, suitable
// for participants to eyeball-compare after an out-of-band Combine to
// confirm they all reconstructed the same value. It hashes only the
// already-reconstructed secret -- never a share -- so it carries none of
// the authenticated-share/cheater-detection guarantees this scheme
// deliberately omits; it is a convenience check, not a MAC.
func Fingerprint(secretHex string) (string, error) {
	raw, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", errors.Wrap(err, "gfshare: fingerprint requires valid hex")
	}
	sum := sha3.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
