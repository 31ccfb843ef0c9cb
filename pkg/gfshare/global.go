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
	"github.com/cyphar/gfshare/pkg/rng"
	"github.com/cyphar/gfshare/pkg/sharecodec"
)

// global is the package-level Config backing the free functions below,
// offered purely for API parity with callers that don't want to carry a
// *Config around. It is lazily initialized to DefaultWidth on first use
// by any free function, mirroring the reference scheme's implicit
// process-wide state -- but, per (*Config).Combine's doc comment, it is not
// silently re-pointed at a different width by Combine the way the
// reference implementation's global state is.
var global = &Config{}

func ensureGlobalInit() error {
	if global.GetConfig().MaxShares != 0 {
		return nil
	}
	return global.Init(DefaultWidth)
}

// Init resets the package-level Config, building field tables for width w
// (DefaultWidth if w == 0) and installing a platform CSPRNG.
func Init(w int) error {
	return global.Init(w)
}

// Share splits secretHex using the package-level Config. See
// (*Config).Share.
func Share(secretHex string, n, t, padLength int) ([]string, error) {
	if err := ensureGlobalInit(); err != nil {
		return nil, err
	}
	return global.Share(secretHex, n, t, padLength)
}

// Combine reconstructs a value from shares using the package-level
// Config. See (*Config).Combine.
func Combine(shares []string, at int) (string, error) {
	if err := ensureGlobalInit(); err != nil {
		return "", err
	}
	return global.Combine(shares, at)
}

// NewShare derives an additional share using the package-level Config.
// See (*Config).NewShare.
func NewShare(id int, shares []string) (string, error) {
	if err := ensureGlobalInit(); err != nil {
		return "", err
	}
	return global.NewShare(id, shares)
}

// ExtractShareComponents decodes a share string into its width, id and
// data payload. It does not depend on any Config state: the share string
// is entirely self-describing.
func ExtractShareComponents(share string) (w, id int, data string, err error) {
	w, id, data, decodeErr := sharecodec.Decode(share)
	if decodeErr != nil {
		return 0, 0, "", newError(InvalidShare, decodeErr, "malformed share %q", share)
	}
	return w, id, data, nil
}

// GetConfig returns a snapshot of the package-level Config.
func GetConfig() Snapshot {
	if err := ensureGlobalInit(); err != nil {
		return Snapshot{}
	}
	return global.GetConfig()
}

// SetRng installs p as the package-level Config's RNG provider. See
// (*Config).SetRng.
func SetRng(p rng.Provider) error {
	if err := ensureGlobalInit(); err != nil {
		return err
	}
	return global.SetRng(p)
}

// Random returns bits random bits, hex-encoded, using the package-level
// Config. See (*Config).Random.
func Random(bits int) (string, error) {
	if err := ensureGlobalInit(); err != nil {
		return "", err
	}
	return global.Random(bits)
}
