// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package image

import (
	"io"

	"github.com/gaissmai/lvcsr/internal/lpt"
)

// WriteLPT serialises tree's image under the given configuration
// checksum.
func WriteLPT(w io.Writer, tree *lpt.Tree, configChecksum uint32) error {
	img := tree.Encode()
	hdr := Header{FormatVersion: FormatVersion, ConfigChecksum: configChecksum}
	return Write(w, hdr, &img, img.ContentChecksum())
}

// ReadLPT reads back a tree image written by WriteLPT, rejecting it if
// the format version, configuration checksum, or content checksum does
// not match what the caller expects.
func ReadLPT(r io.Reader, wantConfigChecksum uint32) (*lpt.Tree, error) {
	var img lpt.Image
	err := Read(r, FormatVersion, wantConfigChecksum, &img, func() uint32 { return img.ContentChecksum() })
	if err != nil {
		return nil, err
	}
	return lpt.DecodeImage(img), nil
}
