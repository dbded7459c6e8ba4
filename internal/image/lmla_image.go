// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package image

import (
	"io"

	"github.com/gaissmai/lvcsr/internal/lmla"
)

// WriteLMLA serialises l's image under the given configuration
// checksum.
func WriteLMLA(w io.Writer, l *lmla.LMLA, configChecksum uint32) error {
	img := l.Encode()
	hdr := Header{FormatVersion: FormatVersion, ConfigChecksum: configChecksum}
	return Write(w, hdr, &img, img.ContentChecksum())
}

// ReadLMLA reads back an LMLA image written by WriteLMLA, rejecting it
// if the format version, configuration checksum, or content checksum
// does not match what the caller expects.
func ReadLMLA(r io.Reader, wantConfigChecksum uint32) (*lmla.LMLA, error) {
	var img lmla.Image
	err := Read(r, FormatVersion, wantConfigChecksum, &img, func() uint32 { return img.ContentChecksum() })
	if err != nil {
		return nil, err
	}
	return lmla.DecodeImage(img), nil
}
