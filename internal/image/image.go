// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package image implements the on-disk binary format shared by the
// lexical prefix tree and LM look-ahead caches: a magic prefix, a
// varint-length-prefixed gob header carrying the format version and
// configuration checksum, a gob-encoded payload, and a trailing
// content checksum. A stale header or trailer checksum is reported to
// the caller rather than panicking, so the core can fall back to a
// fresh build and overwrite the file.
package image

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
)

// FormatVersion is bumped whenever the payload encoding changes in a
// way that makes old images unreadable.
const FormatVersion uint32 = 1

const magic = "LVCSRIMG"

// Header is the fixed, gob-encoded prefix of every image file.
type Header struct {
	FormatVersion  uint32
	ConfigChecksum uint32
}

// StaleError reports that a decoded image does not match what the
// caller expects, either because the format changed or the
// configuration/content it was built from has drifted.
type StaleError struct {
	Field     string
	Got, Want uint32
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("image: stale %s (got %d, want %d)", e.Field, e.Got, e.Want)
}

// Write frames payload under the given header and trailing content
// checksum. payload must be a pointer to a gob-encodable value.
func Write(w io.Writer, hdr Header, payload any, contentChecksum uint32) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}

	var headerBuf bytes.Buffer
	if err := gob.NewEncoder(&headerBuf).Encode(hdr); err != nil {
		return err
	}
	if err := writeUvarintBlock(w, headerBuf.Bytes()); err != nil {
		return err
	}

	var payloadBuf bytes.Buffer
	if err := gob.NewEncoder(&payloadBuf).Encode(payload); err != nil {
		return err
	}
	if err := writeUvarintBlock(w, payloadBuf.Bytes()); err != nil {
		return err
	}

	return binary.Write(w, binary.LittleEndian, contentChecksum)
}

// Read parses an image written by Write into out (a pointer), and
// verifies the format version and config checksum against the values
// the caller expects. checksumOf computes the content checksum of the
// decoded out, compared against the trailer. A *StaleError is
// returned, never panicked, on any mismatch — the caller decides
// whether to rebuild.
func Read(r io.Reader, wantFormatVersion, wantConfigChecksum uint32, out any, checksumOf func() uint32) error {
	magicBuf := make([]byte, len(magic))
	if _, err := io.ReadFull(r, magicBuf); err != nil {
		return err
	}
	if string(magicBuf) != magic {
		return fmt.Errorf("image: bad magic %q", magicBuf)
	}

	headerBytes, err := readUvarintBlock(r)
	if err != nil {
		return err
	}
	var hdr Header
	if err := gob.NewDecoder(bytes.NewReader(headerBytes)).Decode(&hdr); err != nil {
		return err
	}
	if hdr.FormatVersion != wantFormatVersion {
		return &StaleError{Field: "format_version", Got: hdr.FormatVersion, Want: wantFormatVersion}
	}
	if hdr.ConfigChecksum != wantConfigChecksum {
		return &StaleError{Field: "config_checksum", Got: hdr.ConfigChecksum, Want: wantConfigChecksum}
	}

	payloadBytes, err := readUvarintBlock(r)
	if err != nil {
		return err
	}
	if err := gob.NewDecoder(bytes.NewReader(payloadBytes)).Decode(out); err != nil {
		return err
	}

	var wantContent uint32
	if err := binary.Read(r, binary.LittleEndian, &wantContent); err != nil {
		return err
	}
	if got := checksumOf(); got != wantContent {
		return &StaleError{Field: "content_checksum", Got: got, Want: wantContent}
	}
	return nil
}

func writeUvarintBlock(w io.Writer, block []byte) error {
	lenBuf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(lenBuf, uint64(len(block)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return err
	}
	_, err := w.Write(block)
	return err
}

func readUvarintBlock(r io.Reader) ([]byte, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufReader{r}
	}
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	block := make([]byte, n)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, err
	}
	return block, nil
}

// bufReader adapts an io.Reader lacking ReadByte into an io.ByteReader
// by reading one byte at a time; only used for the short varint
// prefixes, so the overhead is negligible.
type bufReader struct{ io.Reader }

func (b bufReader) ReadByte() (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(b.Reader, buf[:])
	return buf[0], err
}
