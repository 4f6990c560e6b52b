package encoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// JPEG markers used when patching the JFIF header.
const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerAPP0   = 0xE0
	markerSOS    = 0xDA
	markerEOI    = 0xD9
)

// JFIF density units.
const (
	unitsNone = 0
	unitsDPI  = 1
	unitsDPCM = 2
)

var ErrNotJPEG = errors.New("jfif: not a JPEG stream")

var jfifIdent = []byte("JFIF\x00")

// SetDensity returns data with a JFIF APP0 segment declaring dpi in both
// directions. An existing JFIF segment directly after SOI is rewritten in
// place; otherwise one is inserted. data is not modified.
func SetDensity(data []byte, dpi int) ([]byte, error) {
	if len(data) < 4 || data[0] != markerPrefix || data[1] != markerSOI {
		return nil, ErrNotJPEG
	}
	if dpi <= 0 || dpi > math.MaxUint16 {
		return nil, fmt.Errorf("jfif: density %d out of range 1-%d", dpi, math.MaxUint16)
	}

	if off, n, ok := findJFIF(data); ok && n >= 14 {
		out := append([]byte(nil), data...)
		seg := out[off : off+n]
		seg[7] = unitsDPI
		binary.BigEndian.PutUint16(seg[8:], uint16(dpi))
		binary.BigEndian.PutUint16(seg[10:], uint16(dpi))
		return out, nil
	}

	app0 := make([]byte, 18)
	app0[0], app0[1] = markerPrefix, markerAPP0
	binary.BigEndian.PutUint16(app0[2:], 16)
	copy(app0[4:], jfifIdent)
	app0[9], app0[10] = 1, 1 // version 1.01
	app0[11] = unitsDPI
	binary.BigEndian.PutUint16(app0[12:], uint16(dpi))
	binary.BigEndian.PutUint16(app0[14:], uint16(dpi))
	// app0[16], app0[17]: no thumbnail.

	out := make([]byte, 0, len(data)+len(app0))
	out = append(out, data[:2]...)
	out = append(out, app0...)
	out = append(out, data[2:]...)
	return out, nil
}

// ReadDensity returns the horizontal resolution declared by the JFIF
// header, in dots per inch. ok is false when the stream has no JFIF
// segment or declares only an aspect ratio.
func ReadDensity(data []byte) (dpi int, ok bool) {
	off, n, found := findJFIF(data)
	if !found || n < 14 {
		return 0, false
	}
	seg := data[off : off+n]
	d := int(binary.BigEndian.Uint16(seg[8:]))
	switch seg[7] {
	case unitsDPI:
		return d, true
	case unitsDPCM:
		return int(math.Round(float64(d) * 2.54)), true
	default:
		return 0, false
	}
}

// findJFIF walks the marker segments ahead of the scan data and returns
// the payload (after the length field) of the first APP0 JFIF segment.
func findJFIF(data []byte) (off, n int, ok bool) {
	if len(data) < 4 || data[0] != markerPrefix || data[1] != markerSOI {
		return 0, 0, false
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != markerPrefix {
			return 0, 0, false
		}
		m := data[i+1]
		if m == markerPrefix { // fill byte
			i++
			continue
		}
		if m == markerSOS || m == markerEOI {
			return 0, 0, false
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2:]))
		if segLen < 2 || i+2+segLen > len(data) {
			return 0, 0, false
		}
		payload := data[i+4 : i+2+segLen]
		if m == markerAPP0 && len(payload) >= len(jfifIdent) && string(payload[:len(jfifIdent)]) == string(jfifIdent) {
			return i + 4, len(payload), true
		}
		i += 2 + segLen
	}
	return 0, 0, false
}
