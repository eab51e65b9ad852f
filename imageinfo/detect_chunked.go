package imageinfo

import (
	"regexp"
	"strconv"
)

// Formats whose size lives behind a chunk, marker or directory walk.

// https://www.fileformat.info/format/png/corion.htm
func detectPNG(r *Reader, length int64) (Info, bool) {
	if length < 4 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, min(length, 40))
	if !buf.Cmp(0, "\x89PNG") || buf.Len() < 16 {
		return Info{}, false
	}

	switch buf.ReadString(12, 4) {
	case "IHDR":
		if buf.Len() < 24 {
			return Info{}, false
		}
		info := newInfo(PNG)
		info.setSize(int64(buf.U32BE(16)), int64(buf.U32BE(20)))
		return info, true
	case "CgBI":
		// Apple's optimized PNG puts a CgBI chunk ahead of IHDR.
		if buf.Len() < 40 || buf.ReadString(28, 4) != "IHDR" {
			return Info{}, false
		}
		info := newInfo(PNG)
		info.setSize(int64(buf.U32BE(32)), int64(buf.U32BE(36)))
		return info, true
	}
	return Info{}, false
}

// https://www.fileformat.info/format/jpeg/corion.htm
func detectJPEG(r *Reader, length int64) (Info, bool) {
	if length < 2 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 2)
	if !buf.Cmp(0, "\xFF\xD8") {
		return Info{}, false
	}

	offset := int64(2)
	for offset+9 <= length {
		buf = r.ReadBuffer(offset, 9)
		if buf.U8(0) != 0xFF {
			// Padding between segments.
			offset++
			continue
		}

		// SOF0 baseline, SOF1 extended sequential, SOF2 progressive.
		if buf.CmpAnyOf(0, 2, "\xFF\xC0", "\xFF\xC1", "\xFF\xC2") {
			info := newInfo(JPEG)
			info.setSize(int64(buf.U16BE(7)), int64(buf.U16BE(5)))
			return info, true
		}
		offset += int64(buf.U16BE(2)) + 2
	}
	return Info{}, false
}

const (
	tiffTagImageWidth  = 256
	tiffTagImageLength = 257

	tiffTypeShort = 3
	tiffTypeLong  = 4
)

// https://www.fileformat.info/format/tiff/corion.htm
func detectTIFF(r *Reader, length int64) (Info, bool) {
	if length < 8 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 8)
	if !buf.CmpAnyOf(0, 4, "II*\x00", "MM\x00*") {
		return Info{}, false
	}
	be := buf.U8(0) == 'M'

	offset := int64(buf.U32(4, be))
	if length < offset+2 {
		return Info{}, false
	}
	buf = r.ReadBuffer(offset, 2)
	count := int(buf.U16(0, be))
	offset += 2

	width, height := int64(-1), int64(-1)
	for i := 0; i < count && length >= offset+12 && (width == -1 || height == -1); i++ {
		buf = r.ReadBuffer(offset, 12)
		offset += 12

		var v int64
		switch buf.U16(2, be) {
		case tiffTypeShort:
			v = int64(buf.U16(8, be))
		case tiffTypeLong:
			v = int64(buf.U32(8, be))
		default:
			continue
		}
		switch buf.U16(0, be) {
		case tiffTagImageWidth:
			width = v
		case tiffTagImageLength:
			height = v
		}
	}

	if width == -1 || height == -1 {
		return Info{}, false
	}
	info := newInfo(TIFF)
	info.setSize(width, height)
	return info, true
}

// https://developers.google.com/speed/webp/docs/riff_container
func detectWEBP(r *Reader, length int64) (Info, bool) {
	if length < 16 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, min(length, 30))
	if !buf.Cmp(0, "RIFF") || !buf.Cmp(8, "WEBP") {
		return Info{}, false
	}

	switch buf.ReadString(12, 4) {
	case "VP8 ":
		if buf.Len() < 30 {
			return Info{}, false
		}
		info := newInfo(WEBP)
		info.setSize(int64(buf.U16LE(26)&0x3FFF), int64(buf.U16LE(28)&0x3FFF))
		return info, true
	case "VP8L":
		if buf.Len() < 25 {
			return Info{}, false
		}
		n := buf.U32LE(21)
		info := newInfo(WEBP)
		info.setSize(int64(n&0x3FFF)+1, int64((n>>14)&0x3FFF)+1)
		return info, true
	case "VP8X":
		if buf.Len() < 30 {
			return Info{}, false
		}
		// Reserved bits around the feature flags must be zero.
		flags := buf.U8(20)
		if flags&0xC0 != 0 || flags&0x01 != 0 {
			return Info{}, false
		}
		info := newInfo(WEBP)
		info.setSize(int64(buf.U32LE(24)&0x00FFFFFF)+1, int64((buf.U32LE(26)&0xFFFFFF00)>>8)+1)
		return info, true
	}
	return Info{}, false
}

const (
	hdrPiece = 64

	// hdrTail is carried from one piece into the next so a token split across
	// pieces is still seen. It is longer than any token whose number fits an
	// int64.
	hdrTail = 32
)

var (
	hdrXPattern = regexp.MustCompile(`\s[+-]X\s(\d+)\s`)
	hdrYPattern = regexp.MustCompile(`\s[+-]Y\s(\d+)\s`)
)

// http://paulbourke.net/dataformats/pic/
//
// Each piece is searched together with the tail of the previous one, so the
// header scan stays linear in the file length.
func detectHDR(r *Reader, length int64) (Info, bool) {
	if length < 6 {
		return Info{}, false
	}
	offset := int64(6)
	buf := r.ReadBuffer(0, 6)
	if !buf.CmpAnyOf(0, 6, "#?RGBE", "#?XYZE") {
		if length < 10 {
			return Info{}, false
		}
		offset = 10
		buf = r.ReadBuffer(0, 10)
		if !buf.Cmp(0, "#?RADIANCE") {
			return Info{}, false
		}
	}

	var x, y []string
	var tail string
	for offset < length {
		buf = r.ReadBuffer(offset, min(length-offset, hdrPiece))
		offset += int64(buf.Len())
		window := tail + buf.ReadString(0, buf.Len())
		tail = window[max(0, len(window)-hdrTail):]

		if x == nil {
			x = hdrXPattern.FindStringSubmatch(window)
		}
		if y == nil {
			y = hdrYPattern.FindStringSubmatch(window)
		}
		if x == nil || y == nil {
			continue
		}
		w, errW := strconv.ParseInt(x[1], 10, 64)
		h, errH := strconv.ParseInt(y[1], 10, 64)
		if errW != nil || errH != nil {
			return Info{}, false
		}
		info := newInfo(HDR)
		info.setSize(w, h)
		return info, true
	}
	return Info{}, false
}
