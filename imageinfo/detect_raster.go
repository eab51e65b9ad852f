package imageinfo

// Fixed-header raster and texture formats.

// https://www.fileformat.info/format/bmp/corion.htm
func detectBMP(r *Reader, length int64) (Info, bool) {
	if length < 26 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 26)
	if !buf.Cmp(0, "BM") {
		return Info{}, false
	}

	// Width is always positive; a negative height marks a top-down bitmap.
	w := int64(buf.S32LE(18))
	if w < 0 {
		return Info{}, false
	}
	h := int64(buf.S32LE(22))
	if h < 0 {
		h = -h
	}
	info := newInfo(BMP)
	info.setSize(w, h)
	return info, true
}

func detectDDS(r *Reader, length int64) (Info, bool) {
	if length < 20 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 20)
	if !buf.Cmp(0, "DDS ") {
		return Info{}, false
	}

	info := newInfo(DDS)
	info.setSize(int64(buf.U32LE(16)), int64(buf.U32LE(12)))
	return info, true
}

// https://www.fileformat.info/format/gif/corion.htm
func detectGIF(r *Reader, length int64) (Info, bool) {
	if length < 10 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 10)
	if !buf.CmpAnyOf(0, 6, "GIF87a", "GIF89a") {
		return Info{}, false
	}

	info := newInfo(GIF)
	info.setSize(int64(buf.U16LE(6)), int64(buf.U16LE(8)))
	return info, true
}

// https://www.khronos.org/registry/KTX/specs/1.0/ktxspec_v1.html
func detectKTX(r *Reader, length int64) (Info, bool) {
	if length < 44 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 44)
	if !buf.Cmp(0, "\xABKTX 11\xBB\r\n\x1A\n") {
		return Info{}, false
	}

	info := newInfo(KTX)
	info.setSize(int64(buf.U32LE(36)), int64(buf.U32LE(40)))
	return info, true
}

func detectPSD(r *Reader, length int64) (Info, bool) {
	if length < 22 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 22)
	if !buf.Cmp(0, "8BPS\x00\x01") {
		return Info{}, false
	}

	info := newInfo(PSD)
	info.setSize(int64(buf.U32BE(18)), int64(buf.U32BE(14)))
	return info, true
}

func detectQOI(r *Reader, length int64) (Info, bool) {
	if length < 12 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 12)
	if !buf.Cmp(0, "qoif") {
		return Info{}, false
	}

	info := newInfo(QOI)
	info.setSize(int64(buf.U32BE(4)), int64(buf.U32BE(8)))
	return info, true
}

const (
	tgaHeaderSize = 18
	tgaFooter     = "TRUEVISION-XFILE.\x00"
)

// detectTGA has no magic number to rely on. It accepts either the TGA 2.0
// footer or a header whose image type and color map fields are consistent,
// which is weak enough that it must stay the last detector.
//
// https://www.fileformat.info/format/tga/corion.htm
func detectTGA(r *Reader, length int64) (Info, bool) {
	if length < tgaHeaderSize {
		return Info{}, false
	}

	buf := r.ReadBuffer(length-tgaHeaderSize, tgaHeaderSize)
	if buf.Cmp(0, tgaFooter) {
		if length < tgaHeaderSize+16 {
			return Info{}, false
		}
		buf = r.ReadBuffer(0, tgaHeaderSize)
		info := newInfo(TGA)
		info.setSize(int64(buf.U16LE(12)), int64(buf.U16LE(14)))
		return info, true
	}

	buf = r.ReadBuffer(0, tgaHeaderSize)
	idLen := int64(buf.U8(0))
	if length < idLen+tgaHeaderSize {
		return Info{}, false
	}

	colorMapType := buf.U8(1)
	imageType := buf.U8(2)
	firstEntry := buf.U16LE(3)
	colorMapLen := buf.U16LE(5)
	entryBits := buf.U8(7)
	w := int64(buf.U16LE(12))
	h := int64(buf.U16LE(14))

	switch colorMapType {
	case 0:
		switch imageType {
		case 0, 2, 3, 10, 11, 32, 33:
			if firstEntry == 0 && colorMapLen == 0 && entryBits == 0 {
				info := newInfo(TGA)
				info.setSize(w, h)
				return info, true
			}
		}
	case 1:
		if imageType == 1 || imageType == 9 {
			info := newInfo(TGA)
			info.setSize(w, h)
			return info, true
		}
	}
	return Info{}, false
}
