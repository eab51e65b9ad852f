package imageinfo

// ISO base media file format family: AVIF/HEIC (ftyp + meta) and the
// JPEG 2000 family (jP signature box + ftyp + jp2h).

// https://nokiatech.github.io/heif/technical.html
func detectAVIFHEIC(r *Reader, length int64) (Info, bool) {
	if length < 4 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 4)
	ftypLen := int64(buf.U32BE(0))
	if ftypLen < 16 || length < ftypLen+12 {
		return Info{}, false
	}
	buf = r.ReadBuffer(0, ftypLen+12)
	if !buf.Cmp(4, "ftyp") {
		return Info{}, false
	}

	// Major brand.
	//   AVIF: avif, avis
	//   HEIF: mif1, msf1
	//   HEIC: heic, heix, hevc, hevx
	if !buf.CmpAnyOf(8, 4, "avif", "avis", "mif1", "msf1", "heic", "heix", "hevc", "hevx") {
		return Info{}, false
	}

	compatible := make(map[string]struct{})
	for i := int64(0); i < (ftypLen-16)/4; i++ {
		compatible[buf.ReadString(int(16+i*4), 4)] = struct{}{}
	}

	var format Format
	if _, ok := compatible["avif"]; ok || buf.Cmp(8, "avif") {
		format = AVIF
	} else if _, ok := compatible["heic"]; ok || buf.Cmp(8, "heic") {
		format = HEIC
	} else {
		return Info{}, false
	}

	if !buf.Cmp(int(ftypLen+4), "meta") {
		return Info{}, false
	}
	metaLen := int64(buf.U32BE(int(ftypLen)))
	if length < ftypLen+12+metaLen {
		return Info{}, false
	}
	buf = r.ReadBuffer(ftypLen+12, metaLen)

	// meta
	//   iprp
	//     ipco
	//       ispe
	size := int64(buf.Len())
	var offset int64
	end := metaLen
	for offset < end {
		if offset+8 > size {
			return Info{}, false
		}
		boxSize := int64(buf.U32BE(int(offset)))
		switch {
		case buf.CmpAnyOf(int(offset+4), 4, "iprp", "ipco"):
			end = offset + boxSize
			offset += 8
		case buf.Cmp(int(offset+4), "ispe"):
			if offset+20 > size {
				return Info{}, false
			}
			info := newInfo(format)
			info.setSize(int64(buf.U32BE(int(offset+12))), int64(buf.U32BE(int(offset+16))))
			return info, true
		default:
			if boxSize < 8 {
				return Info{}, false
			}
			offset += boxSize
		}
	}
	return Info{}, false
}

// https://docs.fileformat.com/image/jp2/
// https://docs.fileformat.com/image/jpx/
func detectJP2JPX(r *Reader, length int64) (Info, bool) {
	if length < 8 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 8)
	if !buf.Cmp(4, "jP  ") {
		return Info{}, false
	}

	offset := int64(buf.U32BE(0))
	if offset < 8 || length < offset+12 {
		return Info{}, false
	}
	buf = r.ReadBuffer(offset, 12)
	if !buf.Cmp(4, "ftyp") {
		return Info{}, false
	}

	var format Format
	switch {
	case buf.Cmp(8, "jp2 "):
		format = JP2
	case buf.Cmp(8, "jpx "):
		format = JPX
	default:
		return Info{}, false
	}

	ftypLen := int64(buf.U32BE(0))
	if ftypLen < 8 {
		return Info{}, false
	}
	offset += ftypLen

	for offset+24 <= length {
		buf = r.ReadBuffer(offset, 24)
		if buf.Cmp(4, "jp2h") {
			if !buf.Cmp(12, "ihdr") {
				return Info{}, false
			}
			info := newInfo(format)
			info.setSize(int64(buf.U32BE(20)), int64(buf.U32BE(16)))
			return info, true
		}
		boxLen := int64(buf.U32BE(0))
		if boxLen < 8 {
			return Info{}, false
		}
		offset += boxLen
	}
	return Info{}, false
}
