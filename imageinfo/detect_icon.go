package imageinfo

// Multi-resolution icon containers.

const icoEntrySize = 16

func detectCURICO(r *Reader, length int64) (Info, bool) {
	if length < 6 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 6)

	var format Format
	switch {
	case buf.Cmp(0, "\x00\x00\x02\x00"):
		format = CUR
	case buf.Cmp(0, "\x00\x00\x01\x00"):
		format = ICO
	default:
		return Info{}, false
	}

	count := int64(buf.U16LE(4))
	if count == 0 {
		return Info{}, false
	}
	dirSize := count * icoEntrySize

	offset := int64(6)
	if length < offset+dirSize {
		return Info{}, false
	}
	buf = r.ReadBuffer(offset, dirSize)
	offset += dirSize

	sizes := make([]Size, 0, count)
	for i := 0; i < int(count); i++ {
		base := i * icoEntrySize
		w := int64(buf.U8(base))
		h := int64(buf.U8(base + 1))
		if w == 0 {
			w = 256
		}
		if h == 0 {
			h = 256
		}
		sizes = append(sizes, Size{Width: w, Height: h})

		// Image data of every entry must fit in the source.
		offset += int64(buf.U32LE(base + 8))
	}
	if length < offset {
		return Info{}, false
	}

	info := newInfo(format)
	info.entries = sizes
	info.size = sizes[0]
	return info, true
}

// icnsSizes maps ICNS element types to their icon edge length.
var icnsSizes = map[string]int64{
	"ICON": 32,
	"ICN#": 32,
	"icm#": 16,
	"icm4": 16,
	"icm8": 16,
	"ics#": 16,
	"ics4": 16,
	"ics8": 16,
	"is32": 16,
	"s8mk": 16,
	"icl4": 32,
	"icl8": 32,
	"il32": 32,
	"l8mk": 32,
	"ich#": 48,
	"ich4": 48,
	"ich8": 48,
	"ih32": 48,
	"h8mk": 48,
	"it32": 128,
	"t8mk": 128,
	"icp4": 16,
	"icp5": 32,
	"icp6": 64,
	"ic07": 128,
	"ic08": 256,
	"ic09": 512,
	"ic10": 1024,
	"ic11": 32,
	"ic12": 64,
	"ic13": 256,
	"ic14": 512,
	"ic04": 16,
	"ic05": 32,
	"icsB": 36,
	"icsb": 18,
}

// detectICNS walks the element list of an Apple icon file. Elements that do
// not carry an icon (TOC, icnV, name, info, unknown types) are skipped. A
// file is not matched when an element length is under 8 or runs past the end,
// or when it holds no icon element.
func detectICNS(r *Reader, length int64) (Info, bool) {
	if length < 8 {
		return Info{}, false
	}
	buf := r.ReadBuffer(0, 8)
	if !buf.Cmp(0, "icns") || int64(buf.U32BE(4)) != length {
		return Info{}, false
	}

	var maxSize int64
	var entries []Size

	offset := int64(8)
	for offset+8 <= length {
		buf = r.ReadBuffer(offset, 8)
		elemLen := int64(buf.U32BE(4))
		if elemLen < 8 || offset+elemLen > length {
			return Info{}, false
		}
		if s, ok := icnsSizes[buf.ReadString(0, 4)]; ok {
			entries = append(entries, Size{Width: s, Height: s})
			maxSize = max(maxSize, s)
		}
		offset += elemLen
	}
	if len(entries) == 0 {
		return Info{}, false
	}

	info := newInfo(ICNS)
	info.setSize(maxSize, maxSize)
	info.entries = entries
	return info, true
}
