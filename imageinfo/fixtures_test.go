package imageinfo

import (
	"bytes"
	"encoding/binary"
	"strconv"
)

// Minimal headers for every supported format. A fixture is as long as its
// detector requires, so dropping the last byte must make it unrecognizable.

type fixtureWriter struct {
	bytes.Buffer
}

func (w *fixtureWriter) str(s string) *fixtureWriter {
	w.WriteString(s)
	return w
}

func (w *fixtureWriter) u8(v ...byte) *fixtureWriter {
	w.Write(v)
	return w
}

func (w *fixtureWriter) zero(n int) *fixtureWriter {
	w.Write(make([]byte, n))
	return w
}

func (w *fixtureWriter) le16(v uint16) *fixtureWriter {
	w.Write(binary.LittleEndian.AppendUint16(nil, v))
	return w
}

func (w *fixtureWriter) be16(v uint16) *fixtureWriter {
	w.Write(binary.BigEndian.AppendUint16(nil, v))
	return w
}

func (w *fixtureWriter) le32(v uint32) *fixtureWriter {
	w.Write(binary.LittleEndian.AppendUint32(nil, v))
	return w
}

func (w *fixtureWriter) be32(v uint32) *fixtureWriter {
	w.Write(binary.BigEndian.AppendUint32(nil, v))
	return w
}

func fixturePNG(width, height uint32) []byte {
	w := &fixtureWriter{}
	w.str("\x89PNG\r\n\x1a\n").be32(13).str("IHDR").be32(width).be32(height)
	return w.Bytes()
}

func fixturePNGCgBI(width, height uint32) []byte {
	w := &fixtureWriter{}
	w.str("\x89PNG\r\n\x1a\n").be32(4).str("CgBI").zero(8)
	w.be32(13).str("IHDR").be32(width).be32(height)
	return w.Bytes()
}

func fixtureJPEG(width, height uint16) []byte {
	w := &fixtureWriter{}
	w.u8(0xFF, 0xD8)
	w.u8(0xFF, 0xC0).be16(17).u8(8).be16(height).be16(width)
	return w.Bytes()
}

// fixtureJPEGWithAPP0 places a JFIF segment and fill bytes ahead of a
// progressive SOF marker.
func fixtureJPEGWithAPP0(width, height uint16) []byte {
	w := &fixtureWriter{}
	w.u8(0xFF, 0xD8)
	w.u8(0xFF, 0xE0).be16(16).str("JFIF\x00").u8(1, 1, 0).be16(72).be16(72).u8(0, 0)
	w.u8(0x00, 0x00)
	w.u8(0xFF, 0xC2).be16(17).u8(8).be16(height).be16(width)
	return w.Bytes()
}

func fixtureGIF(width, height uint16) []byte {
	w := &fixtureWriter{}
	w.str("GIF89a").le16(width).le16(height)
	return w.Bytes()
}

func fixtureBMP(width, height int32) []byte {
	w := &fixtureWriter{}
	w.str("BM").le32(0).zero(4).le32(54)
	w.le32(40).le32(uint32(width)).le32(uint32(height))
	return w.Bytes()
}

func fixtureDDS(width, height uint32) []byte {
	w := &fixtureWriter{}
	w.str("DDS ").le32(124).le32(0x1007).le32(height).le32(width)
	return w.Bytes()
}

func fixtureKTX(width, height uint32) []byte {
	w := &fixtureWriter{}
	w.str("\xABKTX 11\xBB\r\n\x1A\n").le32(0x04030201).zero(20)
	w.le32(width).le32(height)
	return w.Bytes()
}

func fixturePSD(width, height uint32) []byte {
	w := &fixtureWriter{}
	w.str("8BPS").be16(1).zero(6).be16(3).be32(height).be32(width)
	return w.Bytes()
}

func fixtureQOI(width, height uint32) []byte {
	w := &fixtureWriter{}
	w.str("qoif").be32(width).be32(height)
	return w.Bytes()
}

func fixtureTIFF(bigEndian bool, width, height uint16) []byte {
	w := &fixtureWriter{}
	u16, u32 := w.le16, w.le32
	if bigEndian {
		u16, u32 = w.be16, w.be32
		w.str("MM\x00*")
	} else {
		w.str("II*\x00")
	}
	u32(8)
	u16(2)
	u16(256)
	u16(3)
	u32(1)
	u16(width)
	u16(0)
	u16(257)
	u16(3)
	u32(1)
	u16(height)
	u16(0)
	return w.Bytes()
}

func fixtureWEBPLossless(width, height uint32) []byte {
	w := &fixtureWriter{}
	w.str("RIFF").le32(17).str("WEBP").str("VP8L").le32(5).u8(0x2F)
	w.le32((width - 1) | (height-1)<<14)
	return w.Bytes()
}

func fixtureWEBPLossy(width, height uint16) []byte {
	w := &fixtureWriter{}
	w.str("RIFF").le32(22).str("WEBP").str("VP8 ").le32(10)
	w.zero(3).u8(0x9D, 0x01, 0x2A).le16(width).le16(height)
	return w.Bytes()
}

func fixtureWEBPExtended(width, height uint32) []byte {
	w := &fixtureWriter{}
	w.str("RIFF").le32(22).str("WEBP").str("VP8X").le32(10)
	w.u8(0x10).zero(3)
	w.u8(byte(width-1), byte((width-1)>>8), byte((width-1)>>16))
	w.u8(byte(height-1), byte((height-1)>>8), byte((height-1)>>16))
	return w.Bytes()
}

func fixtureHDR(width, height int) []byte {
	w := &fixtureWriter{}
	w.str("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n")
	w.str("-Y " + strconv.Itoa(height) + " +X " + strconv.Itoa(width) + "\n")
	return w.Bytes()
}

func fixtureICO(magic string, dims ...[2]byte) []byte {
	w := &fixtureWriter{}
	w.str(magic).le16(uint16(len(dims)))
	for _, d := range dims {
		w.u8(d[0], d[1], 0, 0).le16(1).le16(32).le32(0).le32(0)
	}
	return w.Bytes()
}

// fixtureICOWithData is an ICO whose single entry carries n bytes of image
// data after the directory.
func fixtureICOWithData(n int) []byte {
	w := &fixtureWriter{}
	w.str("\x00\x00\x01\x00").le16(1)
	w.u8(32, 32, 0, 0).le16(1).le16(32).le32(uint32(n)).le32(22)
	w.zero(n)
	return w.Bytes()
}

type icnsElement struct {
	typ  string
	data int
}

func fixtureICNS(elems ...icnsElement) []byte {
	total := 8
	for _, e := range elems {
		total += 8 + e.data
	}
	w := &fixtureWriter{}
	w.str("icns").be32(uint32(total))
	for _, e := range elems {
		w.str(e.typ).be32(uint32(8 + e.data)).zero(e.data)
	}
	return w.Bytes()
}

// fixtureISOBMFF builds ftyp + meta(iprp(ipco(ispe))) followed by a small
// mdat box, which the meta reader needs as trailing slack.
func fixtureISOBMFF(major string, compatible []string, width, height uint32) []byte {
	w := &fixtureWriter{}
	w.be32(uint32(16 + 4*len(compatible))).str("ftyp").str(major).be32(0)
	for _, c := range compatible {
		w.str(c)
	}
	w.be32(48).str("meta").be32(0)
	w.be32(36).str("iprp")
	w.be32(28).str("ipco")
	w.be32(20).str("ispe").be32(0).be32(width).be32(height)
	w.be32(12).str("mdat").zero(4)
	return w.Bytes()
}

func fixtureJP2(brand string, width, height uint32) []byte {
	w := &fixtureWriter{}
	w.be32(12).str("jP  ").u8(0x0D, 0x0A, 0x87, 0x0A)
	w.be32(20).str("ftyp").str(brand).be32(0).str(brand)
	w.be32(45).str("jp2h").be32(22).str("ihdr").be32(height).be32(width)
	return w.Bytes()
}

func fixtureTGA(width, height uint16) []byte {
	w := &fixtureWriter{}
	w.u8(0, 0, 2).zero(9).le16(width).le16(height).u8(32, 8)
	return w.Bytes()
}

// fixtureTGAFooter carries a TGA 2.0 footer, which is accepted regardless of
// the header fields.
func fixtureTGAFooter(width, height uint16) []byte {
	w := &fixtureWriter{}
	w.u8(0, 7, 2).zero(9).le16(width).le16(height).u8(32, 8)
	w.le32(0).le32(0).str("TRUEVISION-XFILE.\x00")
	return w.Bytes()
}
