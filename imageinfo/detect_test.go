package imageinfo

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type detectCase struct {
	name   string
	data   []byte
	format Format
	mime   string
	size   Size
}

func detectCases() []detectCase {
	return []detectCase{
		{"avif", fixtureISOBMFF("avif", []string{"mif1", "avif"}, 640, 480), AVIF, "image/avif", Size{640, 480}},
		{"avif compatible brand", fixtureISOBMFF("mif1", []string{"mif1", "avif"}, 12, 34), AVIF, "image/avif", Size{12, 34}},
		{"heic", fixtureISOBMFF("heic", []string{"mif1", "heic"}, 4032, 3024), HEIC, "image/heic", Size{4032, 3024}},
		{"bmp", fixtureBMP(10, 20), BMP, "image/bmp", Size{10, 20}},
		{"bmp top-down", fixtureBMP(10, -20), BMP, "image/bmp", Size{10, 20}},
		{"cur", fixtureICO("\x00\x00\x02\x00", [2]byte{32, 32}), CUR, "image/cur", Size{32, 32}},
		{"dds", fixtureDDS(256, 128), DDS, "image/dds", Size{256, 128}},
		{"gif", fixtureGIF(300, 200), GIF, "image/gif", Size{300, 200}},
		{"hdr", fixtureHDR(30, 20), HDR, "image/vnd.radiance", Size{30, 20}},
		{"icns", fixtureICNS(icnsElement{"is32", 0}, icnsElement{"ic07", 0}), ICNS, "image/icns", Size{128, 128}},
		{"ico", fixtureICO("\x00\x00\x01\x00", [2]byte{16, 16}, [2]byte{0, 0}), ICO, "image/ico", Size{16, 16}},
		{"jp2", fixtureJP2("jp2 ", 1920, 1080), JP2, "image/jp2", Size{1920, 1080}},
		{"jpeg", fixtureJPEG(1024, 768), JPEG, "image/jpeg", Size{1024, 768}},
		{"jpeg with app0", fixtureJPEGWithAPP0(64, 48), JPEG, "image/jpeg", Size{64, 48}},
		{"jpx", fixtureJP2("jpx ", 100, 200), JPX, "image/jpx", Size{100, 200}},
		{"ktx", fixtureKTX(512, 256), KTX, "image/ktx", Size{512, 256}},
		{"png", fixturePNG(800, 600), PNG, "image/png", Size{800, 600}},
		{"png cgbi", fixturePNGCgBI(57, 57), PNG, "image/png", Size{57, 57}},
		{"psd", fixturePSD(1200, 900), PSD, "image/psd", Size{1200, 900}},
		{"qoi", fixtureQOI(7, 9), QOI, "image/qoi", Size{7, 9}},
		{"tiff little-endian", fixtureTIFF(false, 320, 240), TIFF, "image/tiff", Size{320, 240}},
		{"tiff big-endian", fixtureTIFF(true, 320, 240), TIFF, "image/tiff", Size{320, 240}},
		{"webp lossy", fixtureWEBPLossy(550, 368), WEBP, "image/webp", Size{550, 368}},
		{"webp lossless", fixtureWEBPLossless(100, 50), WEBP, "image/webp", Size{100, 50}},
		{"webp extended", fixtureWEBPExtended(70000, 3), WEBP, "image/webp", Size{70000, 3}},
		{"tga", fixtureTGA(48, 24), TGA, "image/tga", Size{48, 24}},
		{"tga footer", fixtureTGAFooter(48, 24), TGA, "image/tga", Size{48, 24}},
	}
}

func TestParseFormats(t *testing.T) {
	for _, tt := range detectCases() {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseBytes(tt.data)
			if err != nil {
				t.Fatalf("ParseBytes() error = %v", err)
			}
			if !info.OK() {
				t.Fatalf("ParseBytes() not ok: %s", info.ErrorMessage())
			}
			if info.Format() != tt.format {
				t.Errorf("Format() = %v, want %v", info.Format(), tt.format)
			}
			if info.MIME() != tt.mime {
				t.Errorf("MIME() = %q, want %q", info.MIME(), tt.mime)
			}
			if info.Size() != tt.size {
				t.Errorf("Size() = %v, want %v", info.Size(), tt.size)
			}
		})
	}
}

func TestParseTruncated(t *testing.T) {
	for _, tt := range detectCases() {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data[:len(tt.data)-1]
			info, err := ParseBytes(data)
			if err != nil {
				t.Fatalf("ParseBytes() error = %v", err)
			}
			if info.OK() {
				t.Fatalf("ParseBytes() = %v, want unrecognized", info)
			}
			if info.Code() != ErrUnrecognized {
				t.Errorf("Code() = %v, want %v", info.Code(), ErrUnrecognized)
			}
		})
	}
}

// Every detector must decline a short source without reading past its end.
func TestDetectorsShortInput(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x00},
		{0xFF, 0xD8},
		[]byte("\x89PNG"),
		[]byte("RIFF\x00\x00\x00\x00WEBP"),
		[]byte("icns\x00\x00\x00\x08"),
		[]byte("#?RGBE"),
	}
	for _, data := range inputs {
		for _, d := range detectors {
			r := NewBytesReader(data)
			if info, ok := d.detect(r, r.Len()); ok {
				t.Errorf("%s detector matched %q: %v", d.format, data, info)
			}
		}
	}
}

func TestDetectICOEntries(t *testing.T) {
	data := fixtureICO("\x00\x00\x01\x00", [2]byte{16, 16}, [2]byte{0, 0})
	info, err := ParseBytes(data)
	if err != nil {
		t.Fatal(err)
	}

	want := []Size{{16, 16}, {256, 256}}
	got := info.EntrySizes()
	if len(got) != len(want) {
		t.Fatalf("EntrySizes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EntrySizes()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if info.Size() != want[0] {
		t.Errorf("Size() = %v, want first entry %v", info.Size(), want[0])
	}

	got[0] = Size{1, 1}
	if info.EntrySizes()[0] != want[0] {
		t.Error("EntrySizes() exposes internal storage")
	}
}

func TestDetectICOImageData(t *testing.T) {
	data := fixtureICOWithData(64)

	info, _ := ParseBytes(data)
	if !info.OK() || info.Format() != ICO {
		t.Fatalf("ParseBytes() = %v, want ico", info)
	}

	info, _ = ParseBytes(data[:len(data)-1])
	if info.OK() {
		t.Errorf("ParseBytes() on short image data = %v, want unrecognized", info)
	}
}

func TestDetectICNSSkipsNonIconElements(t *testing.T) {
	data := fixtureICNS(
		icnsElement{"TOC ", 8},
		icnsElement{"ic10", 4},
		icnsElement{"icnV", 4},
		icnsElement{"il32", 0},
	)
	info, err := ParseBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if !info.OK() || info.Format() != ICNS {
		t.Fatalf("ParseBytes() = %v, want icns", info)
	}
	if info.Size() != (Size{1024, 1024}) {
		t.Errorf("Size() = %v, want largest element 1024x1024", info.Size())
	}
	entries := info.EntrySizes()
	if len(entries) != 2 || entries[0] != (Size{1024, 1024}) || entries[1] != (Size{32, 32}) {
		t.Errorf("EntrySizes() = %v, want [1024x1024 32x32]", entries)
	}
}

func TestDetectICNSLengthMismatch(t *testing.T) {
	data := fixtureICNS(icnsElement{"ic07", 0})
	data = append(data, 0)

	info, _ := ParseBytes(data)
	if info.Format() == ICNS {
		t.Errorf("ParseBytes() = %v, want declared length check to fail", info)
	}
}

func TestDetectICNSElementPastEnd(t *testing.T) {
	data := []byte("icns\x00\x00\x00\x10ic08\x00\x01\x86\xa0")

	info, _ := ParseBytes(data, WithMostLikely(ICNS), MustBeLikely())
	if info.OK() {
		t.Errorf("ParseBytes() = %v, want element running past the end to fail", info)
	}
}

func TestDetectBMPNegativeWidth(t *testing.T) {
	info, _ := ParseBytes(fixtureBMP(-10, 20))
	if info.Format() == BMP {
		t.Errorf("ParseBytes() = %v, want negative width to fail", info)
	}
	if info.OK() && !info.Size().Known() {
		t.Errorf("ParseBytes() = %v, ok with unknown size", info)
	}
}

func TestDetectZeroLengthBoxes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "icns element",
			data: []byte("icns\x00\x00\x00\x10ic07\x00\x00\x00\x00"),
		},
		{
			name: "jp2 box",
			data: append(fixtureJP2("jp2 ", 1, 1)[:32], make([]byte, 24)...),
		},
		{
			name: "isobmff ftyp",
			data: append([]byte("\x00\x00\x00\x00ftypavif"), make([]byte, 64)...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseBytes(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if info.OK() {
				t.Errorf("ParseBytes() = %v, want unrecognized", info)
			}
		})
	}
}

func TestDetectWEBPReservedFlags(t *testing.T) {
	data := fixtureWEBPExtended(10, 10)
	data[20] |= 0x01

	info, _ := ParseBytes(data)
	if info.Format() == WEBP {
		t.Errorf("ParseBytes() = %v, want reserved VP8X flag rejected", info)
	}
}

func TestDetectJPEGWithoutSOF(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x04, 0x00, 0x00, 0xFF, 0xD9, 0x00, 0x00}
	info, _ := ParseBytes(data)
	if info.OK() {
		t.Errorf("ParseBytes() = %v, want unrecognized", info)
	}
}

func TestDetectTIFFSkipsOtherTypes(t *testing.T) {
	data := fixtureTIFF(false, 320, 240)
	// Retype the width entry as RATIONAL.
	data[12] = 5

	info, _ := ParseBytes(data)
	if info.Format() == TIFF {
		t.Errorf("ParseBytes() = %v, want missing width to fail", info)
	}
}

func TestDetectHDRXYZE(t *testing.T) {
	data := []byte("#?XYZE\n-Y 8 -X 16\n")
	info, err := ParseBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if info.Format() != HDR || info.Size() != (Size{16, 8}) {
		t.Errorf("ParseBytes() = %v, want hdr 16x8", info)
	}
}

func TestDetectHDRLongHeader(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("#?RADIANCE\n")
	for range 10 {
		b.WriteString("# a comment line that pushes the resolution past one piece\n")
	}
	b.WriteString("\n-Y 480 +X 640\n")

	info, err := ParseBytes(b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if info.Format() != HDR || info.Size() != (Size{640, 480}) {
		t.Errorf("ParseBytes() = %v, want hdr 640x480", info)
	}
}

func TestDetectHDRTokenAcrossPieces(t *testing.T) {
	// Shift the resolution line over every position of a piece boundary.
	for pad := range hdrPiece {
		data := []byte("#?RGBE\n" + strings.Repeat("#", pad) + "\n\n-Y 480 +X 640\n")
		info, err := ParseBytes(data)
		if err != nil {
			t.Fatal(err)
		}
		if info.Format() != HDR || info.Size() != (Size{640, 480}) {
			t.Errorf("pad %d: ParseBytes() = %v, want hdr 640x480", pad, info)
		}
	}
}

func TestDetectHDRLongBodyWithoutResolution(t *testing.T) {
	data := []byte("#?RGBE\n" + strings.Repeat("a", 4<<20))

	start := time.Now()
	info, err := ParseBytes(data, WithMostLikely(HDR), MustBeLikely())
	elapsed := time.Since(start)
	if err != nil {
		t.Fatal(err)
	}
	if info.OK() {
		t.Errorf("ParseBytes() = %v, want unrecognized", info)
	}
	if elapsed > 10*time.Second {
		t.Errorf("ParseBytes() of a 4 MiB header took %v", elapsed)
	}
}

func TestParseRandomData(t *testing.T) {
	data := bytes.Repeat([]byte("not an image "), 20)
	info, err := ParseBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if info.OK() {
		t.Errorf("ParseBytes() = %v, want unrecognized", info)
	}
	if info.Err() != ErrUnrecognizedFormat {
		t.Errorf("Err() = %v, want %v", info.Err(), ErrUnrecognizedFormat)
	}
}
