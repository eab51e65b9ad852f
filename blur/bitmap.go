package blur

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// MaxRadius is the default upper bound accepted by Apply.
const MaxRadius = 100

// DefaultMaxPixels bounds the images callers decode into a Bitmap when no
// tighter limit is configured. A 25 MP ARGB8888 bitmap takes 100 MB.
const DefaultMaxPixels = 25_000_000

var (
	// ErrRadiusOutOfRange is returned by Apply for a radius outside
	// [0, max radius].
	ErrRadiusOutOfRange = errors.New("blur: radius out of range")

	// ErrUnsupportedConfig is returned by Apply for a bitmap whose pixel
	// configuration has no blur implementation.
	ErrUnsupportedConfig = errors.New("blur: unsupported bitmap config")

	// ErrBufferSize is returned by Apply when the pixel buffer does not hold
	// Width*Height pixels.
	ErrBufferSize = errors.New("blur: pixel buffer does not match bitmap size")
)

// Config is the pixel layout of a Bitmap.
type Config int

const (
	// ConfigUnknown is the zero Config.
	ConfigUnknown Config = iota
	// ConfigRGB565 stores one pixel per uint16 in Pix16.
	ConfigRGB565
	// ConfigARGB8888 stores one pixel per uint32 in Pix32, alpha in the top
	// byte.
	ConfigARGB8888
)

func (c Config) String() string {
	switch c {
	case ConfigRGB565:
		return "RGB_565"
	case ConfigARGB8888:
		return "ARGB_8888"
	default:
		return "UNKNOWN"
	}
}

// Bitmap is a packed pixel buffer. Exactly one of Pix16 and Pix32 is used,
// depending on Config.
type Bitmap struct {
	Width  int
	Height int
	Config Config
	Pix16  []uint16
	Pix32  []uint32
}

// Clone returns a deep copy of b.
func (b *Bitmap) Clone() *Bitmap {
	c := *b
	if b.Pix16 != nil {
		c.Pix16 = append([]uint16(nil), b.Pix16...)
	}
	if b.Pix32 != nil {
		c.Pix32 = append([]uint32(nil), b.Pix32...)
	}
	return &c
}

func (b *Bitmap) validate() error {
	n := b.Width * b.Height
	switch b.Config {
	case ConfigRGB565:
		if b.Width < 0 || b.Height < 0 || len(b.Pix16) != n {
			return fmt.Errorf("%w: %dx%d with %d pixels", ErrBufferSize, b.Width, b.Height, len(b.Pix16))
		}
	case ConfigARGB8888:
		if b.Width < 0 || b.Height < 0 || len(b.Pix32) != n {
			return fmt.Errorf("%w: %dx%d with %d pixels", ErrBufferSize, b.Width, b.Height, len(b.Pix32))
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedConfig, b.Config)
	}
	return nil
}

// Options configures Apply.
type Options struct {
	// MaxRadius is the largest radius accepted.
	MaxRadius int

	// InPlace blurs the input bitmap instead of a copy.
	InPlace bool
}

// Option configures Apply.
type Option func(*Options)

// WithMaxRadius overrides MaxRadius.
func WithMaxRadius(n int) Option {
	return func(o *Options) {
		o.MaxRadius = n
	}
}

// InPlace blurs the input bitmap instead of a copy.
func InPlace() Option {
	return func(o *Options) {
		o.InPlace = true
	}
}

// Apply blurs b with the given radius and returns the result.
//
// Radius 0 returns b itself. Otherwise the blur runs on a copy of b unless
// InPlace is given, in which case b is modified and returned.
func Apply(b *Bitmap, radius int, opts ...Option) (*Bitmap, error) {
	o := Options{MaxRadius: MaxRadius}
	for _, opt := range opts {
		opt(&o)
	}

	limit := min(o.MaxRadius, MaxSafeRadius)
	if radius < 0 || radius > limit {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrRadiusOutOfRange, radius, limit)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	if radius == 0 {
		return b, nil
	}

	out := b
	if !o.InPlace {
		out = b.Clone()
	}
	switch out.Config {
	case ConfigRGB565:
		RGB565(out.Pix16, out.Width, out.Height, radius)
	case ConfigARGB8888:
		ARGB8888(out.Pix32, out.Width, out.Height, radius)
	}
	return out, nil
}

// FromImage converts img to an ARGB8888 bitmap. Color channels are stored
// non-premultiplied.
func FromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	b := &Bitmap{Width: w, Height: h, Config: ConfigARGB8888, Pix32: make([]uint32, w*h)}
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4]
			b.Pix32[y*w+x] = uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
		}
	}
	return b
}

// FromImageRGB565 converts img to an RGB565 bitmap. Alpha is dropped and
// each channel keeps its high 5 or 6 bits.
func FromImageRGB565(img image.Image) *Bitmap {
	argb := FromImage(img)
	b := &Bitmap{Width: argb.Width, Height: argb.Height, Config: ConfigRGB565, Pix16: make([]uint16, len(argb.Pix32))}
	for i, p := range argb.Pix32 {
		r, g, bl := p>>16&0xFF, p>>8&0xFF, p&0xFF
		b.Pix16[i] = uint16(r>>3<<11 | g>>2<<5 | bl>>3)
	}
	return b
}

// Image converts b to an NRGBA image. RGB565 pixels are expanded to 8 bits
// per channel and are fully opaque.
func (b *Bitmap) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := y*b.Width + x
			var c color.NRGBA
			switch b.Config {
			case ConfigRGB565:
				p := b.Pix16[i]
				c = color.NRGBA{
					R: uint8(p >> 11 << 3),
					G: uint8(p >> 5 & 0x3F << 2),
					B: uint8(p & 0x1F << 3),
					A: 0xFF,
				}
			case ConfigARGB8888:
				p := b.Pix32[i]
				c = color.NRGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: uint8(p >> 24)}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
