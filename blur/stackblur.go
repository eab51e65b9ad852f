// Package blur implements the stack blur approximation of a Gaussian blur over
// packed RGB565 and ARGB8888 pixel buffers.
//
// Stack blur runs a horizontal and a vertical pass. Each output pixel is the
// weighted mean of the 2r+1 pixels around it, with weights rising linearly
// to the center (1, 2, ..., r+1, ..., 2, 1). Edge pixels are repeated past
// the image bounds. The work per pixel does not depend on the radius.
//
// RGB565 and ARGB8888 mutate their buffer in place and have no error channel:
// the buffer must hold w*h pixels and the radius must be at most
// MaxSafeRadius. Apply adds validation and copy semantics on top for callers
// that hold a Bitmap.
package blur

// MaxSafeRadius is the largest radius whose weighted channel sums,
// 255*(radius+1)^2 at most, fit an int32.
const MaxSafeRadius = 2901

// RGB565 blurs a w*h buffer of RGB565 pixels in place. A radius <= 0 leaves
// the buffer unchanged.
func RGB565(pix []uint16, w, h, radius int) {
	if radius <= 0 || w <= 0 || h <= 0 {
		return
	}
	n := w * h
	planes := newPlanes(n)
	for i, p := range pix[:n] {
		planes[0][i] = int32(p&0xF800) >> 11 << 3
		planes[1][i] = int32(p&0x07E0) >> 5 << 2
		planes[2][i] = int32(p&0x001F) << 3
	}

	blurPlanes(planes, w, h, radius)

	for i := range pix[:n] {
		r, g, b := planes[0][i], planes[1][i], planes[2][i]
		pix[i] = uint16(r>>3<<11 | g>>2<<5 | b>>3)
	}
}

// ARGB8888 blurs a w*h buffer of ARGB8888 pixels in place. The alpha channel
// is left untouched. A radius <= 0 leaves the buffer unchanged.
func ARGB8888(pix []uint32, w, h, radius int) {
	if radius <= 0 || w <= 0 || h <= 0 {
		return
	}
	n := w * h
	planes := newPlanes(n)
	for i, p := range pix[:n] {
		planes[0][i] = int32(p >> 16 & 0xFF)
		planes[1][i] = int32(p >> 8 & 0xFF)
		planes[2][i] = int32(p & 0xFF)
	}

	blurPlanes(planes, w, h, radius)

	for i, p := range pix[:n] {
		r, g, b := uint32(planes[0][i]), uint32(planes[1][i]), uint32(planes[2][i])
		pix[i] = p&0xFF000000 | r<<16 | g<<8 | b
	}
}

// planes holds one int32 per pixel for each of red, green and blue.
type planes [3][]int32

func newPlanes(n int) planes {
	var p planes
	for c := range p {
		p[c] = make([]int32, n)
	}
	return p
}

// blurPlanes runs the horizontal pass into a scratch plane and the vertical
// pass back into p.
func blurPlanes(p planes, w, h, radius int) {
	scratch := make([]int32, w*h)
	stack := make([]int32, 2*radius+1)
	for c := range p {
		// Rows: w samples per line, lines w apart.
		blurPass(p[c], scratch, h, w, w, 1, radius, stack)
		// Columns: h samples per line, samples w apart.
		blurPass(scratch, p[c], w, h, 1, w, radius, stack)
	}
}

// blurPass blurs lines of length samples from src into dst. Line l starts at
// l*lineStride and its samples are step apart. sum peaks at
// 255*(radius+1)^2, so radius must not exceed MaxSafeRadius.
func blurPass(src, dst []int32, lines, length, lineStride, step, radius int, stack []int32) {
	div := 2*radius + 1
	divSum := int32((radius + 1) * (radius + 1))
	last := length - 1

	for l := 0; l < lines; l++ {
		base := l * lineStride
		at := func(k int) int32 { return src[base+k*step] }

		var sum, inSum, outSum int32
		for i := -radius; i <= radius; i++ {
			v := at(min(last, max(i, 0)))
			stack[i+radius] = v
			sum += v * int32(radius+1-abs(i))
			if i > 0 {
				inSum += v
			} else {
				outSum += v
			}
		}

		sp := radius
		for k := 0; k < length; k++ {
			dst[base+k*step] = sum / divSum

			// Drop the oldest sample and pull in the next one from the right.
			sum -= outSum
			start := (sp - radius + div) % div
			outSum -= stack[start]

			v := at(min(k+radius+1, last))
			stack[start] = v
			inSum += v
			sum += inSum

			// The sample now at the center moves from the incoming half to
			// the outgoing half.
			sp = (sp + 1) % div
			v = stack[sp]
			outSum += v
			inSum -= v
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
