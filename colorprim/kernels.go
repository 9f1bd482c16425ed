package colorprim

import (
	"encoding/binary"

	"github.com/mrjoshuak/go-colorprim/pixfmt"
)

// packedLayout gives the byte offset of each channel within one pixel of an
// 8-bit packed format. a is -1 for formats without alpha.
type packedLayout struct {
	bpp        int
	r, g, b, a int
}

var packedLayouts = [pixfmt.NumPixelFormats]packedLayout{
	pixfmt.Argb: {bpp: 4, r: 1, g: 2, b: 3, a: 0},
	pixfmt.Bgra: {bpp: 4, r: 2, g: 1, b: 0, a: 3},
	pixfmt.Bgr:  {bpp: 3, r: 2, g: 1, b: 0, a: -1},
	pixfmt.Rgba: {bpp: 4, r: 0, g: 1, b: 2, a: 3},
	pixfmt.Rgb:  {bpp: 3, r: 0, g: 1, b: 2, a: -1},
}

func (l *packedLayout) load(row []byte, x int) (r, g, b int32) {
	p := row[x*l.bpp : x*l.bpp+l.bpp]
	return int32(p[l.r]), int32(p[l.g]), int32(p[l.b])
}

func (l *packedLayout) store(row []byte, x int, r, g, b int32) {
	p := row[x*l.bpp : x*l.bpp+l.bpp]
	p[l.r], p[l.g], p[l.b] = byte(r), byte(g), byte(b)
	if l.a >= 0 {
		p[l.a] = 0xff
	}
}

// convertRGBToYUV handles every 8-bit packed source into I444, I422, I420
// and NV12. Chroma is computed from the rounded mean of each subsampled block.
func convertRGBToYUV(c *conversion, y0, y1 int) {
	in := &packedLayouts[c.srcPF]
	m := &c.toYUV
	w := c.width
	rowBytes := w * in.bpp

	for y := y0; y < y1; y++ {
		src := c.src.row(0, y, rowBytes)
		luma := c.dst.row(0, y, w)
		for x := range luma {
			luma[x] = m.luma(in.load(src, x))
		}
	}

	sx, sy := c.dstPF.Subsampling()
	cw := w >> sx
	bw, bh := 1<<sx, 1<<sy
	shift := sx + sy
	round := int32(1<<shift) >> 1
	nv12 := c.dstPF == pixfmt.Nv12

	var block [2][]byte
	for y := y0; y < y1; y += bh {
		for dy := 0; dy < bh; dy++ {
			block[dy] = c.src.row(0, y+dy, rowBytes)
		}

		cy := y >> sy
		var uRow, vRow, uvRow []byte
		if nv12 {
			uvRow = c.dst.row(1, cy, 2*cw)
		} else {
			uRow = c.dst.row(1, cy, cw)
			vRow = c.dst.row(2, cy, cw)
		}

		for cx := 0; cx < cw; cx++ {
			var r, g, b int32
			for dy := 0; dy < bh; dy++ {
				for dx := 0; dx < bw; dx++ {
					pr, pg, pb := in.load(block[dy], cx<<sx+dx)
					r += pr
					g += pg
					b += pb
				}
			}
			u, v := m.chroma((r+round)>>shift, (g+round)>>shift, (b+round)>>shift)
			if nv12 {
				uvRow[2*cx] = u
				uvRow[2*cx+1] = v
			} else {
				uRow[cx] = u
				vRow[cx] = v
			}
		}
	}
}

// convertYUVToRGB handles 8-bit I444, I422, I420 and NV12 into BGRA.
func convertYUVToRGB(c *conversion, y0, y1 int) {
	out := &packedLayouts[c.dstPF]
	m := &c.toRGB
	w := c.width
	sx, sy := c.srcPF.Subsampling()
	cw := w >> sx
	nv12 := c.srcPF == pixfmt.Nv12

	for y := y0; y < y1; y++ {
		luma := c.src.row(0, y, w)
		dst := c.dst.row(0, y, w*out.bpp)

		cy := y >> sy
		var uRow, vRow, uvRow []byte
		if nv12 {
			uvRow = c.src.row(1, cy, 2*cw)
		} else {
			uRow = c.src.row(1, cy, cw)
			vRow = c.src.row(2, cy, cw)
		}

		for x := 0; x < w; x++ {
			cx := x >> sx
			var u, v int32
			if nv12 {
				u, v = int32(uvRow[2*cx]), int32(uvRow[2*cx+1])
			} else {
				u, v = int32(uRow[cx]), int32(vRow[cx])
			}
			r, g, b := m.rgb(int32(luma[x]), u, v)
			out.store(dst, x, r, g, b)
		}
	}
}

// sample10 reads the 10-bit sample at index i of a little-endian uint16 row.
func sample10(row []byte, i int) int32 {
	return int32(binary.LittleEndian.Uint16(row[2*i:]) & 0x3ff)
}

// yuv16Rows returns the luma and chroma rows of a 16-bit planar source that
// cover image row y.
func yuv16Rows(c *conversion, y int) (luma, u, v []byte) {
	sx, sy := c.srcPF.Subsampling()
	cw := c.width >> sx
	cy := y >> sy
	return c.src.row(0, y, 2*c.width), c.src.row(1, cy, 2*cw), c.src.row(2, cy, 2*cw)
}

// convertYUV16ToRGB handles P410 and P010 into 8-bit BGRA.
func convertYUV16ToRGB(c *conversion, y0, y1 int) {
	out := &packedLayouts[c.dstPF]
	m := &c.toRGB
	w := c.width
	sx, _ := c.srcPF.Subsampling()

	for y := y0; y < y1; y++ {
		luma, uRow, vRow := yuv16Rows(c, y)
		dst := c.dst.row(0, y, w*out.bpp)
		for x := 0; x < w; x++ {
			cx := x >> sx
			r, g, b := m.rgb(sample10(luma, x), sample10(uRow, cx), sample10(vRow, cx))
			out.store(dst, x, r, g, b)
		}
	}
}

// convertYUV16ToRGB30 handles P410 and P010 into BGRA30 and RGBA30. Alpha is
// always 3.
func convertYUV16ToRGB30(c *conversion, y0, y1 int) {
	m := &c.toRGB
	w := c.width
	sx, _ := c.srcPF.Subsampling()
	swap := c.dstPF == pixfmt.Bgra30

	for y := y0; y < y1; y++ {
		luma, uRow, vRow := yuv16Rows(c, y)
		dst := c.dst.row(0, y, 4*w)
		for x := 0; x < w; x++ {
			cx := x >> sx
			r, g, b := m.rgb(sample10(luma, x), sample10(uRow, cx), sample10(vRow, cx))
			if swap {
				r, b = b, r
			}
			binary.LittleEndian.PutUint32(dst[4*x:], 3<<30|uint32(b)<<20|uint32(g)<<10|uint32(r))
		}
	}
}

// convertPacked reorders channels between 8-bit packed formats. Alpha is
// dropped or set to 255 as the destination requires.
func convertPacked(c *conversion, y0, y1 int) {
	in := &packedLayouts[c.srcPF]
	out := &packedLayouts[c.dstPF]
	w := c.width

	for y := y0; y < y1; y++ {
		src := c.src.row(0, y, w*in.bpp)
		dst := c.dst.row(0, y, w*out.bpp)
		for x := 0; x < w; x++ {
			r, g, b := in.load(src, x)
			out.store(dst, x, r, g, b)
		}
	}
}
