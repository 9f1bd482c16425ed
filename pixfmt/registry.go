package pixfmt

// Format descriptor layout:
//
//	bits 0-1  index of the last plane (plane count - 1)
//	bit  2    width must be even
//	bit  3    height must be even
//	bits 4+   bytes per sample
//
// Plane descriptor layout (stride and height tables): four 6-bit fields,
// plane 0 in the low bits. A field holds the right shift applied to the
// image dimension for that plane, or notPresent when the plane does not
// exist.
const (
	planeFieldBits = 6
	planeFieldMask = 1<<planeFieldBits - 1

	// notPresent marks a plane slot the format does not use. It must never
	// be used as a shift amount.
	notPresent = 32
)

func makePFSpec(lastPlane, width, height, byteCount uint32) uint32 {
	return byteCount<<4 | height<<3 | width<<2 | lastPlane
}

func makePlaneSpec(plane0, plane1, plane2, plane3 uint32) uint32 {
	return plane3<<(3*planeFieldBits) | plane2<<(2*planeFieldBits) | plane1<<planeFieldBits | plane0
}

const np = notPresent

var pfSpecs = [NumPixelFormats]uint32{
	Argb:   makePFSpec(0, 0, 0, 4),
	Bgra:   makePFSpec(0, 0, 0, 4),
	Bgr:    makePFSpec(0, 0, 0, 3),
	Rgba:   makePFSpec(0, 0, 0, 4),
	Rgb:    makePFSpec(0, 0, 0, 3),
	Bgra30: makePFSpec(0, 0, 0, 4),
	Rgba30: makePFSpec(0, 0, 0, 4),
	I444:   makePFSpec(2, 0, 0, 1),
	I422:   makePFSpec(2, 1, 0, 1),
	I420:   makePFSpec(2, 1, 1, 1),
	Nv12:   makePFSpec(1, 1, 1, 1),
	P410:   makePFSpec(2, 0, 0, 2),
	P010:   makePFSpec(2, 1, 1, 2),
}

var strideSpecs = [NumPixelFormats]uint32{
	Argb:   makePlaneSpec(0, np, np, np),
	Bgra:   makePlaneSpec(0, np, np, np),
	Bgr:    makePlaneSpec(0, np, np, np),
	Rgba:   makePlaneSpec(0, np, np, np),
	Rgb:    makePlaneSpec(0, np, np, np),
	Bgra30: makePlaneSpec(0, np, np, np),
	Rgba30: makePlaneSpec(0, np, np, np),
	I444:   makePlaneSpec(0, 0, 0, np),
	I422:   makePlaneSpec(0, 1, 1, np),
	I420:   makePlaneSpec(0, 1, 1, np),
	Nv12:   makePlaneSpec(0, 0, np, np), // UV row holds width/2 pairs
	P410:   makePlaneSpec(0, 0, 0, np),
	P010:   makePlaneSpec(0, 1, 1, np),
}

var heightSpecs = [NumPixelFormats]uint32{
	Argb:   makePlaneSpec(0, np, np, np),
	Bgra:   makePlaneSpec(0, np, np, np),
	Bgr:    makePlaneSpec(0, np, np, np),
	Rgba:   makePlaneSpec(0, np, np, np),
	Rgb:    makePlaneSpec(0, np, np, np),
	Bgra30: makePlaneSpec(0, np, np, np),
	Rgba30: makePlaneSpec(0, np, np, np),
	I444:   makePlaneSpec(0, 0, 0, np),
	I422:   makePlaneSpec(0, 0, 0, np),
	I420:   makePlaneSpec(0, 1, 1, np),
	Nv12:   makePlaneSpec(0, 1, np, np),
	P410:   makePlaneSpec(0, 0, 0, np),
	P010:   makePlaneSpec(0, 1, 1, np),
}

func widthEven(spec uint32) uint32 {
	return (spec >> 2) & 1
}

func heightEven(spec uint32) uint32 {
	return (spec >> 3) & 1
}

func byteCount(spec uint32) uint32 {
	return spec >> 4
}

func lastPlaneIndex(spec uint32) uint32 {
	return spec & 3
}

func planeValue(spec uint32, plane int) uint32 {
	return (spec >> (planeFieldBits * uint(plane))) & planeFieldMask
}

func planePresent(spec uint32, plane int) bool {
	return planeValue(spec, plane) != notPresent
}

// planeDimension scales dim by the shift stored for plane. Absent planes
// have no extent.
func planeDimension(dim, spec uint32, plane int) int {
	shift := planeValue(spec, plane)
	if shift == notPresent {
		return 0
	}
	return int(dim >> shift)
}
