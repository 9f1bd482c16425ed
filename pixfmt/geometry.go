package pixfmt

// IsCompatible reports whether an image of the given size can be stored in
// format pf, addressed with planes 0 through lastPlane. Subsampled formats
// require even widths (and heights, where chroma is halved vertically), and
// lastPlane must be the format's last plane index.
func IsCompatible(pf PixelFormat, width, height, lastPlane uint32) bool {
	spec := pfSpecs[pf]
	return (width&widthEven(spec))|
		(height&heightEven(spec))|
		(lastPlane^lastPlaneIndex(spec)) == 0
}

// ArePlanesCompatible reports whether numPlanes is exactly the number of
// planes format pf stores.
func ArePlanesCompatible(pf PixelFormat, numPlanes uint32) bool {
	return (numPlanes-1)^lastPlaneIndex(pfSpecs[pf]) == 0
}

// EffectiveStrides resolves the stride of every plane slot. A slot whose
// entry in strides is StrideAuto, or which lies beyond len(strides), gets the
// minimal packed stride for the plane; absent planes get 0.
func EffectiveStrides(pf PixelFormat, width uint32, strides []int) [MaxNumberOfPlanes]int {
	var stride [MaxNumberOfPlanes]int

	bytes := int(byteCount(pfSpecs[pf]))
	spec := strideSpecs[pf]
	for i := range stride {
		if i < len(strides) && strides[i] != StrideAuto {
			stride[i] = strides[i]
			continue
		}
		stride[i] = planeDimension(width, spec, i) * bytes
	}
	return stride
}

// PlaneHeight returns the number of rows in plane of format pf for an image
// of the given height, or 0 if the format has no such plane.
func PlaneHeight(pf PixelFormat, height uint32, plane int) int {
	return planeDimension(height, heightSpecs[pf], plane)
}

// BuffersSize computes the number of bytes each plane needs.
//
// When lastPlane is 0 the planes are assumed to be laid out back to back in
// one buffer and the combined size is written to buffersSize[0]. Otherwise
// the size of every plane from 0 through lastPlane is written to the
// matching entry of buffersSize.
//
// strides holds per-plane overrides; StrideAuto entries are derived from
// width. BuffersSize returns false, leaving buffersSize untouched, when
// lastPlane is not below MaxNumberOfPlanes or either slice is too short to
// hold lastPlane+1 entries.
func BuffersSize(pf PixelFormat, width, height, lastPlane uint32, strides []int, buffersSize []int) bool {
	if lastPlane >= MaxNumberOfPlanes {
		return false
	}
	last := int(lastPlane)
	if last >= len(strides) || last >= len(buffersSize) {
		return false
	}

	stride := EffectiveStrides(pf, width, strides)
	spec := heightSpecs[pf]

	if last == 0 {
		buffersSize[0] = (stride[0]*planeDimension(height, spec, 0) +
			stride[1]*planeDimension(height, spec, 1)) +
			(stride[2]*planeDimension(height, spec, 2) +
				stride[3]*planeDimension(height, spec, 3))
		return true
	}

	for i := 0; i <= last; i++ {
		buffersSize[i] = stride[i] * planeDimension(height, spec, i)
	}
	return true
}
