// Package filter rearranges plane data before general purpose compression.
//
// Samples wider than one byte are split by byte position, so all low bytes
// are stored before all high bytes. For packed pixels the same split groups
// each channel together. The result is then delta coded byte by byte:
//
//	samples: [a0 a1 b0 b1 c0 c1]
//	split:   [a0 b0 c0 a1 b1 c1]
//	delta:   [a0 b0-a0 c0-b0 a1-c0 b1-a1 c1-b1]
//
// Smooth images turn into long runs of small values that compress far
// better than the raw planes.
package filter

// Split groups the bytes of size-byte samples by position within the sample.
// Trailing bytes that do not form a whole sample are copied unchanged. dst
// must be at least len(src) bytes.
func Split(dst, src []byte, size int) {
	if size <= 1 {
		copy(dst, src)
		return
	}
	n := len(src) / size
	for off := 0; off < size; off++ {
		out := dst[off*n : (off+1)*n]
		for i := range out {
			out[i] = src[i*size+off]
		}
	}
	copy(dst[n*size:], src[n*size:])
}

// Join reverses Split.
func Join(dst, src []byte, size int) {
	if size <= 1 {
		copy(dst, src)
		return
	}
	n := len(src) / size
	for off := 0; off < size; off++ {
		in := src[off*n : (off+1)*n]
		for i, b := range in {
			dst[i*size+off] = b
		}
	}
	copy(dst[n*size:], src[n*size:])
}

// Delta replaces every byte but the first with its difference from the
// previous byte, in place.
func Delta(data []byte) {
	i := len(data) - 1
	for ; i >= 8; i -= 8 {
		data[i] -= data[i-1]
		data[i-1] -= data[i-2]
		data[i-2] -= data[i-3]
		data[i-3] -= data[i-4]
		data[i-4] -= data[i-5]
		data[i-5] -= data[i-6]
		data[i-6] -= data[i-7]
		data[i-7] -= data[i-8]
	}
	for ; i >= 1; i-- {
		data[i] -= data[i-1]
	}
}

// Undelta reverses Delta in place.
func Undelta(data []byte) {
	n := len(data)
	i := 1
	for ; i+7 < n; i += 8 {
		data[i] += data[i-1]
		data[i+1] += data[i]
		data[i+2] += data[i+1]
		data[i+3] += data[i+2]
		data[i+4] += data[i+3]
		data[i+5] += data[i+4]
		data[i+6] += data[i+5]
		data[i+7] += data[i+6]
	}
	for ; i < n; i++ {
		data[i] += data[i-1]
	}
}

// Encode returns a filtered copy of src for samples of the given byte size.
func Encode(src []byte, size int) []byte {
	out := make([]byte, len(src))
	Split(out, src, size)
	Delta(out)
	return out
}

// Decode reverses Encode. data is modified; the result may share its
// memory.
func Decode(data []byte, size int) []byte {
	Undelta(data)
	if size <= 1 {
		return data
	}
	out := make([]byte, len(data))
	Join(out, data, size)
	return out
}
