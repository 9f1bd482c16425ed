package colorprim

import "fmt"

// Image is a frame held in memory together with its layout.
type Image struct {
	Width  uint32
	Height uint32
	Format ImageFormat

	// Strides holds one stride per buffer. nil means tightly packed.
	Strides []int

	// Planes holds Format.NumPlanes buffers.
	Planes [][]byte
}

// NewImage allocates an image of the given size and format. strides may be
// nil for tightly packed planes.
func NewImage(width, height uint32, format ImageFormat, strides []int) (*Image, error) {
	return newImage(width, height, format, strides, func(size int) ([]byte, error) {
		return make([]byte, size), nil
	})
}

func newImage(width, height uint32, format ImageFormat, strides []int, alloc func(int) ([]byte, error)) (*Image, error) {
	img := &Image{
		Width:   width,
		Height:  height,
		Format:  format,
		Strides: strides,
	}
	sizes, err := img.sizes()
	if err != nil {
		return nil, err
	}

	img.Planes = make([][]byte, len(sizes))
	for i, size := range sizes {
		buf, err := alloc(size)
		if err != nil {
			return nil, err
		}
		img.Planes[i] = buf
	}
	return img, nil
}

func (img *Image) sizes() ([]int, error) {
	if !img.Format.PixelFormat.Valid() {
		return nil, fmt.Errorf("%w: unknown pixel format %d", ErrInvalidValue, uint32(img.Format.PixelFormat))
	}
	n := img.Format.NumPlanes
	if n == 0 || n > img.Format.PixelFormat.NumPlanes() {
		return nil, fmt.Errorf("%w: %v cannot be stored in %d planes", ErrInvalidValue, img.Format.PixelFormat, n)
	}
	sizes := make([]int, n)
	if err := GetBuffersSize(img.Width, img.Height, &img.Format, img.Strides, sizes); err != nil {
		return nil, err
	}
	return sizes, nil
}

// Sizes returns the number of bytes each buffer of img needs, or nil if the
// image geometry is invalid.
func (img *Image) Sizes() []int {
	sizes, err := img.sizes()
	if err != nil {
		return nil
	}
	return sizes
}

// ConvertTo converts img into dst. Both images must have the same size.
func (img *Image) ConvertTo(dst *Image) error {
	if dst == nil {
		return fmt.Errorf("%w: nil destination image", ErrInvalidValue)
	}
	if img.Width != dst.Width || img.Height != dst.Height {
		return fmt.Errorf("%w: size mismatch %dx%d -> %dx%d",
			ErrInvalidValue, img.Width, img.Height, dst.Width, dst.Height)
	}
	return ConvertImage(img.Width, img.Height,
		&img.Format, img.Strides, img.Planes,
		&dst.Format, dst.Strides, dst.Planes)
}
