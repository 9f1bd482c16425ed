package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrjoshuak/go-colorprim/pixfmt"
	"github.com/mrjoshuak/go-colorprim/yuvfile"
)

// ValidationIssue represents a single validation problem found in a file.
type ValidationIssue struct {
	Severity string // "error" or "warning"
	Message  string
}

// ValidationResult contains the description and validation results for a
// file.
type ValidationResult struct {
	Filename string
	Header   *yuvfile.Header
	Sizes    []int
	Stored   int64
	Issues   []ValidationIssue
	Checks   []string
}

// IsValid returns true if there are no errors (warnings are ok).
func (r *ValidationResult) IsValid() bool {
	return !r.HasErrors()
}

// HasErrors returns true if there are any error-level issues.
func (r *ValidationResult) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}

func (r *ValidationResult) addErrorf(format string, args ...any) {
	r.Issues = append(r.Issues, ValidationIssue{Severity: "error", Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarningf(format string, args ...any) {
	r.Issues = append(r.Issues, ValidationIssue{Severity: "warning", Message: fmt.Sprintf(format, args...)})
}

// validateFile reads a whole container and reports what it finds.
func validateFile(filename string, strict bool) (*ValidationResult, error) {
	result := &ValidationResult{Filename: filename}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	result.Stored = stat.Size()

	const maxFileSize = yuvfile.MaxRawSize + 64<<20
	if stat.Size() > maxFileSize {
		result.Checks = append(result.Checks, "file size")
		result.addErrorf("file too large for validation (%d bytes, max %d)", stat.Size(), int64(maxFileSize))
		return result, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	validateData(data, result, strict)
	return result, nil
}

// validateData runs every check on an in-memory container.
func validateData(data []byte, result *ValidationResult, strict bool) {
	result.Checks = append(result.Checks, "header")
	r := bytes.NewReader(data)
	h, err := yuvfile.ReadHeader(r)
	if err != nil {
		switch {
		case errors.Is(err, yuvfile.ErrInvalidMagic):
			result.addErrorf("invalid magic number, expected %q", yuvfile.Magic)
		case errors.Is(err, yuvfile.ErrUnsupportedVersion):
			result.addErrorf("unsupported version (only version %d is supported)", yuvfile.Version)
		default:
			result.addErrorf("invalid header: %v", err)
		}
		return
	}
	result.Header = h
	headerSize := len(data) - r.Len()

	result.Checks = append(result.Checks, "geometry")
	sizes, err := h.PlaneSizes()
	if err != nil {
		result.addErrorf("plane sizes: %v", err)
		return
	}
	result.Sizes = sizes

	result.Checks = append(result.Checks, "payload")
	if _, err := yuvfile.Read(bytes.NewReader(data)); err != nil {
		result.addErrorf("payload: %v", err)
		return
	}

	if trailing := len(data) - headerSize - int(h.PayloadSize); trailing > 0 {
		if strict {
			result.addErrorf("%d bytes of trailing data after the payload", trailing)
		} else {
			result.addWarningf("%d bytes of trailing data after the payload", trailing)
		}
	}

	if strict {
		result.Checks = append(result.Checks, "strides")
		packed := pixfmt.EffectiveStrides(h.Format.PixelFormat, h.Width, nil)
		for i, s := range h.Strides {
			if s != pixfmt.StrideAuto && s == packed[i] {
				result.addWarningf("plane %d stores packed stride %d explicitly", i, s)
			}
		}
	}
}

func printResult(w io.Writer, result *ValidationResult) {
	if result.IsValid() {
		fmt.Fprintf(w, "%s: OK\n", result.Filename)
	} else {
		fmt.Fprintf(w, "%s: INVALID\n", result.Filename)
	}

	if h := result.Header; h != nil {
		fmt.Fprintf(w, "  format:      %v\n", h.Format.PixelFormat)
		fmt.Fprintf(w, "  color space: %v\n", h.Format.ColorSpace)
		fmt.Fprintf(w, "  size:        %dx%d\n", h.Width, h.Height)
		fmt.Fprintf(w, "  buffers:     %d\n", h.Format.NumPlanes)
		fmt.Fprintf(w, "  compression: %v\n", h.Compression)

		strides := make([]string, len(h.Strides))
		for i, s := range h.Strides {
			if s == pixfmt.StrideAuto {
				strides[i] = "packed"
			} else {
				strides[i] = fmt.Sprint(s)
			}
		}
		fmt.Fprintf(w, "  strides:     %s\n", strings.Join(strides, ", "))

		if result.Sizes != nil {
			total := 0
			for i, s := range result.Sizes {
				fmt.Fprintf(w, "  buffer %d:    %d bytes\n", i, s)
				total += s
			}
			fmt.Fprintf(w, "  payload:     %d bytes stored, %d bytes raw", h.PayloadSize, total)
			if h.PayloadSize > 0 {
				fmt.Fprintf(w, " (%.2fx)", float64(total)/float64(h.PayloadSize))
			}
			fmt.Fprintln(w)
		}
	}

	for _, issue := range result.Issues {
		fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(issue.Severity), issue.Message)
	}
	if len(result.Issues) > 0 {
		fmt.Fprintf(w, "  Checks performed: %s\n", strings.Join(result.Checks, ", "))
	}
}
