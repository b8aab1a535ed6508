// Package signing processes signature artifacts arriving from the capture
// collaborator. Artifacts are base64 data URLs drawn on a canvas; the package
// validates they contain actual ink, bounds their size, and normalizes the
// encoding before the engine stores them on an issue.
package signing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height for stored signatures.
const MaxDimension = 640

// ErrBlank is returned when the decoded image contains no visible strokes.
var ErrBlank = errors.New("signature image is blank")

// allowedMIME lists the accepted decoded image types.
var allowedMIME = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// Process validates and normalizes a signature data URL. The actual image
// type is sniffed from the decoded bytes (client-declared MIME is not
// trusted), blank canvases are rejected, oversized images are downscaled,
// and the result is re-encoded as a PNG data URL.
func Process(dataURL string) (string, error) {
	raw, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	detected := http.DetectContentType(raw)
	if !allowedMIME[detected] {
		return "", fmt.Errorf("unsupported signature format: %s (only PNG and JPEG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decoding signature image: %w", err)
	}

	if isBlank(img) {
		return "", ErrBlank
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding signature PNG: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeDataURL extracts the payload from a "data:<mime>;base64,<data>" URL.
// Bare base64 without the prefix is accepted as well.
func decodeDataURL(dataURL string) ([]byte, error) {
	payload := strings.TrimSpace(dataURL)
	if payload == "" {
		return nil, ErrBlank
	}

	if strings.HasPrefix(payload, "data:") {
		_, rest, found := strings.Cut(payload, ",")
		if !found {
			return nil, fmt.Errorf("malformed data URL")
		}
		payload = rest
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrBlank
	}
	return raw, nil
}

// isBlank reports whether every sampled pixel is transparent or near-white,
// i.e. the canvas was submitted without any strokes. Sampling is strided to
// bound the cost on large canvases.
func isBlank(img image.Image) bool {
	bounds := img.Bounds()

	stride := (bounds.Dx() + bounds.Dy()) / 512
	if stride < 1 {
		stride = 1
	}

	const white = 0xF000
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			if r < white || g < white || b < white {
				return false
			}
		}
	}
	return true
}

// downscale resizes the image so neither dimension exceeds maxDim, preserving
// aspect ratio with Catmull-Rom interpolation. Returns the original image if
// already within bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
