// internal/swatch/swatch.go
package swatch

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/tendant/simple-paintmixer/internal/mixer"
)

// Base is the colour of the undyed paint that makes up the rest of the can.
var Base = color.NRGBA{R: 245, G: 245, B: 240, A: 255}

// Pigments maps each dye to the colour it contributes at full strength.
var Pigments = map[mixer.Dye]color.NRGBA{
	mixer.Red:    {R: 200, G: 16, B: 46, A: 255},
	mixer.Black:  {R: 20, G: 20, B: 20, A: 255},
	mixer.White:  {R: 250, G: 250, B: 250, A: 255},
	mixer.Yellow: {R: 255, G: 210, B: 0, A: 255},
	mixer.Blue:   {R: 0, G: 71, B: 171, A: 255},
	mixer.Green:  {R: 0, G: 128, B: 64, A: 255},
}

// Color averages the pigments weighted by their percentage. Whatever is left
// below 100% is filled with Base.
func Color(dyes mixer.Amounts) color.NRGBA {
	var r, g, b, total int
	for d, amount := range dyes {
		p, ok := Pigments[d]
		if !ok || amount <= 0 {
			continue
		}
		r += int(p.R) * amount
		g += int(p.G) * amount
		b += int(p.B) * amount
		total += amount
	}
	if rest := mixer.MaxTotal - total; rest > 0 {
		r += int(Base.R) * rest
		g += int(Base.G) * rest
		b += int(Base.B) * rest
		total += rest
	}
	return color.NRGBA{
		R: uint8((r + total/2) / total),
		G: uint8((g + total/2) / total),
		B: uint8((b + total/2) / total),
		A: 255,
	}
}

// Render returns a size x size image filled with the mixed colour.
func Render(dyes mixer.Amounts, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid swatch size %d", size)
	}
	return imaging.New(size, size, Color(dyes)), nil
}

// WritePNG renders the swatch and encodes it to w.
func WritePNG(w io.Writer, dyes mixer.Amounts, size int) error {
	img, err := Render(dyes, size)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Save decodes an image from r and writes it to dstPath, picking the format
// from the file extension. Missing directories are created.
func Save(r io.Reader, dstPath string) error {
	img, err := imaging.Decode(r)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := imaging.Save(img, dstPath); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
