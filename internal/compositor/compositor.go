package compositor

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/h2non/filetype"
	xdraw "golang.org/x/image/draw"

	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

// Compositor produces the final artwork by placing a customer logo into a
// template's placeholder rectangle. All operations are deterministic: the
// same inputs always produce the same output bytes, so previews are
// reproducible.
type Compositor struct {
	maxInputBytes int64
}

// New creates a compositor with the input size ceiling shared with file
// upload validation.
func New(maxInputBytes int64) *Compositor {
	return &Compositor{maxInputBytes: maxInputBytes}
}

// ApplyLogo decodes the template source and the logo, resizes the logo to
// the placeholder (fit-within preserving aspect ratio unless stretch is
// requested), centers it and composites it over the source using the
// logo's alpha channel. The output dimensions equal the template source
// dimensions.
func (c *Compositor) ApplyLogo(templateData, logoData []byte, rect models.PlaceholderRect, stretch bool) (*image.RGBA, error) {
	templateImg, err := c.decode(templateData)
	if err != nil {
		return nil, err
	}
	logoImg, err := c.decode(logoData)
	if err != nil {
		return nil, err
	}

	bounds := templateImg.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, templateImg, bounds.Min, draw.Src)

	// Cover the placeholder marker before pasting the logo.
	placeholder := image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height).
		Add(bounds.Min).
		Intersect(bounds)
	draw.Draw(out, placeholder, image.NewUniform(color.White), image.Point{}, draw.Src)

	target := fitRect(logoImg.Bounds(), rect, stretch).Add(bounds.Min)
	xdraw.CatmullRom.Scale(out, target, logoImg, logoImg.Bounds(), xdraw.Over, nil)

	return out, nil
}

// Thumbnail downsizes img so that neither side exceeds maxSide, preserving
// aspect ratio. Smaller images are returned unscaled.
func (c *Compositor) Thumbnail(img image.Image, maxSide int) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w <= maxSide && h <= maxSide {
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
		return out
	}

	nw, nh := w, h
	if w >= h {
		nw = maxSide
		nh = h * maxSide / w
	} else {
		nh = maxSide
		nw = w * maxSide / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, bounds, xdraw.Src, nil)
	return out
}

// EncodePNG serializes the composited image.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "png encode failed")
	}
	return buf.Bytes(), nil
}

// decode rejects oversized or non-raster input before attempting a full
// decode.
func (c *Compositor) decode(data []byte) (image.Image, error) {
	if int64(len(data)) > c.maxInputBytes {
		return nil, apperror.Newf(apperror.ErrCodeImageTooLarge,
			"image exceeds the %d byte limit", c.maxInputBytes)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, apperror.New(apperror.ErrCodeUnsupportedImageFormat, "unrecognized image data")
	}
	switch kind.Extension {
	case "png", "jpg", "gif":
	default:
		return nil, apperror.Newf(apperror.ErrCodeUnsupportedImageFormat,
			"image format %q is not supported", kind.Extension)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnsupportedImageFormat, "image decode failed")
	}
	return img, nil
}

// fitRect computes the target rectangle for the logo inside the
// placeholder. Fit-within scales to the largest size fully contained in
// the placeholder and centers the result; stretch fills it edge to edge.
func fitRect(logo image.Rectangle, rect models.PlaceholderRect, stretch bool) image.Rectangle {
	if stretch {
		return image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height)
	}

	lw, lh := logo.Dx(), logo.Dy()
	nw, nh := rect.Width, rect.Height
	if lw*rect.Height > lh*rect.Width {
		// Logo is proportionally wider than the placeholder.
		nh = lh * rect.Width / lw
	} else {
		nw = lw * rect.Height / lh
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	x := rect.X + (rect.Width-nw)/2
	y := rect.Y + (rect.Height-nh)/2
	return image.Rect(x, y, x+nw, y+nh)
}
