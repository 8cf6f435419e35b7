package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"brandcast/pkg/logger"
	"brandcast/services/campaign/internal/entity"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	Width      = 1080
	Height     = 1350
	MimeType   = "image/png"
	FontSize   = 64
	LineHeight = 100

	borderInset     = 40
	borderThickness = 16
	sideMargin      = 40
)

// Producer renders content templates into PNG posters.
type Producer struct {
	font   *opentype.Font
	logger *logger.Logger
}

func NewProducer(log *logger.Logger) (*Producer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse font: %v", entity.ErrRender, err)
	}
	return &Producer{font: f, logger: log}, nil
}

func (p *Producer) Produce(ctx context.Context, tmpl entity.ContentTemplate) (*entity.RenderedAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bg, ok := ParseHexOr(tmpl.Background, DefaultBackground)
	if !ok {
		p.warn("[RENDER] Invalid background colour %q, using default", tmpl.Background)
	}
	fg, ok := ParseHexOr(tmpl.Foreground, DefaultForeground)
	if !ok {
		p.warn("[RENDER] Invalid text colour %q, using default", tmpl.Foreground)
	}

	// Faces cache glyphs and are not safe for concurrent use, so one per render.
	face, err := opentype.NewFace(p.font, &opentype.FaceOptions{
		Size:    FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create font face: %v", entity.ErrRender, err)
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if tmpl.Style == entity.StyleBorder {
		drawBorder(img, fg)
	}

	drawLines(img, face, fg, strings.Split(tmpl.Text, "\n"))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: failed to encode png: %v", entity.ErrRender, err)
	}

	return &entity.RenderedAsset{
		Bytes:    buf.Bytes(),
		MimeType: MimeType,
		Width:    Width,
		Height:   Height,
	}, nil
}

func (p *Producer) warn(format string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(format, args...)
	}
}

func drawLines(img *image.RGBA, face font.Face, fg color.Color, lines []string) {
	metrics := face.Metrics()
	glyphHeight := (metrics.Ascent + metrics.Descent).Ceil()

	startY := (Height - len(lines)*LineHeight) / 2
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
	}

	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		width := d.MeasureString(line).Ceil()
		x := (Width - width) / 2
		if x < sideMargin {
			x = sideMargin
		}
		top := startY + i*LineHeight + (LineHeight-glyphHeight)/2
		d.Dot = fixed.P(x, top+metrics.Ascent.Ceil())
		d.DrawString(line)
	}
}

func drawBorder(img *image.RGBA, c color.Color) {
	src := image.NewUniform(c)
	outer := image.Rect(borderInset, borderInset, Width-borderInset, Height-borderInset)
	edges := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+borderThickness),
		image.Rect(outer.Min.X, outer.Max.Y-borderThickness, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+borderThickness, outer.Max.Y),
		image.Rect(outer.Max.X-borderThickness, outer.Min.Y, outer.Max.X, outer.Max.Y),
	}
	for _, r := range edges {
		draw.Draw(img, r, src, image.Point{}, draw.Src)
	}
}
