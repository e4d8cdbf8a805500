package surface

import (
	"fmt"
	"image"
)

// OpKind names a recorded drawing call.
type OpKind string

const (
	OpFillRect    OpKind = "fill_rect"
	OpFillPath    OpKind = "fill_path"
	OpStrokeLine  OpKind = "stroke_line"
	OpReadPixels  OpKind = "read_pixels"
	OpWritePixels OpKind = "write_pixels"
	OpDrawSelf    OpKind = "draw_self"
)

// Op is one recorded call together with the glow state it ran under.
type Op struct {
	Kind     OpKind
	Rect     Rect // FillRect area, DrawSelf destination
	Src      Rect // DrawSelf source
	Path     *Path
	Paint    Paint
	Color    Color // StrokeLine color
	Width    float64
	Alpha    float64
	Glow     Color
	GlowBlur float64
}

// Recorder is a Surface that only records calls. The pixel buffer is kept
// so read/write round trips behave like a real surface.
type Recorder struct {
	width, height int
	pix           []byte
	glow          Color
	glowBlur      float64

	Ops []Op

	// FailOn makes the first call of that kind return an error.
	FailOn OpKind
}

// NewRecorder creates a recording surface.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{
		width:  width,
		height: height,
		pix:    make([]byte, width*height*4),
	}
}

func (r *Recorder) record(op Op) error {
	op.Glow = r.glow
	op.GlowBlur = r.glowBlur
	r.Ops = append(r.Ops, op)
	if r.FailOn != "" && r.FailOn == op.Kind {
		r.FailOn = ""
		return fmt.Errorf("recorder: injected failure on %s", op.Kind)
	}
	return nil
}

func (r *Recorder) Width() int  { return r.width }
func (r *Recorder) Height() int { return r.height }

func (r *Recorder) FillRect(x, y, w, h float64, p Paint) error {
	if err := finite(x, y, w, h); err != nil {
		return err
	}
	return r.record(Op{Kind: OpFillRect, Rect: Rect{X: x, Y: y, W: w, H: h}, Paint: p})
}

func (r *Recorder) FillPath(path *Path, p Paint) error {
	if err := path.validate(); err != nil {
		return err
	}
	return r.record(Op{Kind: OpFillPath, Path: path, Paint: p})
}

func (r *Recorder) StrokeLine(x1, y1, x2, y2, width float64, c Color) error {
	if err := finite(x1, y1, x2, y2, width); err != nil {
		return err
	}
	return r.record(Op{Kind: OpStrokeLine, Path: linePath(x1, y1, x2, y2), Width: width, Color: c})
}

func (r *Recorder) ReadPixels() ([]byte, error) {
	if err := r.record(Op{Kind: OpReadPixels}); err != nil {
		return nil, err
	}
	out := make([]byte, len(r.pix))
	copy(out, r.pix)
	return out, nil
}

func (r *Recorder) WritePixels(pix []byte) error {
	if len(pix) != len(r.pix) {
		return fmt.Errorf("%w: buffer has %d bytes, want %d", ErrInvalidDimensions, len(pix), len(r.pix))
	}
	if err := r.record(Op{Kind: OpWritePixels}); err != nil {
		return err
	}
	copy(r.pix, pix)
	return nil
}

func (r *Recorder) DrawSelf(src, dst Rect, alpha float64) error {
	if err := finite(src.X, src.Y, src.W, src.H, dst.X, dst.Y, dst.W, dst.H, alpha); err != nil {
		return err
	}
	return r.record(Op{Kind: OpDrawSelf, Src: src, Rect: dst, Alpha: alpha})
}

func (r *Recorder) SetGlow(c Color, blur float64) {
	r.glow = c
	r.glowBlur = blur
}

func (r *Recorder) Glow() (Color, float64) {
	return r.glow, r.glowBlur
}

func (r *Recorder) Image() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.pix)
	return img
}

// Count returns the number of recorded ops of the given kind.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
