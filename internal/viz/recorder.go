package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var ErrNoFrames = errors.New("viz: no frames recorded")

// Recorder turns canvas snapshots into an animated GIF. Each braille dot
// becomes a block of pixels in its cell's pen colour.
type Recorder struct {
	CharW, CharH int
	Delay        int // hundredths of a second per frame
	MaxFrames    int

	palette color.Palette
	frames  []*image.Paletted
}

func NewRecorder(palette []lipgloss.Color, fps int) *Recorder {
	delay := 2
	if fps > 0 {
		delay = max(1, 100/fps)
	}
	r := &Recorder{CharW: 8, CharH: 16, Delay: delay, MaxFrames: 1800}
	r.SetPalette(palette)
	return r
}

// SetPalette sets the colour for each pen; index 0 is the background.
func (r *Recorder) SetPalette(palette []lipgloss.Color) {
	r.palette = make(color.Palette, 0, len(palette))
	for _, c := range palette {
		r.palette = append(r.palette, rgba(c))
	}
	if len(r.palette) < 2 {
		r.palette = color.Palette{color.Black, color.White}
	}
}

func (r *Recorder) Len() int { return len(r.frames) }

// Capture rasterises the canvas. Frames past MaxFrames are dropped.
func (r *Recorder) Capture(c *Canvas) {
	if r.MaxFrames > 0 && len(r.frames) >= r.MaxFrames {
		return
	}

	imgW, imgH := c.Width*r.CharW, c.Height*r.CharH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), r.palette)
	dotW, dotH := r.CharW/2, r.CharH/4

	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			if c.Grid[row][col] == blank {
				continue
			}
			idx := uint8(c.Ink[row][col])
			if int(idx) >= len(r.palette) {
				idx = uint8(len(r.palette) - 1)
			}
			baseX, baseY := col*r.CharW, row*r.CharH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if !c.IsSet(col*2+dx, row*4+dy) {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, idx)
						}
					}
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Save encodes the recorded frames to path and clears them.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	r.frames = nil
	return f.Close()
}

func (r *Recorder) Reset() { r.frames = nil }
