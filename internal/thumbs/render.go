package thumbs

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/EddieRydell/vibetracker/internal/show"
)

// Render draws a schematic preview of one effect at native resolution:
// x sweeps time across the effect's range, y sweeps the pixel run.
// Deterministic: the same instance always renders the same image.
func Render(eff show.EffectInstance, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	opacity := clamp01(eff.Opacity)
	dur := eff.TimeRange.Duration()

	for y := 0; y < h; y++ {
		p01 := (float64(y) + 0.5) / float64(h)
		for x := 0; x < w; x++ {
			t01 := (float64(x) + 0.5) / float64(w)
			c := evalColor(eff, t01, p01, dur, y)
			c = colorful.Color{R: c.R * opacity, G: c.G * opacity, B: c.B * opacity}
			r, g, b := c.Clamped().RGB255()
			i := img.PixOffset(x, y)
			img.Pix[i+0] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

func evalColor(eff show.EffectInstance, t01, p01, dur float64, y int) colorful.Color {
	p := eff.Params
	switch eff.Kind {
	case show.KindSolid:
		return paramColor(p, "color")

	case show.KindChase:
		speed := show.FloatOr(p, "speed", 1.0)
		tail := clampRange(show.FloatOr(p, "tail_length", 0.3), 0.01, 1)
		head := frac(t01 * dur * speed)
		if show.BoolOr(p, "reverse", false) {
			head = 1 - head
		}
		d := frac(head - p01)
		v := 1 - d/tail
		if v < 0 {
			v = 0
		}
		return scale(paramColor(p, "color"), v)

	case show.KindRainbow:
		speed := show.FloatOr(p, "speed", 1.0)
		spread := show.FloatOr(p, "spread", 1.0)
		sat := clamp01(show.FloatOr(p, "saturation", 1.0))
		bright := clamp01(show.FloatOr(p, "brightness", 1.0))
		hue := 360 * frac(p01*spread+t01*dur*speed*0.25)
		return colorful.Hsv(hue, sat, bright)

	case show.KindStrobe:
		rate := show.FloatOr(p, "rate", 10.0)
		duty := clamp01(show.FloatOr(p, "duty_cycle", 0.5))
		if frac(t01*dur*rate) < duty {
			return paramColor(p, "color")
		}
		return colorful.Color{}

	case show.KindGradient:
		from := paramColorKey(p, "from", [3]float64{1, 0, 0})
		to := paramColorKey(p, "to", [3]float64{0, 0, 1})
		offset := show.FloatOr(p, "offset", 0)
		return from.BlendRgb(to, frac(p01+offset*t01))

	case show.KindTwinkle:
		density := clamp01(show.FloatOr(p, "density", 0.3))
		speed := show.FloatOr(p, "speed", 5.0)
		if hash01(y*7919+13) >= density {
			return scale(paramColor(p, "color"), 0.04)
		}
		phase := hash01(y*104729 + 7)
		v := 0.5 + 0.5*math.Sin(2*math.Pi*(t01*dur*speed*0.2+phase))
		return scale(paramColor(p, "color"), v)

	case show.KindFade:
		from := paramColorKey(p, "from", [3]float64{1, 1, 1})
		to := paramColorKey(p, "to", [3]float64{0, 0, 0})
		return from.BlendRgb(to, t01)

	case show.KindWipe:
		passes := show.IntOr(p, "passes", 1)
		if passes < 1 {
			passes = 1
		}
		progress := frac(t01 * float64(passes))
		if show.TextOr(p, "direction", "horizontal") == "vertical" {
			return scale(paramColor(p, "color"), progress)
		}
		if p01 <= progress {
			return paramColor(p, "color")
		}
		return colorful.Color{}

	case show.KindScript:
		v := 0.12
		if (int(t01*16)+int(p01*4))%2 == 0 {
			v = 0.22
		}
		return colorful.Color{R: v, G: v, B: v}
	}
	return colorful.Color{R: 0.3, G: 0.3, B: 0.3}
}

// ScaleToCells downsamples a native render to its on-screen cell size.
func ScaleToCells(img *image.RGBA, wCells, hCells int) *image.RGBA {
	if wCells < 1 {
		wCells = 1
	}
	if hCells < 1 {
		hCells = 1
	}
	if img.Bounds().Dx() == wCells && img.Bounds().Dy() == hCells {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, wCells, hCells))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func paramColor(p map[string]show.ParamValue, key string) colorful.Color {
	return paramColorKey(p, key, [3]float64{1, 1, 1})
}

func paramColorKey(p map[string]show.ParamValue, key string, def [3]float64) colorful.Color {
	rgb := show.ColorOr(p, key, def)
	return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}
}

func scale(c colorful.Color, v float64) colorful.Color {
	v = clamp01(v)
	return colorful.Color{R: c.R * v, G: c.G * v, B: c.B * v}
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// frac wraps into [0, 1), handling negatives.
func frac(v float64) float64 {
	f := v - math.Floor(v)
	if f < 0 {
		f += 1
	}
	return f
}

func hash01(n int) float64 {
	x := uint32(n) * 2654435761
	x ^= x >> 16
	x *= 2246822519
	x ^= x >> 13
	return float64(x%100000) / 100000
}
