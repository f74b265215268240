// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package markup

import (
	"math"

	"github.com/gogpu/gg"
)

// shape is an item with every property resolved to logical pixels.
type shape struct {
	kind               kind
	x, y, w, h, r      float64
	x2, y2             float64
	strokeWidth        float64
	opacity            float64
	rotation           float64 // degrees
	fill, stroke       gg.RGBA
	hasFill, hasStroke bool
}

// frame is the render state committed by Sync.
type frame struct {
	background gg.RGBA
	shapes     []shape
}

// resolve converts an item's evaluated values for a root of size w x h.
func resolve(it *item, values *[numProps]float64, fill, stroke gg.RGBA, w, h float64) shape {
	var v [numProps]float64
	for pr := prop(0); pr < numProps; pr++ {
		v[pr] = values[pr]
		if !it.num[pr].percent {
			continue
		}
		switch props[pr].axis {
		case axisX:
			v[pr] *= w
		case axisY:
			v[pr] *= h
		case axisMin:
			v[pr] *= math.Min(w, h)
		}
	}
	return shape{
		kind:        it.kind,
		x:           v[propX],
		y:           v[propY],
		w:           v[propWidth],
		h:           v[propHeight],
		r:           v[propRadius],
		x2:          v[propX2],
		y2:          v[propY2],
		strokeWidth: v[propStrokeWidth],
		opacity:     clamp01(v[propOpacity]),
		rotation:    v[propRotation],
		fill:        fill,
		stroke:      stroke,
		hasFill:     it.hasFill,
		hasStroke:   it.hasStroke,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// center is the rotation origin of the shape.
func (s *shape) center() (float64, float64) {
	switch s.kind {
	case kindCircle, kindEllipse:
		return s.x, s.y
	case kindLine:
		return (s.x + s.x2) / 2, (s.y + s.y2) / 2
	default:
		return s.x + s.w/2, s.y + s.h/2
	}
}

func (s *shape) path(dc *gg.Context) {
	switch s.kind {
	case kindRect:
		dc.DrawRectangle(s.x, s.y, s.w, s.h)
	case kindRoundRect:
		roundedRect(dc, s.x, s.y, s.w, s.h, s.r)
	case kindCircle:
		dc.DrawCircle(s.x, s.y, s.r)
	case kindEllipse:
		dc.DrawEllipse(s.x, s.y, s.w/2, s.h/2)
	case kindLine:
		dc.DrawLine(s.x, s.y, s.x2, s.y2)
	}
}

// roundedRect builds the path through the context so the current transform
// applies to it.
func roundedRect(dc *gg.Context, x, y, w, h, r float64) {
	r = math.Min(r, math.Min(w, h)/2)
	if r <= 0 {
		dc.DrawRectangle(x, y, w, h)
		return
	}
	const k = 0.5522847498307936
	o := r * (1 - k)
	dc.MoveTo(x+r, y)
	dc.LineTo(x+w-r, y)
	dc.CubicTo(x+w-o, y, x+w, y+o, x+w, y+r)
	dc.LineTo(x+w, y+h-r)
	dc.CubicTo(x+w, y+h-o, x+w-o, y+h, x+w-r, y+h)
	dc.LineTo(x+r, y+h)
	dc.CubicTo(x+o, y+h, x, y+h-o, x, y+h-r)
	dc.LineTo(x, y+r)
	dc.CubicTo(x, y+o, x+o, y, x+r, y)
	dc.ClosePath()
}

// scaled returns s in device pixels.
func (s shape) scaled(k float64) shape {
	s.x *= k
	s.y *= k
	s.w *= k
	s.h *= k
	s.r *= k
	s.x2 *= k
	s.y2 *= k
	s.strokeWidth *= k
	return s
}

func setColor(dc *gg.Context, c gg.RGBA, opacity float64) {
	dc.SetRGBA(c.R, c.G, c.B, c.A*opacity)
}

func (s *shape) draw(dc *gg.Context) error {
	if s.opacity == 0 {
		return nil
	}
	fill := s.hasFill && s.kind != kindLine && s.fill.A > 0
	stroke := s.hasStroke && s.strokeWidth > 0 && s.stroke.A > 0
	if !fill && !stroke {
		return nil
	}

	dc.Push()
	defer dc.Pop()
	if s.rotation != 0 {
		cx, cy := s.center()
		dc.RotateAbout(s.rotation*math.Pi/180, cx, cy)
	}

	s.path(dc)
	if fill {
		setColor(dc, s.fill, s.opacity)
		var err error
		if stroke {
			err = dc.FillPreserve()
		} else {
			err = dc.Fill()
		}
		if err != nil {
			return err
		}
	}
	if stroke {
		setColor(dc, s.stroke, s.opacity)
		dc.SetLineWidth(s.strokeWidth)
		return dc.Stroke()
	}
	return nil
}

// drawFrame clears the canvas and draws f scaled by the device pixel ratio.
// Geometry is scaled up front: gg line widths do not follow the
// transform.
func drawFrame(dc *gg.Context, f frame, scale float64) error {
	dc.ClearWithColor(f.background)
	for i := range f.shapes {
		s := f.shapes[i].scaled(scale)
		if err := s.draw(dc); err != nil {
			return err
		}
	}
	return nil
}
