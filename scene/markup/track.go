// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package markup

import (
	"math"
	"sort"
)

// easeFunc maps linear progress in [0,1] to eased progress.
type easeFunc func(t float64) float64

var easings = map[string]easeFunc{
	"linear":    func(t float64) float64 { return t },
	"inQuad":    func(t float64) float64 { return t * t },
	"outQuad":   func(t float64) float64 { return t * (2 - t) },
	"inOutQuad": easeInOutQuad,
	"inCubic":   func(t float64) float64 { return t * t * t },
	"outCubic": func(t float64) float64 {
		t--
		return t*t*t + 1
	},
	"inOutCubic": easeInOutCubic,
	"inSine":     func(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) },
	"outSine":    func(t float64) float64 { return math.Sin(t * math.Pi / 2) },
	"inOutSine":  func(t float64) float64 { return -(math.Cos(math.Pi*t) - 1) / 2 },
	"step":       func(t float64) float64 { return math.Floor(t) },
}

func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	t = 2*t - 2
	return (t*t*t + 2) / 2
}

// keyframe is a value reached at a point of an animation's timeline.
// ease shapes the segment that ends at this keyframe.
type keyframe struct {
	at   int64
	v    []float64
	ease easeFunc
}

// track interpolates between keyframes sorted by time. Values are vectors
// so the same track animates numbers and colors.
type track struct {
	keys      []keyframe
	delay     int64
	loop      bool
	alternate bool
}

// duration is the length of one pass over the keyframes.
func (t *track) duration() int64 {
	return t.keys[len(t.keys)-1].at
}

// eval writes the track value at ms into out.
//
// Before the delay the first keyframe holds. A looping track restarts after
// each pass and, when alternating, plays every other pass backwards. A
// non-looping track holds its last keyframe.
func (t *track) eval(ms int64, out []float64) {
	first, last := t.keys[0], t.keys[len(t.keys)-1]
	local := ms - t.delay
	d := t.duration()

	switch {
	case local <= 0:
		copy(out, first.v)
		return
	case d <= 0:
		copy(out, last.v)
		return
	case t.loop:
		pass := local / d
		local %= d
		if t.alternate && pass%2 == 1 {
			local = d - local
		}
	case local >= d:
		copy(out, last.v)
		return
	}

	i := sort.Search(len(t.keys), func(i int) bool { return t.keys[i].at > local })
	if i == 0 {
		copy(out, first.v)
		return
	}
	if i == len(t.keys) {
		copy(out, last.v)
		return
	}

	a, b := t.keys[i-1], t.keys[i]
	f := float64(local-a.at) / float64(b.at-a.at)
	if b.ease != nil {
		f = b.ease(f)
	}
	for j := range out {
		out[j] = a.v[j] + (b.v[j]-a.v[j])*f
	}
}
