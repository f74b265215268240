// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package markup

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/ggmovie/scene"
)

type kind int

const (
	kindRect kind = iota
	kindRoundRect
	kindCircle
	kindEllipse
	kindLine
)

var kinds = map[string]kind{
	"rect":      kindRect,
	"roundrect": kindRoundRect,
	"circle":    kindCircle,
	"ellipse":   kindEllipse,
	"line":      kindLine,
}

// axis is what a percentage of a numeric property is relative to.
type axis int

const (
	axisNone  axis = iota // percentages rejected
	axisX                 // root width
	axisY                 // root height
	axisMin               // smaller root dimension
	axisUnit              // 1, so 50% is 0.5
)

type prop int

const (
	propX prop = iota
	propY
	propWidth
	propHeight
	propRadius
	propX2
	propY2
	propStrokeWidth
	propOpacity
	propRotation
	numProps
)

var props = [numProps]struct {
	name string
	axis axis
	def  float64
}{
	propX:           {"x", axisX, 0},
	propY:           {"y", axisY, 0},
	propWidth:       {"width", axisX, 0},
	propHeight:      {"height", axisY, 0},
	propRadius:      {"radius", axisMin, 0},
	propX2:          {"x2", axisX, 0},
	propY2:          {"y2", axisY, 0},
	propStrokeWidth: {"strokeWidth", axisMin, 1},
	propOpacity:     {"opacity", axisUnit, 1},
	propRotation:    {"rotation", axisNone, 0},
}

var propsByName = func() map[string]prop {
	m := make(map[string]prop, numProps)
	for p := prop(0); p < numProps; p++ {
		m[props[p].name] = p
	}
	return m
}()

// numberProp is a static or animated numeric property.
type numberProp struct {
	base    float64
	percent bool
	track   *track
}

func (p numberProp) at(ms int64) float64 {
	if p.track == nil {
		return p.base
	}
	var v [1]float64
	p.track.eval(ms, v[:])
	return v[0]
}

// colorProp is a static or animated color.
type colorProp struct {
	base  gg.RGBA
	track *track
}

func (p colorProp) at(ms int64) gg.RGBA {
	if p.track == nil {
		return p.base
	}
	var v [4]float64
	p.track.eval(ms, v[:])
	return gg.RGBA2(v[0], v[1], v[2], v[3])
}

type item struct {
	kind      kind
	id        string
	num       [numProps]numberProp
	fill      colorProp
	stroke    colorProp
	hasFill   bool
	hasStroke bool
	visible   bool
}

type document struct {
	background colorProp
	items      []*item
}

// parser turns a YAML scene description into a document. Every error
// carries the position of the offending node.
type parser struct {
	source string
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func parse(source string, data []byte) (*document, error) {
	p := &parser{source: source}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		le := &scene.LoadError{Source: source, Err: err}
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			le.Line, _ = strconv.Atoi(m[1])
		}
		return nil, le
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &scene.LoadError{Source: source, Err: errors.New("empty scene")}
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, p.errorf(top, "scene must be a mapping")
	}

	doc := &document{background: colorProp{base: gg.Transparent}}
	for i := 0; i+1 < len(top.Content); i += 2 {
		k, v := top.Content[i], top.Content[i+1]
		switch k.Value {
		case "background":
			bg, err := p.colorProp(v)
			if err != nil {
				return nil, err
			}
			doc.background = bg
		case "items":
			if v.Kind != yaml.SequenceNode {
				return nil, p.errorf(v, "items must be a list")
			}
			for _, n := range v.Content {
				it, err := p.item(n)
				if err != nil {
					return nil, err
				}
				doc.items = append(doc.items, it)
			}
		default:
			return nil, p.errorf(k, "unknown scene key %q", k.Value)
		}
	}
	return doc, nil
}

func (p *parser) errorf(n *yaml.Node, format string, args ...any) error {
	return &scene.LoadError{
		Source: p.source,
		Line:   n.Line,
		Column: n.Column,
		Err:    fmt.Errorf(format, args...),
	}
}

func (p *parser) item(n *yaml.Node) (*item, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "item must be a mapping")
	}

	it := &item{visible: true}
	for pr := prop(0); pr < numProps; pr++ {
		it.num[pr].base = props[pr].def
	}

	var typeNode *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		var err error
		switch k.Value {
		case "type":
			typeNode = v
		case "id":
			it.id = v.Value
		case "fill":
			it.fill, err = p.colorProp(v)
			it.hasFill = true
		case "stroke":
			it.stroke, err = p.colorProp(v)
			it.hasStroke = true
		case "visible":
			it.visible, err = p.boolean(v)
		default:
			pr, ok := propsByName[k.Value]
			if !ok {
				return nil, p.errorf(k, "unknown item property %q", k.Value)
			}
			it.num[pr], err = p.numberProp(v, pr)
		}
		if err != nil {
			return nil, err
		}
	}

	if typeNode == nil {
		return nil, p.errorf(n, "item has no type")
	}
	k, ok := kinds[typeNode.Value]
	if !ok {
		return nil, p.errorf(typeNode, "unknown item type %q", typeNode.Value)
	}
	it.kind = k
	if k == kindLine && !it.hasStroke {
		return nil, p.errorf(n, "line needs a stroke color")
	}
	return it, nil
}

func (p *parser) numberProp(n *yaml.Node, pr prop) (numberProp, error) {
	if n.Kind == yaml.MappingNode {
		t, pct, err := p.animation(n, p.number)
		if err != nil {
			return numberProp{}, err
		}
		if pct && props[pr].axis == axisNone {
			return numberProp{}, p.errorf(n, "%s does not accept percentages", props[pr].name)
		}
		return numberProp{percent: pct, track: t}, nil
	}

	v, pct, err := p.number(n)
	if err != nil {
		return numberProp{}, err
	}
	if pct && props[pr].axis == axisNone {
		return numberProp{}, p.errorf(n, "%s does not accept percentages", props[pr].name)
	}
	return numberProp{base: v[0], percent: pct}, nil
}

func (p *parser) colorProp(n *yaml.Node) (colorProp, error) {
	if n.Kind == yaml.MappingNode {
		t, _, err := p.animation(n, p.color)
		if err != nil {
			return colorProp{}, err
		}
		return colorProp{track: t}, nil
	}
	v, _, err := p.color(n)
	if err != nil {
		return colorProp{}, err
	}
	return colorProp{base: gg.RGBA2(v[0], v[1], v[2], v[3])}, nil
}

// valueParser parses one animatable value and reports whether it is a
// percentage.
type valueParser func(n *yaml.Node) ([]float64, bool, error)

// number parses "12", "-3.5" or "50%". Percentages are stored as fractions.
func (p *parser) number(n *yaml.Node) ([]float64, bool, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, false, p.errorf(n, "expected a number")
	}
	s := strings.TrimSpace(n.Value)
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false, p.errorf(n, "invalid number %q", n.Value)
	}
	if pct {
		v /= 100
	}
	return []float64{v}, pct, nil
}

// color parses "#rgb", "#rgba", "#rrggbb", "#rrggbbaa", an SVG color name
// or "transparent".
func (p *parser) color(n *yaml.Node) ([]float64, bool, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, false, p.errorf(n, "expected a color")
	}
	s := strings.ToLower(strings.TrimSpace(n.Value))

	var c gg.RGBA
	switch {
	case s == "transparent":
		c = gg.Transparent
	case strings.HasPrefix(s, "#"):
		if !validHex(s[1:]) {
			return nil, false, p.errorf(n, "invalid hex color %q", n.Value)
		}
		c = gg.Hex(s)
	default:
		named, ok := colornames.Map[s]
		if !ok {
			return nil, false, p.errorf(n, "unknown color %q", n.Value)
		}
		c = gg.FromColor(named)
	}
	return []float64{c.R, c.G, c.B, c.A}, false, nil
}

func validHex(s string) bool {
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	_, err := strconv.ParseUint(s, 16, 32)
	return err == nil
}

func (p *parser) millis(n *yaml.Node) (int64, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, p.errorf(n, "expected milliseconds")
	}
	v, err := strconv.ParseInt(strings.TrimSpace(n.Value), 10, 64)
	if err != nil || v < 0 {
		return 0, p.errorf(n, "invalid duration %q", n.Value)
	}
	return v, nil
}

func (p *parser) boolean(n *yaml.Node) (bool, error) {
	var b bool
	if n.Kind != yaml.ScalarNode || n.Decode(&b) != nil {
		return false, p.errorf(n, "expected true or false")
	}
	return b, nil
}

func (p *parser) easing(n *yaml.Node) (easeFunc, error) {
	e, ok := easings[n.Value]
	if !ok {
		return nil, p.errorf(n, "unknown easing %q", n.Value)
	}
	return e, nil
}

// animation parses either
//
//	{from: a, to: b, duration: ms, delay: ms, easing: name, loop: bool, alternate: bool}
//
// or the same keys with keyframes: [{at: ms, value: v, easing: name}, ...]
// instead of from/to/duration.
func (p *parser) animation(n *yaml.Node, parseValue valueParser) (*track, bool, error) {
	t := &track{}
	var from, to, frames *yaml.Node
	var duration int64
	ease := easings["linear"]

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		var err error
		switch k.Value {
		case "from":
			from = v
		case "to":
			to = v
		case "duration":
			duration, err = p.millis(v)
		case "delay":
			t.delay, err = p.millis(v)
		case "easing":
			ease, err = p.easing(v)
		case "loop":
			t.loop, err = p.boolean(v)
		case "alternate":
			t.alternate, err = p.boolean(v)
		case "keyframes":
			frames = v
		default:
			return nil, false, p.errorf(k, "unknown animation key %q", k.Value)
		}
		if err != nil {
			return nil, false, err
		}
	}

	var percent bool
	add := func(vn *yaml.Node, at int64, e easeFunc) error {
		v, pct, err := parseValue(vn)
		if err != nil {
			return err
		}
		if len(t.keys) > 0 && pct != percent {
			return p.errorf(vn, "animation mixes percentages and absolute values")
		}
		percent = pct
		t.keys = append(t.keys, keyframe{at: at, v: v, ease: e})
		return nil
	}

	switch {
	case frames != nil:
		if from != nil || to != nil {
			return nil, false, p.errorf(n, "animation has both keyframes and from/to")
		}
		if frames.Kind != yaml.SequenceNode || len(frames.Content) == 0 {
			return nil, false, p.errorf(frames, "keyframes must be a non-empty list")
		}
		for _, kf := range frames.Content {
			at, vn, e, err := p.keyframe(kf, ease)
			if err != nil {
				return nil, false, err
			}
			if len(t.keys) > 0 && at < t.keys[len(t.keys)-1].at {
				return nil, false, p.errorf(kf, "keyframe at %d ms precedes the previous keyframe", at)
			}
			if err := add(vn, at, e); err != nil {
				return nil, false, err
			}
		}
	case from != nil && to != nil:
		if err := add(from, 0, ease); err != nil {
			return nil, false, err
		}
		if err := add(to, duration, ease); err != nil {
			return nil, false, err
		}
	default:
		return nil, false, p.errorf(n, "animation needs from and to, or keyframes")
	}
	return t, percent, nil
}

func (p *parser) keyframe(n *yaml.Node, def easeFunc) (int64, *yaml.Node, easeFunc, error) {
	if n.Kind != yaml.MappingNode {
		return 0, nil, nil, p.errorf(n, "keyframe must be a mapping")
	}
	var at int64
	var value *yaml.Node
	ease := def
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		var err error
		switch k.Value {
		case "at":
			at, err = p.millis(v)
		case "value":
			value = v
		case "easing":
			ease, err = p.easing(v)
		default:
			return 0, nil, nil, p.errorf(k, "unknown keyframe key %q", k.Value)
		}
		if err != nil {
			return 0, nil, nil, err
		}
	}
	if value == nil {
		return 0, nil, nil, p.errorf(n, "keyframe has no value")
	}
	return at, value, ease, nil
}
