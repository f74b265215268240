// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package markup is a declarative scene engine for YAML scene descriptions.
//
// A scene has a background color and a list of items:
//
//	background: "#101820"
//	items:
//	  - type: circle
//	    x: 50%
//	    y: {from: 20%, to: 80%, duration: 1000, easing: inOutQuad, loop: true, alternate: true}
//	    radius: 10%
//	    fill: tomato
//	  - type: line
//	    x: 0
//	    y: 100%
//	    x2: 100%
//	    y2: 100%
//	    stroke: white
//	    strokeWidth: 4
//
// Item types are rect, roundrect, circle, ellipse and line. Rectangles are
// placed by their top-left corner; circles and ellipses by their center.
// Numeric properties (x, y, width, height, radius, x2, y2, strokeWidth,
// opacity, rotation) take a number, a percentage of the root size or an
// animation. Colors (background, fill, stroke) take a quoted hex value, an
// SVG color name or an animation.
//
// An animation is either from/to with a duration, or a keyframes list of
// {at, value, easing}. Both accept delay, easing, loop and alternate.
// Times are milliseconds.
//
// Parse errors are reported as *scene.LoadError with the line and column
// of the offending node.
package markup
