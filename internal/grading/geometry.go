package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidGeometry = errors.New("invalid lesion geometry")

const (
	ShapeCircle = "circle"
	ShapeRect   = "rect"
)

// Geometry is the lesion outline of a case. Implemented by Circle and Rect only.
type Geometry interface {
	Shape() string
	locate(x, y float64) (inside bool, distance float64, nearLimit float64, farLimit float64)
}

type Circle struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	R  float64 `json:"r"`
}

func (Circle) Shape() string { return ShapeCircle }

func (c Circle) locate(x, y float64) (bool, float64, float64, float64) {
	d := math.Hypot(x-c.CX, y-c.CY)
	return d <= c.R, d, 1.5 * c.R, 2.5 * c.R
}

// Rect is axis aligned; (X, Y) is the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (Rect) Shape() string { return ShapeRect }

func (r Rect) locate(x, y float64) (bool, float64, float64, float64) {
	dx := math.Max(math.Max(r.X-x, 0), x-(r.X+r.W))
	dy := math.Max(math.Max(r.Y-y, 0), y-(r.Y+r.H))
	base := math.Max(r.W, r.H) / 2
	return dx == 0 && dy == 0, math.Hypot(dx, dy), 0.5 * base, 1.5 * base
}

type rawGeometry struct {
	Type string   `json:"type"`
	CX   *float64 `json:"cx"`
	CY   *float64 `json:"cy"`
	R    *float64 `json:"r"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	W    *float64 `json:"w"`
	H    *float64 `json:"h"`
}

// ParseGeometry decodes the stored lesion JSON, e.g.
// {"type":"circle","cx":0.5,"cy":0.5,"r":0.2} or {"type":"rect","x":0.1,"y":0.1,"w":0.2,"h":0.3}.
func ParseGeometry(data []byte) (Geometry, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidGeometry)
	}
	var raw rawGeometry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	switch strings.ToLower(strings.TrimSpace(raw.Type)) {
	case ShapeCircle:
		if raw.CX == nil || raw.CY == nil || raw.R == nil {
			return nil, fmt.Errorf("%w: circle requires cx, cy and r", ErrInvalidGeometry)
		}
		c := Circle{CX: *raw.CX, CY: *raw.CY, R: *raw.R}
		return c, ValidateGeometry(c)
	case ShapeRect, "rectangle":
		if raw.X == nil || raw.Y == nil || raw.W == nil || raw.H == nil {
			return nil, fmt.Errorf("%w: rect requires x, y, w and h", ErrInvalidGeometry)
		}
		r := Rect{X: *raw.X, Y: *raw.Y, W: *raw.W, H: *raw.H}
		return r, ValidateGeometry(r)
	default:
		return nil, fmt.Errorf("%w: unknown shape %q", ErrInvalidGeometry, raw.Type)
	}
}

// MarshalGeometry is the inverse of ParseGeometry.
func MarshalGeometry(g Geometry) ([]byte, error) {
	switch v := g.(type) {
	case Circle:
		return json.Marshal(map[string]any{"type": ShapeCircle, "cx": v.CX, "cy": v.CY, "r": v.R})
	case Rect:
		return json.Marshal(map[string]any{"type": ShapeRect, "x": v.X, "y": v.Y, "w": v.W, "h": v.H})
	default:
		return nil, fmt.Errorf("%w: unsupported geometry %T", ErrInvalidGeometry, g)
	}
}

func ValidateGeometry(g Geometry) error {
	switch v := g.(type) {
	case Circle:
		if !finite(v.CX, v.CY, v.R) {
			return fmt.Errorf("%w: non-finite circle", ErrInvalidGeometry)
		}
		if !unit(v.CX) || !unit(v.CY) {
			return fmt.Errorf("%w: circle center outside [0,1]", ErrInvalidGeometry)
		}
		if v.R <= 0 {
			return fmt.Errorf("%w: circle radius must be positive", ErrInvalidGeometry)
		}
	case Rect:
		if !finite(v.X, v.Y, v.W, v.H) {
			return fmt.Errorf("%w: non-finite rect", ErrInvalidGeometry)
		}
		if !unit(v.X) || !unit(v.Y) {
			return fmt.Errorf("%w: rect origin outside [0,1]", ErrInvalidGeometry)
		}
		if v.W < 0 || v.H < 0 || (v.W == 0 && v.H == 0) {
			return fmt.Errorf("%w: rect needs a non-negative size with some extent", ErrInvalidGeometry)
		}
	case nil:
		return fmt.Errorf("%w: missing", ErrInvalidGeometry)
	default:
		return fmt.Errorf("%w: unsupported geometry %T", ErrInvalidGeometry, g)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func unit(v float64) bool { return v >= 0 && v <= 1 }
