// Package viewport is the pan/zoom transform of the mind-map canvas:
// screen = logical*Scale + offset.
package viewport

const (
	MinScale     = 0.2
	MaxScale     = 2.5
	InitialScale = 0.8
	InitialX     = 200
	InitialY     = 250

	// FocusScale is the zoom used when the tour centres a node.
	FocusScale = 1.3

	ZoomStep    = 0.2
	WheelFactor = 0.001
)

// Rect is an axis-aligned box in screen coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the box centre.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Viewport holds the current transform. The zero value is not useful; use
// Default.
type Viewport struct {
	Scale float64
	X, Y  float64
}

// Default returns the initial transform.
func Default() Viewport {
	return Viewport{Scale: InitialScale, X: InitialX, Y: InitialY}
}

// Clamp bounds s to [MinScale, MaxScale].
func Clamp(s float64) float64 {
	switch {
	case s < MinScale:
		return MinScale
	case s > MaxScale:
		return MaxScale
	}
	return s
}

// Pan moves the canvas by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.X += dx
	v.Y += dy
}

// ZoomAt changes the scale while keeping the logical point under screen
// point (px, py) fixed.
func (v *Viewport) ZoomAt(px, py, newScale float64) {
	lx, ly := v.ToLogical(px, py)
	v.Scale = Clamp(newScale)
	v.X = px - lx*v.Scale
	v.Y = py - ly*v.Scale
}

// Wheel applies a scroll-wheel delta anchored at the pointer.
func (v *Viewport) Wheel(deltaY, px, py float64) {
	v.ZoomAt(px, py, v.Scale-deltaY*WheelFactor)
}

// ZoomIn steps the scale up around the centre of a viewW x viewH view.
func (v *Viewport) ZoomIn(viewW, viewH float64) {
	v.ZoomAt(viewW/2, viewH/2, v.Scale+ZoomStep)
}

// ZoomOut steps the scale down around the view centre.
func (v *Viewport) ZoomOut(viewW, viewH float64) {
	v.ZoomAt(viewW/2, viewH/2, v.Scale-ZoomStep)
}

// Reset restores the initial transform.
func (v *Viewport) Reset() {
	*v = Default()
}

// FocusOn centres the screen box in the view at the given scale.
func (v *Viewport) FocusOn(box Rect, viewW, viewH, scale float64) {
	cx, cy := box.Center()
	lx, ly := v.ToLogical(cx, cy)
	v.Scale = Clamp(scale)
	v.X = viewW/2 - lx*v.Scale
	v.Y = viewH/2 - ly*v.Scale
}

// ToScreen maps a logical point to screen space.
func (v Viewport) ToScreen(lx, ly float64) (float64, float64) {
	return lx*v.Scale + v.X, ly*v.Scale + v.Y
}

// ToLogical maps a screen point back to logical space.
func (v Viewport) ToLogical(sx, sy float64) (float64, float64) {
	s := v.Scale
	if s == 0 {
		s = InitialScale
	}
	return (sx - v.X) / s, (sy - v.Y) / s
}
