package geometry

// ZoneKind identifies a snap target region.
type ZoneKind int

const (
	ZoneLeft ZoneKind = iota
	ZoneRight
	ZoneTop
	ZoneBottom
	ZoneTopLeft
	ZoneTopRight
	ZoneBottomLeft
	ZoneBottomRight
)

// String returns the kebab-case name of the zone.
func (k ZoneKind) String() string {
	switch k {
	case ZoneLeft:
		return "left-half"
	case ZoneRight:
		return "right-half"
	case ZoneTop:
		return "top-half"
	case ZoneBottom:
		return "bottom-half"
	case ZoneTopLeft:
		return "top-left"
	case ZoneTopRight:
		return "top-right"
	case ZoneBottomLeft:
		return "bottom-left"
	case ZoneBottomRight:
		return "bottom-right"
	default:
		return "unknown"
	}
}

// SnapZone is a candidate region a window lands in when released.
type SnapZone struct {
	Kind   ZoneKind `json:"kind"`
	Anchor Point    `json:"anchor"`
	Extent Extent   `json:"extent"`
}

// Rect returns the zone as a rectangle.
func (z SnapZone) Rect() Rect {
	return Rect{Position: z.Anchor, Extent: z.Extent}
}

// previewOrder is the order zones are reported while dragging: edges first,
// then corners.
var previewOrder = []ZoneKind{
	ZoneLeft, ZoneRight, ZoneTop, ZoneBottom,
	ZoneTopLeft, ZoneTopRight, ZoneBottomLeft, ZoneBottomRight,
}

// commitOrder is the release-time precedence. Corners satisfy two edge
// conditions so they are tested first.
var commitOrder = []ZoneKind{
	ZoneTopLeft, ZoneTopRight, ZoneBottomLeft, ZoneBottomRight,
	ZoneLeft, ZoneRight, ZoneTop, ZoneBottom,
}

type proximity struct {
	left, right, top, bottom bool
}

func nearEdges(r Rect, s Screen, threshold int) proximity {
	u := s.Usable()
	return proximity{
		left:   r.Position.X <= threshold,
		right:  r.Right() >= u.Width-threshold,
		top:    r.Position.Y <= threshold,
		bottom: r.Bottom() >= u.Height-threshold,
	}
}

func (p proximity) matches(k ZoneKind) bool {
	switch k {
	case ZoneLeft:
		return p.left
	case ZoneRight:
		return p.right
	case ZoneTop:
		return p.top
	case ZoneBottom:
		return p.bottom
	case ZoneTopLeft:
		return p.top && p.left
	case ZoneTopRight:
		return p.top && p.right
	case ZoneBottomLeft:
		return p.bottom && p.left
	case ZoneBottomRight:
		return p.bottom && p.right
	}
	return false
}

// Zone returns the region of kind k on screen s.
func Zone(k ZoneKind, s Screen) SnapZone {
	u := s.Usable()
	halfW, halfH := u.Width/2, u.Height/2
	z := SnapZone{Kind: k}
	switch k {
	case ZoneLeft:
		z.Extent = Extent{Width: halfW, Height: u.Height}
	case ZoneRight:
		z.Anchor = Point{X: halfW}
		z.Extent = Extent{Width: halfW, Height: u.Height}
	case ZoneTop:
		z.Extent = Extent{Width: u.Width, Height: halfH}
	case ZoneBottom:
		z.Anchor = Point{Y: halfH}
		z.Extent = Extent{Width: u.Width, Height: halfH}
	case ZoneTopLeft:
		z.Extent = Extent{Width: halfW, Height: halfH}
	case ZoneTopRight:
		z.Anchor = Point{X: halfW}
		z.Extent = Extent{Width: halfW, Height: halfH}
	case ZoneBottomLeft:
		z.Anchor = Point{Y: halfH}
		z.Extent = Extent{Width: halfW, Height: halfH}
	case ZoneBottomRight:
		z.Anchor = Point{X: halfW, Y: halfH}
		z.Extent = Extent{Width: halfW, Height: halfH}
	}
	return z
}

// PreviewZones returns every zone whose proximity condition holds for r.
// The result is meant for display only and is not exclusive.
func PreviewZones(r Rect, s Screen, threshold int) []SnapZone {
	p := nearEdges(r, s, threshold)
	var zones []SnapZone
	for _, k := range previewOrder {
		if p.matches(k) {
			zones = append(zones, Zone(k, s))
		}
	}
	return zones
}

// CommitZone returns the zone r snaps to on release, if any.
func CommitZone(r Rect, s Screen, threshold int) (SnapZone, bool) {
	p := nearEdges(r, s, threshold)
	for _, k := range commitOrder {
		if p.matches(k) {
			return Zone(k, s), true
		}
	}
	return SnapZone{}, false
}
