package slot

// Edge identifies which boundary of a placement a resize drags.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
)

// ProposeResize computes the placement that results from dragging one
// edge of a task by delta columns (positive is rightward). It is a
// pure preview: no collision checking happens here. The proposal is
// clamped so the span never drops below one column and the placement
// stays inside the slot.
//
// To commit, feed the proposal back through Rearrange with the task's
// own ID as the incoming placement and the proposed start as the
// target; a CanPlace of false means the resize reverts.
func ProposeResize(p Placement, edge Edge, delta int) Placement {
	switch edge {
	case EdgeLeft:
		// The right edge stays fixed; the left edge slides.
		end := p.End()
		start := p.Start + delta
		if start < 0 {
			start = 0
		}
		if start > end-1 {
			start = end - 1
		}
		p.Start = start
		p.Span = end - start
	case EdgeRight:
		// Only the span changes.
		span := p.Span + delta
		if span < 1 {
			span = 1
		}
		if p.Start+span > Columns {
			span = Columns - p.Start
		}
		p.Span = span
	}
	return p
}
