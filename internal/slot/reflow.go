package slot

// Reflow produces the canonical gapless arrangement of a slot: every
// placement keeps its span, relative order is preserved (by current
// column, ties by task ID), and each placement starts where the
// previous one ends. Used after a task is removed from a slot and as a
// defensive normalization before rendering. Idempotent.
func Reflow(placements []Placement) []Placement {
	out := sortByStart(placements)
	next := 0
	for i := range out {
		out[i].Start = next
		next += out[i].Span
	}
	return out
}
