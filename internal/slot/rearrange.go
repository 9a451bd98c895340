package slot

// Delta records a sibling placement whose column changed during a
// rearrangement. The caller persists exactly this subset; the dragged
// task itself goes through its own update path.
type Delta struct {
	TaskID int64
	From   int
	To     int
}

// Result is the outcome of a Rearrange call. When CanPlace is false
// the slot could not accommodate the incoming task and the caller must
// leave its state untouched; Arrangement and Moved are nil in that
// case.
type Result struct {
	CanPlace    bool
	Arrangement []Placement
	Moved       []Delta
}

// Rearrange computes the full new layout of a slot after dropping
// incoming at the target column. The incoming task is identified by
// its ID and excluded from collision checks against its own previous
// position, so re-drops within the same slot behave as moves.
//
// Placement rules, in order:
//  1. If the target range is free, incoming lands there and nobody
//     moves.
//  2. Otherwise overlapping siblings are compressed: those left of the
//     landing point pack leftward, those right of it pack rightward,
//     each shifted the minimum distance in a single directional sweep.
//  3. If no landing column in the slot can be cleared this way, or the
//     slot lacks capacity for the incoming span, the drop is rejected.
//
// Landing columns are tried nearest the target first, preferring the
// left on equal distance. Among viable compressions the one displacing
// the fewest siblings wins; a remaining tie compresses toward column 0.
func Rearrange(existing []Placement, incoming Placement, target int) (Result, error) {
	if incoming.Span < 1 || incoming.Span > Columns {
		return Result{}, ErrInvalidSpan
	}
	if target < 0 || target >= Columns {
		return Result{}, ErrInvalidColumn
	}

	others := make([]Placement, 0, len(existing))
	for _, p := range existing {
		if p.TaskID != incoming.TaskID {
			others = append(others, p)
		}
	}

	// Capacity checks: a fifth placement or an overfull slot can never
	// be resolved by shifting positions.
	if len(others) >= MaxTasks {
		return Result{CanPlace: false}, nil
	}
	if totalSpan(others)+incoming.Span > Columns {
		return Result{CanPlace: false}, nil
	}

	// A target too close to the right edge lands at the nearest column
	// that keeps the span inside the slot.
	landing := target
	if landing > Columns-incoming.Span {
		landing = Columns - incoming.Span
	}

	// Direct accept: nobody else moves.
	if freeRun(occupancy(others), landing, incoming.Span) {
		return accept(others, incoming, landing, nil), nil
	}

	sorted := sortByStart(others)
	for _, at := range landingOrder(landing, Columns-incoming.Span) {
		if moved, ok := compressAround(sorted, at, incoming.Span); ok {
			return accept(moved, incoming, at, sorted), nil
		}
	}

	return Result{CanPlace: false}, nil
}

// landingOrder yields candidate landing columns ordered by distance
// from the preferred column, nearer first and left before right on
// equal distance.
func landingOrder(preferred, max int) []int {
	order := make([]int, 0, max+1)
	for d := 0; d <= max; d++ {
		if preferred-d >= 0 {
			order = append(order, preferred-d)
		}
		if d > 0 && preferred+d <= max {
			order = append(order, preferred+d)
		}
	}
	return order
}

// compressAround tries to clear [at, at+span) by splitting the sorted
// siblings into a left group packed before the landing range and a
// right group packed after it. Every split point is swept; the one
// displacing the fewest siblings wins, ties going to the split that
// pushes more siblings toward column 0. Returns the new positions and
// whether any split fits.
func compressAround(sorted []Placement, at, span int) ([]Placement, bool) {
	var best []Placement
	bestMoved := -1

	for k := len(sorted); k >= 0; k-- {
		candidate, moved, ok := sweep(sorted, k, at, span)
		if !ok {
			continue
		}
		if bestMoved < 0 || moved < bestMoved {
			best = candidate
			bestMoved = moved
		}
	}

	return best, bestMoved >= 0
}

// sweep assigns sorted[:k] to the left of the landing range and
// sorted[k:] to the right, shifting each by the minimum distance.
// The left group is packed right to left against the landing column,
// the right group left to right after it. Returns the shifted
// placements, how many actually moved, and whether everything fits.
func sweep(sorted []Placement, k, at, span int) ([]Placement, int, bool) {
	out := make([]Placement, len(sorted))
	copy(out, sorted)
	moved := 0

	bound := at
	for i := k - 1; i >= 0; i-- {
		if out[i].End() > bound {
			out[i].Start = bound - out[i].Span
			if out[i].Start < 0 {
				return nil, 0, false
			}
		}
		if out[i].Start != sorted[i].Start {
			moved++
		}
		bound = out[i].Start
	}

	bound = at + span
	for i := k; i < len(out); i++ {
		if out[i].Start < bound {
			out[i].Start = bound
			if out[i].End() > Columns {
				return nil, 0, false
			}
		}
		if out[i].Start != sorted[i].Start {
			moved++
		}
		bound = out[i].End()
	}

	return out, moved, true
}

// accept builds a successful Result from the final sibling positions,
// the incoming placement, and the pre-drop positions used to compute
// the moved subset.
func accept(siblings []Placement, incoming Placement, at int, before []Placement) Result {
	prev := make(map[int64]int, len(before))
	for _, p := range before {
		prev[p.TaskID] = p.Start
	}

	var moved []Delta
	for _, p := range siblings {
		if from, ok := prev[p.TaskID]; ok && from != p.Start {
			moved = append(moved, Delta{TaskID: p.TaskID, From: from, To: p.Start})
		}
	}

	incoming.Start = at
	arrangement := make([]Placement, 0, len(siblings)+1)
	arrangement = append(arrangement, siblings...)
	arrangement = append(arrangement, incoming)

	return Result{
		CanPlace:    true,
		Arrangement: sortByStart(arrangement),
		Moved:       moved,
	}
}
