// Package slot implements the capacity layout engine for a half-day
// scheduling slot. A slot is 4 discrete hour-columns; tasks occupy
// contiguous column ranges inside it. All functions are pure: they
// never mutate their inputs and return fresh slices.
package slot

import (
	"errors"
	"fmt"
	"sort"
)

// Columns is the fixed capacity of a slot in hour-columns.
const Columns = 4

// MaxTasks is the maximum number of placements a slot can hold.
const MaxTasks = 4

// NoPlacement is returned by FindPlacement when no valid column exists.
const NoPlacement = -1

// Input validation errors. These indicate caller bugs, not expected
// layout outcomes; capacity and collision failures are value-based.
var (
	ErrInvalidSpan   = errors.New("span must be between 1 and 4 columns")
	ErrInvalidColumn = errors.New("column must be between 0 and 3")
)

// Placement is a task's occupied column range within a slot.
type Placement struct {
	TaskID int64
	Start  int // left edge, 0-based
	Span   int // columns occupied, 1..4
}

// End returns the exclusive right edge of the placement.
func (p Placement) End() int {
	return p.Start + p.Span
}

// overlaps reports whether two column ranges intersect.
func (p Placement) overlaps(o Placement) bool {
	return p.Start < o.End() && o.Start < p.End()
}

// Item is a stored task as the engine receives it from the repository:
// an hour count plus an optional explicit column. Column is negative
// for legacy rows that never had a column assigned.
type Item struct {
	TaskID int64
	Hours  int
	Column int
}

// Validate checks the slot invariants over a set of placements:
// column bounds, no overlaps, total span within capacity, and at most
// MaxTasks placements. Returns nil when all hold.
func Validate(placements []Placement) error {
	if len(placements) > MaxTasks {
		return fmt.Errorf("slot holds %d placements, maximum is %d", len(placements), MaxTasks)
	}

	total := 0
	for _, p := range placements {
		if p.Span < 1 || p.Span > Columns {
			return fmt.Errorf("task %d: %w", p.TaskID, ErrInvalidSpan)
		}
		if p.Start < 0 || p.End() > Columns {
			return fmt.Errorf("task %d: %w", p.TaskID, ErrInvalidColumn)
		}
		total += p.Span
	}
	if total > Columns {
		return fmt.Errorf("total span %d exceeds slot capacity %d", total, Columns)
	}

	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			if placements[i].overlaps(placements[j]) {
				return fmt.Errorf("tasks %d and %d overlap", placements[i].TaskID, placements[j].TaskID)
			}
		}
	}

	return nil
}

// Normalize converts stored tasks into placements.
//
// When every item carries an explicit column and the stored columns
// satisfy the slot invariants as a whole, they are used as-is.
// Otherwise the entire set is treated as legacy data and positions are
// derived from sibling order: the first count-1 tasks get
// floor(4/count) columns each and the last takes the remainder, packed
// left to right with no gaps. The result always validates, and
// normalizing an already-normalized set is a no-op.
func Normalize(items []Item) []Placement {
	if len(items) == 0 {
		return nil
	}

	explicit := make([]Placement, 0, len(items))
	allExplicit := true
	for _, it := range items {
		if it.Column < 0 {
			allExplicit = false
			break
		}
		explicit = append(explicit, Placement{TaskID: it.TaskID, Start: it.Column, Span: it.Hours})
	}

	if allExplicit && Validate(explicit) == nil {
		return explicit
	}

	// Legacy migration: equal subdivision of the 4 columns.
	count := len(items)
	if count > MaxTasks {
		count = MaxTasks
	}
	span := Columns / count

	placements := make([]Placement, 0, count)
	for i := 0; i < count; i++ {
		s := span
		if i == count-1 {
			s = Columns - span*(count-1)
		}
		placements = append(placements, Placement{
			TaskID: items[i].TaskID,
			Start:  i * span,
			Span:   s,
		})
	}
	return placements
}

// sortByStart returns a copy of placements ordered by column, ties
// broken by task ID so the order is stable across calls.
func sortByStart(placements []Placement) []Placement {
	out := make([]Placement, len(placements))
	copy(out, placements)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

// occupancy builds a column bitmap from placements. Out-of-range
// columns are ignored; callers validate separately.
func occupancy(placements []Placement) [Columns]bool {
	var occ [Columns]bool
	for _, p := range placements {
		for c := p.Start; c < p.End() && c < Columns; c++ {
			if c >= 0 {
				occ[c] = true
			}
		}
	}
	return occ
}

// totalSpan sums the column spans of all placements.
func totalSpan(placements []Placement) int {
	total := 0
	for _, p := range placements {
		total += p.Span
	}
	return total
}
