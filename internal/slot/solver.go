package slot

// Preference selects how FindPlacement picks among free column ranges.
type Preference struct {
	target    int
	rightmost bool
}

// PreferRightmost places as far right as possible. New tasks append to
// the visual right of a slot.
func PreferRightmost() Preference {
	return Preference{rightmost: true}
}

// PreferTarget accepts only an exact fit at the given column. Callers
// fall back to Rearrange when the target is taken.
func PreferTarget(col int) Preference {
	return Preference{target: col}
}

// FindPlacement returns the start column where a task of the given
// span fits among the existing placements, or NoPlacement when the
// slot is full or no contiguous free run of that length exists.
// An out-of-range span or target column is a caller bug and returns
// an error before any scanning.
func FindPlacement(existing []Placement, span int, pref Preference) (int, error) {
	if span < 1 || span > Columns {
		return NoPlacement, ErrInvalidSpan
	}
	if !pref.rightmost && (pref.target < 0 || pref.target >= Columns) {
		return NoPlacement, ErrInvalidColumn
	}

	if len(existing) >= MaxTasks {
		return NoPlacement, nil
	}

	occ := occupancy(existing)

	if pref.rightmost {
		for start := Columns - span; start >= 0; start-- {
			if freeRun(occ, start, span) {
				return start, nil
			}
		}
		return NoPlacement, nil
	}

	if pref.target+span <= Columns && freeRun(occ, pref.target, span) {
		return pref.target, nil
	}
	return NoPlacement, nil
}

// freeRun reports whether columns [start, start+span) are all free.
func freeRun(occ [Columns]bool, start, span int) bool {
	for c := start; c < start+span; c++ {
		if occ[c] {
			return false
		}
	}
	return true
}
