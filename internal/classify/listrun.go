package classify

import "github.com/tamzidan/docreflow/internal/document"

// ListLevel returns the unit's list level. Units with numbering but no
// explicit level sit at level 0. ok is false when the unit is not a list item.
func ListLevel(u *document.ContentUnit) (level int, ok bool) {
	if u == nil || u.List == nil {
		return 0, false
	}
	return u.List.Level, true
}

// IsLastInRun reports whether u is the last item of its list or sublist:
// next is absent, is not a list item, belongs to a different list, or climbs
// back to a shallower level.
func IsLastInRun(u, next *document.ContentUnit) bool {
	if u == nil || u.List == nil {
		return false
	}
	if next == nil || next.List == nil {
		return true
	}
	if next.List.NumID != u.List.NumID {
		return true
	}
	return next.List.Level < u.List.Level
}

// RunLength counts the contiguous items sharing units[i]'s list ID, scanning
// backward then forward and stopping at the first non-list unit or different
// list. Returns 0 when units[i] is not a list item.
func RunLength(units []*document.ContentUnit, i int) int {
	if i < 0 || i >= len(units) || units[i].List == nil {
		return 0
	}
	id := units[i].List.NumID
	count := 0
	for j := i; j >= 0; j-- {
		if units[j].List == nil || units[j].List.NumID != id {
			break
		}
		count++
	}
	for j := i + 1; j < len(units); j++ {
		if units[j].List == nil || units[j].List.NumID != id {
			break
		}
		count++
	}
	return count
}
