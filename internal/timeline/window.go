package timeline

// VisibleRange returns the half-open [start, end) row index range that
// should be rendered for the given scroll position, padded by overscan rows
// on both sides. An unmeasured viewport or an empty row list yields an
// empty range.
func VisibleRange(offs []RowOffset, scrollTop, viewportHeight, overscan int) (int, int) {
	if len(offs) == 0 || viewportHeight <= 0 {
		return 0, 0
	}
	start := 0
	for start < len(offs) && offs[start].Bottom <= scrollTop {
		start++
	}
	end := start
	limit := scrollTop + viewportHeight
	for end < len(offs) && offs[end].Top < limit {
		end++
	}
	start -= overscan
	if start < 0 {
		start = 0
	}
	end += overscan
	if end > len(offs) {
		end = len(offs)
	}
	return start, end
}
