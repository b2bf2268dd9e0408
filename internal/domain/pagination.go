package domain

// Page selects a window of an ordered list. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// Bounds returns the [lo, hi) slice bounds of the page within a list of
// total items. A page past the end yields an empty window at total.
func (p Page) Bounds(total int) (lo, hi int) {
	if p.Number < 1 || p.Size < 1 {
		return 0, total
	}
	if p.Number-1 > total/p.Size {
		return total, total
	}
	lo = min((p.Number-1)*p.Size, total)
	hi = lo + min(p.Size, total-lo)
	return lo, hi
}
