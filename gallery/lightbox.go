package gallery

// lightboxState tracks the detail overlay. The gallery owns this state
// entirely; open is explicit rather than inferred from the index, so a
// dismissed lightbox and one parked at item zero stay distinguishable.
type lightboxState struct {
	open  bool
	index int
}

// openAt opens the lightbox on item i, clamped into the displayed range.
// Opening over an empty gallery is a no-op.
func (l lightboxState) openAt(i, count int) lightboxState {
	if count <= 0 {
		return lightboxState{}
	}
	return lightboxState{open: true, index: clamp(i, 0, count-1)}
}

// prev steps to the previous item. At the first item it stays put; there is
// no wraparound.
func (l lightboxState) prev() lightboxState {
	if !l.open || l.index == 0 {
		return l
	}
	l.index--
	return l
}

// next steps to the following item. At the last item it stays put; there is
// no wraparound.
func (l lightboxState) next(count int) lightboxState {
	if !l.open || l.index >= count-1 {
		return l
	}
	l.index++
	return l
}

// dismiss closes the lightbox. The index is deliberately dropped so a later
// open starts from the grid cursor, not a stale position.
func (l lightboxState) dismiss() lightboxState {
	return lightboxState{}
}

// clampToBounds resynchronizes the lightbox after the displayed list
// changes size: it closes over an empty list and pulls an out-of-range
// index back to the last item.
func (l lightboxState) clampToBounds(count int) lightboxState {
	if !l.open {
		return l
	}
	if count <= 0 {
		return lightboxState{}
	}
	l.index = clamp(l.index, 0, count-1)
	return l
}
