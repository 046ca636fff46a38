package tui

import "sync"

// Viewport tracks the visible line range of the pager: the first
// visible line plus the size of the content area. Scrolling clamps to
// the document so the viewport never runs past the end.
type Viewport struct {
	mu      sync.RWMutex
	topLine int
	width   int
	height  int
	maxLine int
}

// NewViewport creates a viewport with the given size. Width and height
// are clamped to a minimum of 1 to prevent underflow.
func NewViewport(width, height int) *Viewport {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Viewport{width: width, height: height}
}

// Width returns the viewport width.
func (v *Viewport) Width() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width
}

// Height returns the viewport height in content rows.
func (v *Viewport) Height() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.height
}

// TopLine returns the first visible line.
func (v *Viewport) TopLine() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.topLine
}

// Resize updates the viewport size, clamped to a minimum of 1.
func (v *Viewport) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	v.mu.Lock()
	v.width = width
	v.height = height
	v.clampLocked()
	v.mu.Unlock()
}

// SetMaxLine updates the document line count the viewport clamps to.
func (v *Viewport) SetMaxLine(maxLine int) {
	v.mu.Lock()
	v.maxLine = maxLine
	v.clampLocked()
	v.mu.Unlock()
}

// ScrollTo moves the viewport so line is the first visible line.
func (v *Viewport) ScrollTo(line int) {
	v.mu.Lock()
	v.topLine = line
	v.clampLocked()
	v.mu.Unlock()
}

// ScrollBy moves the viewport by delta lines (negative scrolls up).
func (v *Viewport) ScrollBy(delta int) {
	v.mu.Lock()
	v.topLine += delta
	v.clampLocked()
	v.mu.Unlock()
}

// PageDown scrolls forward one screen, keeping one line of overlap.
func (v *Viewport) PageDown() {
	v.mu.Lock()
	step := v.height - 1
	if step < 1 {
		step = 1
	}
	v.topLine += step
	v.clampLocked()
	v.mu.Unlock()
}

// PageUp scrolls back one screen, keeping one line of overlap.
func (v *Viewport) PageUp() {
	v.mu.Lock()
	step := v.height - 1
	if step < 1 {
		step = 1
	}
	v.topLine -= step
	v.clampLocked()
	v.mu.Unlock()
}

// Top scrolls to the start of the document.
func (v *Viewport) Top() {
	v.ScrollTo(0)
}

// Bottom scrolls so the last document line is on the last row.
func (v *Viewport) Bottom() {
	v.mu.Lock()
	v.topLine = v.maxLine - v.height
	v.clampLocked()
	v.mu.Unlock()
}

// clampLocked keeps topLine within [0, maxLine-height].
// Caller holds the lock.
func (v *Viewport) clampLocked() {
	limit := v.maxLine - v.height
	if limit < 0 {
		limit = 0
	}
	if v.topLine > limit {
		v.topLine = limit
	}
	if v.topLine < 0 {
		v.topLine = 0
	}
}
