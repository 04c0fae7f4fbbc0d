package history

import "sync"

// Visibility trigger tuning. Loading begins when at least 10% of an item is
// inside the viewport expanded by the preload margin, so payloads start
// arriving shortly before the card actually scrolls in.
const (
	VisibleRatioThreshold = 0.10
	PreloadMarginPx       = 100.0
)

// Bounds places an item on the scroll axis, in logical pixels.
type Bounds struct {
	Top    float64
	Height float64
}

type trackedItem struct {
	bounds    Bounds
	hasBounds bool
	onVisible func()
}

// Tracker is a viewport-intersection watcher: items register a callback and
// a position, and every viewport update fires the callbacks of items whose
// visible ratio meets the threshold. Callbacks fire on every qualifying
// update until Unwatch; one-shot behavior is the subscriber's concern
// (CardLoader unwatches itself after its first trigger).
type Tracker struct {
	mu         sync.Mutex
	items      map[string]*trackedItem
	viewTop    float64
	viewHeight float64
}

// NewTracker creates an empty tracker with a zero-height viewport.
func NewTracker() *Tracker {
	return &Tracker{items: make(map[string]*trackedItem)}
}

// Watch registers a visibility callback for an item. The item fires only
// once Place has given it bounds.
func (t *Tracker) Watch(id string, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[id] = &trackedItem{onVisible: fn}
}

// Unwatch removes an item; its callback will not fire again.
func (t *Tracker) Unwatch(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.items, id)
}

// Place sets an item's position. A no-op for unwatched ids. Fires the
// item's callback immediately if it is already visible in the current
// viewport.
func (t *Tracker) Place(id string, b Bounds) {
	t.mu.Lock()
	item, ok := t.items[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	item.bounds = b
	item.hasBounds = true
	var fire func()
	if t.visibleLocked(b) {
		fire = item.onVisible
	}
	t.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// SetViewport moves the viewport and fires callbacks for every item now
// meeting the visibility threshold. Callbacks run outside the tracker lock.
func (t *Tracker) SetViewport(top, height float64) {
	t.mu.Lock()
	t.viewTop = top
	t.viewHeight = height

	var fires []func()
	for _, item := range t.items {
		if item.hasBounds && t.visibleLocked(item.bounds) {
			fires = append(fires, item.onVisible)
		}
	}
	t.mu.Unlock()

	for _, fn := range fires {
		fn()
	}
}

// visibleLocked computes whether an item meets the visibility threshold
// within the margin-expanded viewport.
func (t *Tracker) visibleLocked(b Bounds) bool {
	viewTop := t.viewTop - PreloadMarginPx
	viewBottom := t.viewTop + t.viewHeight + PreloadMarginPx

	if b.Height <= 0 {
		// Zero-height items count as visible once inside the expanded view
		return b.Top >= viewTop && b.Top <= viewBottom
	}

	itemBottom := b.Top + b.Height
	overlap := min(itemBottom, viewBottom) - max(b.Top, viewTop)
	if overlap <= 0 {
		return false
	}
	return overlap/b.Height >= VisibleRatioThreshold
}
