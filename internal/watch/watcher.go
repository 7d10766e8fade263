// Package watch keeps the last two samples of a polled value so that
// callers can reason about transitions between ticks.
package watch

// Pair is a previous/current sample pair.
type Pair[T comparable] struct {
	Old     T
	Current T
}

// Changed reports whether the value moved between the two samples.
func (p Pair[T]) Changed() bool {
	return p.Old != p.Current
}

// Watcher holds the two most recent samples of one observed quantity.
// The zero value is an empty watcher.
type Watcher[T comparable] struct {
	pair    Pair[T]
	samples int // saturates at 2
}

// Update records a new sample. The first sample has no previous value.
func (w *Watcher[T]) Update(v T) {
	if w.samples > 0 {
		w.pair.Old = w.pair.Current
	}
	w.pair.Current = v
	if w.samples < 2 {
		w.samples++
	}
}

// UpdateIf records v when accept is true. Otherwise the current sample is
// carried forward, or fallback when the watcher has not seen a value yet.
// Either way the watcher advances by one sample.
func (w *Watcher[T]) UpdateIf(accept bool, v, fallback T) {
	if !accept {
		v = fallback
		if cur, ok := w.Current(); ok {
			v = cur
		}
	}
	w.Update(v)
}

// Current returns the latest sample.
func (w *Watcher[T]) Current() (T, bool) {
	if w.samples == 0 {
		var zero T
		return zero, false
	}
	return w.pair.Current, true
}

// Pair returns both samples once two observations exist.
func (w *Watcher[T]) Pair() (Pair[T], bool) {
	if w.samples < 2 {
		return Pair[T]{}, false
	}
	return w.pair, true
}

// Changed is false until two samples exist.
func (w *Watcher[T]) Changed() bool {
	p, ok := w.Pair()
	return ok && p.Changed()
}

// Reset discards all samples.
func (w *Watcher[T]) Reset() {
	*w = Watcher[T]{}
}
