package assets

type pendingRelease struct {
	frame   uint64
	release func()
}

// ReleaseQueue holds GPU releases until the frame they were issued in has
// been completed by the graphics context.
type ReleaseQueue struct {
	pending []pendingRelease
}

// Defer schedules release to run once frame has completed
func (q *ReleaseQueue) Defer(frame uint64, release func()) {
	q.pending = append(q.pending, pendingRelease{frame: frame, release: release})
}

// Collect runs every release whose frame is at or before completed, in the
// order they were deferred. It returns how many ran.
func (q *ReleaseQueue) Collect(completed uint64) int {
	kept := q.pending[:0]
	ran := 0
	for _, p := range q.pending {
		if p.frame <= completed {
			p.release()
			ran++
			continue
		}
		kept = append(kept, p)
	}
	clear(q.pending[len(kept):])
	q.pending = kept
	return ran
}

// Flush runs every pending release regardless of frame
func (q *ReleaseQueue) Flush() int {
	n := len(q.pending)
	for _, p := range q.pending {
		p.release()
	}
	q.pending = q.pending[:0]
	return n
}

// Len returns the number of pending releases
func (q *ReleaseQueue) Len() int {
	return len(q.pending)
}
