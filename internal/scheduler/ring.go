package scheduler

// ring is a fixed-capacity run history; the oldest entry is dropped first.
type ring struct {
	buf  []Run
	next int
	full bool
}

func newRing(n int) ring { return ring{buf: make([]Run, n)} }

func (r *ring) push(run Run) {
	r.buf[r.next] = run
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

// items returns runs oldest first.
func (r *ring) items() []Run {
	if !r.full {
		return append([]Run{}, r.buf[:r.next]...)
	}
	out := make([]Run, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}
