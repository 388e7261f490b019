// Package trace keeps the recent path of the outer bob in a fixed-size ring,
// so memory and redraw cost stay constant over a long session.
package trace

const DefaultCapacity = 600

type Point struct {
	X, Y float64
}

// Ring holds the last Cap() points pushed. It is not safe for concurrent use.
type Ring struct {
	buf   []Point
	start int
	n     int
}

// NewRing returns a ring of capacity k, or DefaultCapacity when k <= 0.
func NewRing(k int) *Ring {
	if k <= 0 {
		k = DefaultCapacity
	}
	return &Ring{buf: make([]Point, k)}
}

// Push appends p, evicting the oldest point when full.
func (r *Ring) Push(p Point) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = p
		r.n++
		return
	}
	r.buf[r.start] = p
	r.start = (r.start + 1) % len(r.buf)
}

func (r *Ring) Len() int { return r.n }
func (r *Ring) Cap() int { return len(r.buf) }

// Each calls fn from oldest to newest.
func (r *Ring) Each(fn func(i int, p Point)) {
	for i := 0; i < r.n; i++ {
		fn(i, r.buf[(r.start+i)%len(r.buf)])
	}
}

// Points returns a copy, oldest first.
func (r *Ring) Points() []Point {
	out := make([]Point, 0, r.n)
	r.Each(func(_ int, p Point) { out = append(out, p) })
	return out
}

// Last returns the newest point.
func (r *Ring) Last() (Point, bool) {
	if r.n == 0 {
		return Point{}, false
	}
	return r.buf[(r.start+r.n-1)%len(r.buf)], true
}

func (r *Ring) Reset() {
	r.start, r.n = 0, 0
}
