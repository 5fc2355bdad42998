package geometry

// Index deduplicates points by exact coordinate equality and hands out dense
// ids in insertion order. The zero value is not usable; call NewIndex.
type Index struct {
	ids    map[Point]int
	points []Point
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{ids: make(map[Point]int)}
}

// Add registers p and returns its id. added is false when p was already known.
func (ix *Index) Add(p Point) (id int, added bool) {
	if id, ok := ix.ids[p]; ok {
		return id, false
	}
	id = len(ix.points)
	ix.ids[p] = id
	ix.points = append(ix.points, p)

	return id, true
}

// AddLine registers every vertex of l and returns their ids in order.
func (ix *Index) AddLine(l Line) []int {
	out := make([]int, len(l))
	for i, p := range l {
		out[i], _ = ix.Add(p)
	}

	return out
}

// Lookup returns the id of p if it was added.
func (ix *Index) Lookup(p Point) (int, bool) {
	id, ok := ix.ids[p]
	return id, ok
}

// Point returns the coordinate registered under id.
func (ix *Index) Point(id int) Point { return ix.points[id] }

// Len returns the number of distinct points.
func (ix *Index) Len() int { return len(ix.points) }

// Points returns a copy of the distinct points in insertion order.
func (ix *Index) Points() []Point {
	out := make([]Point, len(ix.points))
	copy(out, ix.points)

	return out
}
