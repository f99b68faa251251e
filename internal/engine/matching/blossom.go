// internal/engine/matching/blossom.go
//
// Maximum weight matching in general graphs via the blossom algorithm
// (Galil's primal-dual formulation, O(n^3)). Weights are integers so the
// dual variables stay exact and the result is fully deterministic.
package matching

// Edge is one undirected weighted edge between vertex indices U and V.
type Edge struct {
	U, V   int
	Weight int64
}

// Label values used during a stage. A vertex or blossom is unlabeled,
// an outer (S) node, or an inner (T) node; bit 3 marks S-blossoms
// already visited while tracing alternating paths.
const (
	labelFree = 0
	labelS    = 1
	labelT    = 2
)

// MaxWeightMatching computes a maximum weight matching over n vertices.
// When maxCardinality is set, only maximum cardinality matchings are
// considered and weight breaks ties. The result maps each vertex to its
// mate, or -1 when unmatched.
func MaxWeightMatching(n int, edges []Edge, maxCardinality bool) []int {
	if n == 0 || len(edges) == 0 {
		mate := make([]int, n)
		for i := range mate {
			mate[i] = -1
		}
		return mate
	}

	s := newBlossomState(n, edges, maxCardinality)
	s.solve()

	for v := 0; v < n; v++ {
		if s.mate[v] >= 0 {
			s.mate[v] = s.endpoint[s.mate[v]]
		}
	}
	return s.mate
}

type blossomState struct {
	nvertex        int
	edges          []Edge
	maxCardinality bool

	// endpoint[p] is the vertex at endpoint p; edge k owns endpoints
	// 2k and 2k+1. neighbend[v] lists the remote endpoints of edges
	// incident to v.
	endpoint  []int
	neighbend [][]int

	// mate[v] is the remote endpoint of v's matched edge, or -1.
	mate []int

	// Per vertex-or-blossom structural state. Top-level blossoms carry
	// the labels; labelend[b] is the endpoint through which b received
	// its label.
	label            []int
	labelend         []int
	inblossom        []int
	blossomparent    []int
	blossomchilds    [][]int
	blossombase      []int
	blossomendps     [][]int
	bestedge         []int
	blossombestedges [][]int
	unusedblossoms   []int
	dualvar          []int64
	allowedge        []bool
	queue            []int
}

func newBlossomState(n int, edges []Edge, maxCardinality bool) *blossomState {
	s := &blossomState{
		nvertex:        n,
		edges:          edges,
		maxCardinality: maxCardinality,
	}

	var maxweight int64
	for _, e := range edges {
		if e.Weight > maxweight {
			maxweight = e.Weight
		}
	}

	nedge := len(edges)
	s.endpoint = make([]int, 2*nedge)
	s.neighbend = make([][]int, n)
	for k, e := range edges {
		s.endpoint[2*k] = e.U
		s.endpoint[2*k+1] = e.V
		s.neighbend[e.U] = append(s.neighbend[e.U], 2*k+1)
		s.neighbend[e.V] = append(s.neighbend[e.V], 2*k)
	}

	s.mate = filled(n, -1)
	s.label = make([]int, 2*n)
	s.labelend = filled(2*n, -1)
	s.inblossom = iota2(n)
	s.blossomparent = filled(2*n, -1)
	s.blossomchilds = make([][]int, 2*n)
	s.blossombase = append(iota2(n), filled(n, -1)...)
	s.blossomendps = make([][]int, 2*n)
	s.bestedge = filled(2*n, -1)
	s.blossombestedges = make([][]int, 2*n)
	s.unusedblossoms = make([]int, 0, n)
	for b := n; b < 2*n; b++ {
		s.unusedblossoms = append(s.unusedblossoms, b)
	}
	s.dualvar = make([]int64, 2*n)
	for v := 0; v < n; v++ {
		s.dualvar[v] = maxweight
	}
	s.allowedge = make([]bool, nedge)
	return s
}

func filled(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func iota2(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// slack of edge k under the current duals. Always even between two
// top-level S nodes, so halving it keeps the duals integral.
func (s *blossomState) slack(k int) int64 {
	e := s.edges[k]
	return s.dualvar[e.U] + s.dualvar[e.V] - 2*e.Weight
}

func (s *blossomState) blossomLeaves(b int, out []int) []int {
	if b < s.nvertex {
		return append(out, b)
	}
	for _, t := range s.blossomchilds[b] {
		out = s.blossomLeaves(t, out)
	}
	return out
}

// assignLabel labels w's top-level blossom; S nodes enter the scan queue
// and T nodes immediately propagate an S label across their matched edge.
func (s *blossomState) assignLabel(w, t, p int) {
	b := s.inblossom[w]
	s.label[w] = t
	s.label[b] = t
	s.labelend[w] = p
	s.labelend[b] = p
	s.bestedge[w] = -1
	s.bestedge[b] = -1
	if t == labelS {
		s.queue = s.blossomLeaves(b, s.queue)
	} else if t == labelT {
		base := s.blossombase[b]
		s.assignLabel(s.endpoint[s.mate[base]], labelS, s.mate[base]^1)
	}
}

// scanBlossom walks up the alternating trees from v and w. Returns the
// base vertex of a new blossom when the trees meet, or -1 when the two
// paths reach distinct roots and an augmenting path exists.
func (s *blossomState) scanBlossom(v, w int) int {
	var path []int
	base := -1
	for v != -1 || w != -1 {
		b := s.inblossom[v]
		if s.label[b]&4 != 0 {
			base = s.blossombase[b]
			break
		}
		path = append(path, b)
		s.label[b] = 5
		if s.labelend[b] == -1 {
			v = -1
		} else {
			v = s.endpoint[s.labelend[b]]
			b = s.inblossom[v]
			v = s.endpoint[s.labelend[b]]
		}
		if w != -1 {
			v, w = w, v
		}
	}
	for _, b := range path {
		s.label[b] = labelS
	}
	return base
}

// addBlossom contracts the odd cycle closed by edge k through base into a
// fresh blossom and recomputes its best-edge lists.
func (s *blossomState) addBlossom(base, k int) {
	v, w := s.edges[k].U, s.edges[k].V
	bb := s.inblossom[base]
	bv := s.inblossom[v]
	bw := s.inblossom[w]

	b := s.unusedblossoms[len(s.unusedblossoms)-1]
	s.unusedblossoms = s.unusedblossoms[:len(s.unusedblossoms)-1]

	s.blossombase[b] = base
	s.blossomparent[b] = -1
	s.blossomparent[bb] = b

	var path, endps []int
	for bv != bb {
		s.blossomparent[bv] = b
		path = append(path, bv)
		endps = append(endps, s.labelend[bv])
		v = s.endpoint[s.labelend[bv]]
		bv = s.inblossom[v]
	}
	path = append(path, bb)
	reverse(path)
	reverse(endps)
	endps = append(endps, 2*k)
	for bw != bb {
		s.blossomparent[bw] = b
		path = append(path, bw)
		endps = append(endps, s.labelend[bw]^1)
		w = s.endpoint[s.labelend[bw]]
		bw = s.inblossom[w]
	}
	s.blossomchilds[b] = path
	s.blossomendps[b] = endps

	s.label[b] = labelS
	s.labelend[b] = s.labelend[bb]
	s.dualvar[b] = 0
	for _, leaf := range s.blossomLeaves(b, nil) {
		if s.label[s.inblossom[leaf]] == labelT {
			s.queue = append(s.queue, leaf)
		}
		s.inblossom[leaf] = b
	}

	bestedgeto := filled(2*s.nvertex, -1)
	for _, child := range path {
		var nblists [][]int
		if s.blossombestedges[child] == nil {
			for _, leaf := range s.blossomLeaves(child, nil) {
				list := make([]int, 0, len(s.neighbend[leaf]))
				for _, p := range s.neighbend[leaf] {
					list = append(list, p/2)
				}
				nblists = append(nblists, list)
			}
		} else {
			nblists = [][]int{s.blossombestedges[child]}
		}
		for _, nblist := range nblists {
			for _, ek := range nblist {
				j := s.edges[ek].V
				if s.inblossom[j] == b {
					j = s.edges[ek].U
				}
				bj := s.inblossom[j]
				if bj != b && s.label[bj] == labelS &&
					(bestedgeto[bj] == -1 || s.slack(ek) < s.slack(bestedgeto[bj])) {
					bestedgeto[bj] = ek
				}
			}
		}
		s.blossombestedges[child] = nil
		s.bestedge[child] = -1
	}

	best := make([]int, 0, len(bestedgeto))
	for _, ek := range bestedgeto {
		if ek != -1 {
			best = append(best, ek)
		}
	}
	s.blossombestedges[b] = best
	s.bestedge[b] = -1
	for _, ek := range best {
		if s.bestedge[b] == -1 || s.slack(ek) < s.slack(s.bestedge[b]) {
			s.bestedge[b] = ek
		}
	}
}

// expandBlossom dissolves blossom b, relabeling its children when the
// expansion happens mid-stage on a T-blossom that hit dual zero.
func (s *blossomState) expandBlossom(b int, endstage bool) {
	for _, child := range s.blossomchilds[b] {
		s.blossomparent[child] = -1
		if child < s.nvertex {
			s.inblossom[child] = child
		} else if endstage && s.dualvar[child] == 0 {
			s.expandBlossom(child, endstage)
		} else {
			for _, leaf := range s.blossomLeaves(child, nil) {
				s.inblossom[leaf] = child
			}
		}
	}

	if !endstage && s.label[b] == labelT {
		entrychild := s.inblossom[s.endpoint[s.labelend[b]^1]]
		childs := s.blossomchilds[b]
		endps := s.blossomendps[b]
		j := indexOf(childs, entrychild)
		var jstep, endptrick int
		if j&1 != 0 {
			j -= len(childs)
			jstep = 1
			endptrick = 0
		} else {
			jstep = -1
			endptrick = 1
		}
		p := s.labelend[b]
		for j != 0 {
			s.label[s.endpoint[p^1]] = labelFree
			s.label[s.endpoint[at(endps, j-endptrick)^endptrick^1]] = labelFree
			s.assignLabel(s.endpoint[p^1], labelT, p)
			s.allowedge[at(endps, j-endptrick)/2] = true
			j += jstep
			p = at(endps, j-endptrick) ^ endptrick
			s.allowedge[p/2] = true
			j += jstep
		}
		bv := at(childs, j)
		s.label[s.endpoint[p^1]] = labelT
		s.label[bv] = labelT
		s.labelend[s.endpoint[p^1]] = p
		s.labelend[bv] = p
		s.bestedge[bv] = -1
		j += jstep
		for at(childs, j) != entrychild {
			bv = at(childs, j)
			if s.label[bv] == labelS {
				j += jstep
				continue
			}
			var labeled int = -1
			for _, leaf := range s.blossomLeaves(bv, nil) {
				if s.label[leaf] != labelFree {
					labeled = leaf
					break
				}
			}
			if labeled != -1 {
				s.label[labeled] = labelFree
				s.label[s.endpoint[s.mate[s.blossombase[bv]]]] = labelFree
				s.assignLabel(labeled, labelT, s.labelend[labeled])
			}
			j += jstep
		}
	}

	s.label[b] = labelFree
	s.labelend[b] = -1
	s.blossomchilds[b] = nil
	s.blossomendps[b] = nil
	s.blossombase[b] = -1
	s.blossombestedges[b] = nil
	s.bestedge[b] = -1
	s.unusedblossoms = append(s.unusedblossoms, b)
}

// augmentBlossom swaps matched and unmatched edges around blossom b so
// that vertex v becomes its new base.
func (s *blossomState) augmentBlossom(b, v int) {
	t := v
	for s.blossomparent[t] != b {
		t = s.blossomparent[t]
	}
	if t >= s.nvertex {
		s.augmentBlossom(t, v)
	}

	childs := s.blossomchilds[b]
	endps := s.blossomendps[b]
	i := indexOf(childs, t)
	j := i
	var jstep, endptrick int
	if i&1 != 0 {
		j -= len(childs)
		jstep = 1
		endptrick = 0
	} else {
		jstep = -1
		endptrick = 1
	}
	for j != 0 {
		j += jstep
		t = at(childs, j)
		p := at(endps, j-endptrick) ^ endptrick
		if t >= s.nvertex {
			s.augmentBlossom(t, s.endpoint[p])
		}
		j += jstep
		t = at(childs, j)
		if t >= s.nvertex {
			s.augmentBlossom(t, s.endpoint[p^1])
		}
		s.mate[s.endpoint[p]] = p ^ 1
		s.mate[s.endpoint[p^1]] = p
	}
	s.blossomchilds[b] = append(append([]int{}, childs[i:]...), childs[:i]...)
	s.blossomendps[b] = append(append([]int{}, endps[i:]...), endps[:i]...)
	s.blossombase[b] = s.blossombase[s.blossomchilds[b][0]]
}

// augmentMatching flips matched edges along the augmenting path through
// edge k, growing the matching by one.
func (s *blossomState) augmentMatching(k int) {
	starts := [2][2]int{
		{s.edges[k].U, 2*k + 1},
		{s.edges[k].V, 2 * k},
	}
	for _, sp := range starts {
		v, p := sp[0], sp[1]
		for {
			bs := s.inblossom[v]
			if bs >= s.nvertex {
				s.augmentBlossom(bs, v)
			}
			s.mate[v] = p
			if s.labelend[bs] == -1 {
				break
			}
			t := s.endpoint[s.labelend[bs]]
			bt := s.inblossom[t]
			v = s.endpoint[s.labelend[bt]]
			j := s.endpoint[s.labelend[bt]^1]
			if bt >= s.nvertex {
				s.augmentBlossom(bt, j)
			}
			s.mate[j] = s.labelend[bt]
			p = s.labelend[bt] ^ 1
		}
	}
}

func (s *blossomState) solve() {
	n := s.nvertex
	for stage := 0; stage < n; stage++ {
		for i := range s.label {
			s.label[i] = labelFree
		}
		for i := range s.bestedge {
			s.bestedge[i] = -1
		}
		for b := n; b < 2*n; b++ {
			s.blossombestedges[b] = nil
		}
		for i := range s.allowedge {
			s.allowedge[i] = false
		}
		s.queue = s.queue[:0]

		for v := 0; v < n; v++ {
			if s.mate[v] == -1 && s.label[s.inblossom[v]] == labelFree {
				s.assignLabel(v, labelS, -1)
			}
		}

		augmented := false
		for {
			for len(s.queue) > 0 && !augmented {
				v := s.queue[len(s.queue)-1]
				s.queue = s.queue[:len(s.queue)-1]
				for _, p := range s.neighbend[v] {
					k := p / 2
					w := s.endpoint[p]
					if s.inblossom[v] == s.inblossom[w] {
						continue
					}
					var kslack int64
					if !s.allowedge[k] {
						kslack = s.slack(k)
						if kslack <= 0 {
							s.allowedge[k] = true
						}
					}
					if s.allowedge[k] {
						if s.label[s.inblossom[w]] == labelFree {
							s.assignLabel(w, labelT, p^1)
						} else if s.label[s.inblossom[w]] == labelS {
							base := s.scanBlossom(v, w)
							if base >= 0 {
								s.addBlossom(base, k)
							} else {
								s.augmentMatching(k)
								augmented = true
								break
							}
						} else if s.label[w] == labelFree {
							s.label[w] = labelT
							s.labelend[w] = p ^ 1
						}
					} else if s.label[s.inblossom[w]] == labelS {
						b := s.inblossom[v]
						if s.bestedge[b] == -1 || kslack < s.slack(s.bestedge[b]) {
							s.bestedge[b] = k
						}
					} else if s.label[w] == labelFree {
						if s.bestedge[w] == -1 || kslack < s.slack(s.bestedge[w]) {
							s.bestedge[w] = k
						}
					}
				}
			}
			if augmented {
				break
			}

			// Dual update: pick the smallest delta that keeps the
			// solution feasible and either terminates the stage or
			// makes progress.
			deltatype := -1
			var delta int64
			deltaedge, deltablossom := -1, -1

			if !s.maxCardinality {
				deltatype = 1
				delta = minDual(s.dualvar[:n])
			}
			for v := 0; v < n; v++ {
				if s.label[s.inblossom[v]] == labelFree && s.bestedge[v] != -1 {
					d := s.slack(s.bestedge[v])
					if deltatype == -1 || d < delta {
						delta = d
						deltatype = 2
						deltaedge = s.bestedge[v]
					}
				}
			}
			for b := 0; b < 2*n; b++ {
				if s.blossomparent[b] == -1 && s.label[b] == labelS && s.bestedge[b] != -1 {
					d := s.slack(s.bestedge[b]) / 2
					if deltatype == -1 || d < delta {
						delta = d
						deltatype = 3
						deltaedge = s.bestedge[b]
					}
				}
			}
			for b := n; b < 2*n; b++ {
				if s.blossombase[b] >= 0 && s.blossomparent[b] == -1 &&
					s.label[b] == labelT &&
					(deltatype == -1 || s.dualvar[b] < delta) {
					delta = s.dualvar[b]
					deltatype = 4
					deltablossom = b
				}
			}
			if deltatype == -1 {
				deltatype = 1
				delta = minDual(s.dualvar[:n])
				if delta < 0 {
					delta = 0
				}
			}

			for v := 0; v < n; v++ {
				switch s.label[s.inblossom[v]] {
				case labelS:
					s.dualvar[v] -= delta
				case labelT:
					s.dualvar[v] += delta
				}
			}
			for b := n; b < 2*n; b++ {
				if s.blossombase[b] >= 0 && s.blossomparent[b] == -1 {
					switch s.label[b] {
					case labelS:
						s.dualvar[b] += delta
					case labelT:
						s.dualvar[b] -= delta
					}
				}
			}

			if deltatype == 1 {
				break
			} else if deltatype == 2 {
				s.allowedge[deltaedge] = true
				i := s.edges[deltaedge].U
				if s.label[s.inblossom[i]] == labelFree {
					i = s.edges[deltaedge].V
				}
				s.queue = append(s.queue, i)
			} else if deltatype == 3 {
				s.allowedge[deltaedge] = true
				s.queue = append(s.queue, s.edges[deltaedge].U)
			} else {
				s.expandBlossom(deltablossom, false)
			}
		}

		if !augmented {
			break
		}
		for b := n; b < 2*n; b++ {
			if s.blossomparent[b] == -1 && s.blossombase[b] >= 0 &&
				s.label[b] == labelS && s.dualvar[b] == 0 {
				s.expandBlossom(b, true)
			}
		}
	}
}

func minDual(vals []int64) int64 {
	min := vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// at indexes with python-style negative wraparound, which the blossom
// rotation logic relies on.
func at(s []int, i int) int {
	if i < 0 {
		i += len(s)
	}
	return s[i]
}
