package route

import (
	"context"
	"math"

	"github.com/FACorreiaa/loci-travelroute-api/internal/types"
)

const (
	SolverBruteForce = "brute_force"
	SolverHeuristic  = "nearest_neighbor_2opt"

	// DefaultMaxExactStops keeps exhaustive search under ~3.3M permutations.
	DefaultMaxExactStops = 9

	cancelCheckInterval = 1 << 12
)

// Ordering is a visiting order over a slice of places.
type Ordering struct {
	Indices []int
	TotalKm float64
	Solver  string
}

// Sequencer orders places into the shortest open path (no return leg).
type Sequencer struct {
	MaxExactStops int
}

func NewSequencer(maxExactStops int) *Sequencer {
	if maxExactStops <= 0 {
		maxExactStops = DefaultMaxExactStops
	}
	return &Sequencer{MaxExactStops: maxExactStops}
}

// Order finds the visiting order of places. Up to MaxExactStops places the
// result is the global optimum; beyond that a nearest-neighbour tour improved
// by 2-opt is returned.
func (s *Sequencer) Order(ctx context.Context, places []locitypes.Place) (Ordering, error) {
	dist := DistanceMatrix(places)
	if len(places) <= s.MaxExactStops {
		indices, total, err := SolveBruteForce(ctx, dist)
		if err != nil {
			return Ordering{}, err
		}
		return Ordering{Indices: indices, TotalKm: total, Solver: SolverBruteForce}, nil
	}
	indices, total, err := SolveHeuristic(ctx, dist)
	if err != nil {
		return Ordering{}, err
	}
	return Ordering{Indices: indices, TotalKm: total, Solver: SolverHeuristic}, nil
}

// PathLength sums consecutive legs of an open path.
func PathLength(dist [][]float64, path []int) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += dist[path[i-1]][path[i]]
	}
	return total
}

// SolveBruteForce enumerates permutations in lexicographic order and keeps the
// first strictly shorter path, so ties resolve to the lexicographically
// smallest permutation.
func SolveBruteForce(ctx context.Context, dist [][]float64) ([]int, float64, error) {
	n := len(dist)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	if n < 2 {
		return perm, 0, nil
	}

	best := append([]int(nil), perm...)
	bestLen := PathLength(dist, perm)

	for iter := 1; nextPermutation(perm); iter++ {
		if iter%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
		if l := PathLength(dist, perm); l < bestLen {
			bestLen = l
			copy(best, perm)
		}
	}
	return best, bestLen, nil
}

// nextPermutation advances p to its lexicographic successor and reports
// whether one existed.
func nextPermutation(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}

// SolveHeuristic runs nearest neighbour from every start and improves each
// tour with 2-opt, returning the shortest open path found.
func SolveHeuristic(ctx context.Context, dist [][]float64) ([]int, float64, error) {
	n := len(dist)
	if n < 2 {
		path := make([]int, n)
		for i := range path {
			path[i] = i
		}
		return path, 0, nil
	}

	var best []int
	bestLen := math.Inf(1)
	for start := 0; start < n; start++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		path := nearestNeighbor(dist, start)
		twoOpt(dist, path)
		if l := PathLength(dist, path); l < bestLen {
			bestLen = l
			best = path
		}
	}
	return best, bestLen, nil
}

func nearestNeighbor(dist [][]float64, start int) []int {
	n := len(dist)
	visited := make([]bool, n)
	path := make([]int, 0, n)
	cur := start
	visited[cur] = true
	path = append(path, cur)
	for len(path) < n {
		next := -1
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if next < 0 || dist[cur][j] < dist[cur][next] {
				next = j
			}
		}
		visited[next] = true
		path = append(path, next)
		cur = next
	}
	return path
}

// twoOpt reverses segments while doing so shortens the open path. Ends of the
// path have no outer edge, so reversing a prefix or suffix is allowed.
func twoOpt(dist [][]float64, path []int) {
	n := len(path)
	const eps = 1e-12
	for improved := true; improved; {
		improved = false
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				var before, after float64
				if i > 0 {
					before += dist[path[i-1]][path[i]]
					after += dist[path[i-1]][path[j]]
				}
				if j < n-1 {
					before += dist[path[j]][path[j+1]]
					after += dist[path[i]][path[j+1]]
				}
				if after+eps < before {
					for l, r := i, j; l < r; l, r = l+1, r-1 {
						path[l], path[r] = path[r], path[l]
					}
					improved = true
				}
			}
		}
	}
}
