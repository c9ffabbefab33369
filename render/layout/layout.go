// Package layout positions graph nodes for network figures.
//
// Every algorithm is deterministic for a given node/edge input: randomized
// algorithms seed from a hash of the node names, so the same graph always
// produces the same picture.
package layout

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// Algorithm names a node-positioning strategy.
type Algorithm string

const (
	// Spring is a force-directed (Fruchterman–Reingold) layout.
	Spring Algorithm = "spring"
	// Circular places nodes evenly on a circle in input order.
	Circular Algorithm = "circular"
	// Shell places nodes on concentric rings, highest-degree innermost.
	Shell Algorithm = "shell"
	// Grid places nodes on a square lattice in input order.
	Grid Algorithm = "grid"
	// Random scatters nodes uniformly (seeded, so still deterministic).
	Random Algorithm = "random"
)

// Parse resolves a layout name; unknown names report ok=false.
func Parse(s string) (Algorithm, bool) {
	switch Algorithm(s) {
	case Spring, Circular, Shell, Grid, Random:
		return Algorithm(s), true
	default:
		return "", false
	}
}

// Point is a node position in an abstract unit coordinate space.
type Point struct {
	X, Y float64
}

// Positions computes one point per node. Edges are index pairs into nodes.
// An unrecognized algorithm falls back to Spring, mirroring the tolerant
// lookup callers expect from layout selection.
func Positions(nodes []string, edges [][2]int, alg Algorithm) []Point {
	if len(nodes) == 0 {
		return nil
	}
	switch alg {
	case Circular:
		return circular(len(nodes))
	case Shell:
		return shell(nodes, edges)
	case Grid:
		return grid(len(nodes))
	case Random:
		return random(nodes)
	default:
		return spring(nodes, edges)
	}
}

// seed derives a deterministic RNG seed from the node names.
func seed(nodes []string) int64 {
	h := fnv.New64a()
	for _, n := range nodes {
		h.Write([]byte(n))
		h.Write([]byte{0})
	}
	return int64(h.Sum64())
}

func circular(n int) []Point {
	pts := make([]Point, n)
	for i := range pts {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point{X: math.Cos(angle), Y: math.Sin(angle)}
	}
	return pts
}

func grid(n int) []Point {
	side := int(math.Ceil(math.Sqrt(float64(n))))
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: float64(i % side), Y: float64(i / side)}
	}
	return pts
}

func random(nodes []string) []Point {
	rng := rand.New(rand.NewSource(seed(nodes)))
	pts := make([]Point, len(nodes))
	for i := range pts {
		pts[i] = Point{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}
	}
	return pts
}

// shell rings nodes by degree: hubs in the center, leaves outside.
// Ring r (1-based) holds up to 8*r nodes.
func shell(nodes []string, edges [][2]int) []Point {
	degree := make([]int, len(nodes))
	for _, e := range edges {
		degree[e[0]]++
		degree[e[1]]++
	}

	order := make([]int, len(nodes))
	for i := range order {
		order[i] = i
	}
	// Stable by construction: ties keep input order.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && degree[order[j]] > degree[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	pts := make([]Point, len(nodes))
	placed := 0
	for ring := 1; placed < len(order); ring++ {
		capacity := 8 * ring
		if remaining := len(order) - placed; capacity > remaining {
			capacity = remaining
		}
		radius := float64(ring)
		for i := 0; i < capacity; i++ {
			angle := 2 * math.Pi * float64(i) / float64(capacity)
			pts[order[placed+i]] = Point{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
		}
		placed += capacity
	}
	return pts
}

// spring is a Fruchterman–Reingold force simulation over a fixed iteration
// budget with linear cooling. Positions start from the seeded RNG, so the
// result is reproducible.
func spring(nodes []string, edges [][2]int) []Point {
	n := len(nodes)
	if n == 1 {
		return []Point{{}}
	}

	rng := rand.New(rand.NewSource(seed(nodes)))
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}
	}

	const iterations = 60
	k := math.Sqrt(4.0 / float64(n)) // ideal edge length in a 2x2 area
	temp := 0.2

	disp := make([]Point, n)
	for iter := 0; iter < iterations; iter++ {
		for i := range disp {
			disp[i] = Point{}
		}

		// Repulsion between every pair.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := pts[i].X - pts[j].X
				dy := pts[i].Y - pts[j].Y
				dist := math.Hypot(dx, dy)
				if dist < 1e-9 {
					dist = 1e-9
					dx = 1e-9
				}
				force := k * k / dist
				disp[i].X += dx / dist * force
				disp[i].Y += dy / dist * force
				disp[j].X -= dx / dist * force
				disp[j].Y -= dy / dist * force
			}
		}

		// Attraction along edges.
		for _, e := range edges {
			a, b := e[0], e[1]
			dx := pts[a].X - pts[b].X
			dy := pts[a].Y - pts[b].Y
			dist := math.Hypot(dx, dy)
			if dist < 1e-9 {
				continue
			}
			force := dist * dist / k
			disp[a].X -= dx / dist * force
			disp[a].Y -= dy / dist * force
			disp[b].X += dx / dist * force
			disp[b].Y += dy / dist * force
		}

		// Apply displacement capped by temperature.
		for i := 0; i < n; i++ {
			d := math.Hypot(disp[i].X, disp[i].Y)
			if d < 1e-9 {
				continue
			}
			step := math.Min(d, temp)
			pts[i].X += disp[i].X / d * step
			pts[i].Y += disp[i].Y / d * step
		}
		temp *= 1 - float64(iter)/float64(iterations)
	}
	return pts
}
