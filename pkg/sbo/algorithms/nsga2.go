// Package algorithms provides the search drivers used to optimize an infill
// criterion over the design space.
package algorithms

import (
	"math"
	"math/rand"
	"time"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
)

const (
	// Name identifies the NSGA-II algorithm.
	Name = "NSGA-II"

	defaultCrossoverRate = 0.8
	defaultMutationRate  = 0.1
)

// EvaluateFunc computes objective and constraint values for a batch of
// design vectors in one synchronous pass, one output row per input row. The
// infill criterion's Evaluate method satisfies this signature.
type EvaluateFunc func(x [][]float64) (f, g [][]float64)

// NSGAII holds the NSGA-II algorithm configuration. Individuals are real
// design vectors; offspring are created with simulated binary crossover and
// polynomial mutation and evaluated batch-wise.
type NSGAII struct {
	PopSize        int
	NumGenerations int
	CrossoverRate  float64
	MutationRate   float64

	bounds []framework.Bounds
	rng    *rand.Rand
}

// NewNSGAII creates a new instance of NSGA-II with the given parameters. A
// nil rng falls back to a time-seeded source; pass a seeded one for
// reproducible runs.
func NewNSGAII(popSize, numGen int, bounds []framework.Bounds, rng *rand.Rand) *NSGAII {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &NSGAII{
		PopSize:        popSize,
		NumGenerations: numGen,
		CrossoverRate:  defaultCrossoverRate,
		MutationRate:   defaultMutationRate,
		bounds:         bounds,
		rng:            rng,
	}
}

// Minimize runs the algorithm against the given batch evaluation function
// and returns the final population with Rank and Distance assigned.
func (n *NSGAII) Minimize(eval EvaluateFunc) []framework.Individual {
	population := n.evaluate(eval, n.initialize())
	// Assign ranks and crowding distances for tournament selection
	framework.RankAndCrowdingIndices(population, len(population))

	for gen := 0; gen < n.NumGenerations; gen++ {
		offspringX := make([][]float64, 0, n.PopSize)
		for len(offspringX) < n.PopSize {
			parent1 := n.tournamentSelect(population)
			parent2 := n.tournamentSelect(population)

			child1, child2 := n.crossover(parent1.Variables, parent2.Variables)
			n.mutate(child1)
			n.mutate(child2)

			offspringX = append(offspringX, child1)
			if len(offspringX) < n.PopSize {
				offspringX = append(offspringX, child2)
			}
		}

		offspring := n.evaluate(eval, offspringX)
		combined := append(population, offspring...)
		population = framework.RankAndCrowding(combined, n.PopSize)
	}

	return population
}

// initialize creates an initial random population of design vectors.
func (n *NSGAII) initialize() [][]float64 {
	x := make([][]float64, n.PopSize)
	for i := range x {
		vars := make([]float64, len(n.bounds))
		for j, b := range n.bounds {
			vars[j] = b.L + n.rng.Float64()*(b.H-b.L)
		}
		x[i] = vars
	}
	return x
}

// evaluate runs one batch evaluation and wraps the results as individuals.
func (n *NSGAII) evaluate(eval EvaluateFunc, x [][]float64) []framework.Individual {
	f, g := eval(x)
	population := make([]framework.Individual, len(x))
	for i := range x {
		population[i] = framework.Individual{
			Variables:  x[i],
			Objectives: f[i],
		}
		if g != nil && g[i] != nil {
			population[i].Constraints = g[i]
		}
	}
	return population
}

// tournamentSelect performs binary tournament selection on rank and crowding
// distance.
func (n *NSGAII) tournamentSelect(population []framework.Individual) framework.Individual {
	best := population[n.rng.Intn(len(population))]
	contestant := population[n.rng.Intn(len(population))]
	if contestant.Rank < best.Rank || (contestant.Rank == best.Rank && contestant.Distance > best.Distance) {
		best = contestant
	}
	return best
}

// crossover performs SBX (Simulated Binary Crossover).
func (n *NSGAII) crossover(parent1, parent2 []float64) ([]float64, []float64) {
	child1 := make([]float64, len(parent1))
	child2 := make([]float64, len(parent2))

	if n.rng.Float64() < n.CrossoverRate {
		for i := range parent1 {
			beta := 0.0
			if n.rng.Float64() <= 0.5 {
				beta = math.Pow(2*n.rng.Float64(), 1.0/3.0)
			} else {
				beta = math.Pow(1.0/(2*(1.0-n.rng.Float64())), 1.0/3.0)
			}

			child1[i] = 0.5 * ((1+beta)*parent1[i] + (1-beta)*parent2[i])
			child2[i] = 0.5 * ((1-beta)*parent1[i] + (1+beta)*parent2[i])

			// Bound checking
			child1[i] = math.Max(n.bounds[i].L, math.Min(n.bounds[i].H, child1[i]))
			child2[i] = math.Max(n.bounds[i].L, math.Min(n.bounds[i].H, child2[i]))
		}
	} else {
		copy(child1, parent1)
		copy(child2, parent2)
	}

	return child1, child2
}

// mutate performs polynomial mutation in place.
func (n *NSGAII) mutate(vars []float64) {
	for i := range vars {
		if n.rng.Float64() < n.MutationRate {
			delta := 0.0
			if n.rng.Float64() <= 0.5 {
				delta = math.Pow(2*n.rng.Float64(), 1.0/3.0) - 1
			} else {
				delta = 1 - math.Pow(2*(1-n.rng.Float64()), 1.0/3.0)
			}

			vars[i] += delta * (n.bounds[i].H - n.bounds[i].L)
			vars[i] = math.Max(n.bounds[i].L, math.Min(n.bounds[i].H, vars[i]))
		}
	}
}
