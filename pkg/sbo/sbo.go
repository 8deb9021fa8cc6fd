// Package sbo ties the surrogate infill components together into a single
// iteration step of a surrogate-based optimization loop: train a model
// outside, then ask this package which design points to evaluate next.
package sbo

import (
	"math/rand"

	"k8s.io/klog/v2"

	"github.com/relf/SBArchOpt/pkg/sbo/algorithms"
	"github.com/relf/SBArchOpt/pkg/sbo/framework"
	"github.com/relf/SBArchOpt/pkg/sbo/infill"
)

const (
	defaultSearchPopSize     = 100
	defaultSearchGenerations = 50
)

// SearchOptions configures the infill search.
type SearchOptions struct {
	// PopSize and NumGenerations size the NSGA-II search over the
	// acquisition function; zero values select the package defaults.
	PopSize        int
	NumGenerations int

	// Rand drives candidate generation and selection tie-breaking. A nil
	// value gives non-reproducible runs.
	Rand *rand.Rand
}

// ProposeInfill runs one infill iteration: it rebinds the criterion to the
// current training set, searches the design space for candidates optimizing
// the acquisition function, and selects the batch of nInfill points to
// evaluate next on the real problem.
//
// The criterion must have been initialized against the problem and a trained
// surrogate model before the call.
func ProposeInfill(problem framework.Problem, crit infill.SurrogateInfill, xTrain, yTrain [][]float64, nInfill int, opts SearchOptions) []framework.Individual {
	popSize := opts.PopSize
	if popSize <= 0 {
		popSize = defaultSearchPopSize
	}
	numGen := opts.NumGenerations
	if numGen <= 0 {
		numGen = defaultSearchGenerations
	}

	crit.SetSamples(xTrain, yTrain)

	search := algorithms.NewNSGAII(popSize, numGen, problem.Bounds(), opts.Rand)
	candidates := search.Minimize(func(x [][]float64) (f, g [][]float64) {
		return crit.Evaluate(x)
	})

	selected := crit.SelectInfillSolutions(candidates, nInfill, opts.Rand)

	log := crit.Log()
	klog.V(4).InfoS("proposed infill batch",
		"problem", problem.Name(), "nInfill", len(selected),
		"nEvalInfill", log.NumEvals, "timeEvalInfill", log.EvalTime)
	return selected
}
