package infill

import (
	"math"
	"math/rand"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
)

// MinVariancePFInfill implements Minimization of the Variance of
// Kriging-Predicted Front (MVPF).
//
// The acquisition objectives are the plain function estimates; the selection
// step then restricts candidates to the resulting predicted Pareto front and
// picks the points with the highest variance. This way, search is performed
// near the Pareto front, but with a high potential for exploration.
//
// Based on dos Passos, A.G., "Multi-Objective Optimization with Kriging
// Surrogates Using 'moko'", 2018, 10.1590/1679-78254324
type MinVariancePFInfill struct {
	FunctionEstimateConstrainedInfill
}

// NewMinVariancePFInfill creates the MVPF criterion; a nil strategy selects
// MeanConstraintPrediction.
func NewMinVariancePFInfill(strategy ConstraintStrategy) *MinVariancePFInfill {
	m := &MinVariancePFInfill{}
	m.bind(m, strategy)
	return m
}

// SelectInfillSolutions restricts the candidates to the predicted Pareto
// front and ranks them by 1-sqrt(variance) with rank and crowding selection,
// so that the highest-variance front points are proposed.
func (m *MinVariancePFInfill) SelectInfillSolutions(pop []framework.Individual, nInfill int, rng *rand.Rand) []framework.Individual {
	m.ensureInitialized()

	// Pareto front of the predicted objective values
	objs := make([][]float64, len(pop))
	for i := range pop {
		objs[i] = pop[i].Objectives
	}
	iPF := framework.NonDominatedIndices(objs)

	popPF := make([]framework.Individual, len(iPF))
	xPF := make([][]float64, len(iPF))
	for i, j := range iPF {
		popPF[i] = pop[j]
		xPF[i] = pop[j].Variables
	}

	// Rank the front points by variance instead of predicted value
	fVar, _ := m.PredictVariance(xPF)
	varPop := make([]framework.Individual, len(popPF))
	for i := range popPF {
		stdObj := make([]float64, len(fVar[i]))
		for j, v := range fVar[i] {
			stdObj[j] = 1 - math.Sqrt(v)
		}
		varPop[i] = framework.Individual{
			Variables:   popPF[i].Variables,
			Objectives:  stdObj,
			Constraints: popPF[i].Constraints,
		}
	}

	selected := framework.RankAndCrowdingIndices(varPop, nInfill)
	out := make([]framework.Individual, len(selected))
	for i, j := range selected {
		out[i] = popPF[j]
	}
	return out
}
