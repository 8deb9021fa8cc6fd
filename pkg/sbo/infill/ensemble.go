package infill

import (
	"math/rand"
	"time"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
	"github.com/relf/SBArchOpt/pkg/sbo/surrogate"
)

// EnsembleInfill optimizes multiple underlying infill criteria
// simultaneously, thereby getting the best compromise between what the
// different infills suggest. The sub-criteria share one surrogate prediction
// per evaluation and their acquisition objectives are stacked column-wise;
// each sub-criterion is forced to the IgnoreConstraints strategy so that
// constraints are not penalized twice.
//
// More information and application:
// Lyu, W. et al., "Batch Bayesian optimization via multi-objective
// acquisition ensemble for automated analog circuit design", ICML 2018.
//
// Inspired by:
// Cowen-Rivers, A.I. et al., "HEBO: pushing the limits of sample-efficient
// hyper-parameter optimisation", JAIR 74, 2022.
type EnsembleInfill struct {
	constrainedBase

	Infills []ConstrainedInfill
}

// NewEnsembleInfill creates an ensemble over the given sub-criteria. With no
// sub-criteria given, a default set is chosen at Initialize time based on the
// problem's objective count. A nil strategy selects MeanConstraintPrediction
// for the ensemble's own constraint handling.
func NewEnsembleInfill(infills []ConstrainedInfill, strategy ConstraintStrategy) *EnsembleInfill {
	e := &EnsembleInfill{Infills: infills}
	e.bind(e, strategy)
	return e
}

func (e *EnsembleInfill) Initialize(problem framework.Problem, model surrogate.Model, norm surrogate.Normalization) {
	// Default sub-criteria if none were given
	if len(e.Infills) == 0 {
		if problem.NumObjectives() == 1 {
			e.Infills = []ConstrainedInfill{
				NewFunctionEstimateConstrainedInfill(nil),
				NewLowerConfidenceBoundInfill(DefaultLCBAlpha, nil),
				NewExpectedImprovementInfill(nil),
				NewProbabilityOfImprovementInfill(0, nil),
			}
		} else {
			e.Infills = []ConstrainedInfill{
				NewFunctionEstimateConstrainedInfill(nil),
				NewLowerConfidenceBoundInfill(DefaultLCBAlpha, nil),
			}
		}
	}

	// Constraints are handled by the ensemble itself
	for _, inf := range e.Infills {
		inf.setConstraintStrategy(NewIgnoreConstraints())
		inf.Initialize(problem, model, norm)
	}

	e.constrainedBase.Initialize(problem, model, norm)
}

func (e *EnsembleInfill) SetSamples(xTrain, yTrain [][]float64) {
	e.base.SetSamples(xTrain, yTrain)
	for _, inf := range e.Infills {
		inf.SetSamples(xTrain, yTrain)
	}
}

// NumInfillObjectives is the sum of the sub-criteria arities.
func (e *EnsembleInfill) NumInfillObjectives() int {
	e.ensureInitialized()
	n := 0
	for _, inf := range e.Infills {
		n += inf.NumInfillObjectives()
	}
	return n
}

func (e *EnsembleInfill) EvaluateObjectives(fMean, fVar [][]float64) [][]float64 {
	out := make([][]float64, len(fMean))
	for _, inf := range e.Infills {
		for i, row := range inf.EvaluateObjectives(fMean, fVar) {
			out[i] = append(out[i], row...)
		}
	}
	return out
}

// SelectInfillSolutions picks a diverse batch from the candidate population.
// Candidates are first reduced to the non-dominated set in terms of the real
// problem objectives (estimated by the surrogate means), deprioritizing
// infeasible points. A front smaller than the batch is returned whole; a
// batch no larger than the ensemble arity is sampled uniformly from the
// front; otherwise the most crowded point is removed one at a time, since
// each removal changes the crowding distances of its neighbors.
func (e *EnsembleInfill) SelectInfillSolutions(pop []framework.Individual, nInfill int, rng *rand.Rand) []framework.Individual {
	e.ensureInitialized()
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// Estimate the real objectives of the candidate designs
	x := make([][]float64, len(pop))
	for i := range pop {
		x[i] = pop[i].Variables
	}
	fReal, _ := e.Predict(x)

	optIdx := filterOptimumIndices(pop, fReal)

	// Fewer optimal candidates than requested: return them all
	if len(optIdx) <= nInfill {
		return gather(pop, optIdx)
	}

	// Batch not larger than the ensemble arity: sample from the front
	if nInfill <= e.NumInfillObjectives() {
		perm := rng.Perm(len(optIdx))
		selected := make([]int, nInfill)
		for i := range selected {
			selected[i] = optIdx[perm[i]]
		}
		return gather(pop, selected)
	}

	// Repeatedly eliminate the most crowded front point
	for len(optIdx) > nInfill {
		objs := make([][]float64, len(optIdx))
		for i, j := range optIdx {
			objs[i] = fReal[j]
		}
		crowding := framework.CrowdingDistances(objs)

		minCrowding := crowding[0]
		for _, c := range crowding[1:] {
			if c < minCrowding {
				minCrowding = c
			}
		}
		var ties []int
		for i, c := range crowding {
			if c == minCrowding {
				ties = append(ties, i)
			}
		}
		remove := ties[0]
		if len(ties) > 1 {
			remove = ties[rng.Intn(len(ties))]
		}
		optIdx = append(optIdx[:remove], optIdx[remove+1:]...)
	}
	return gather(pop, optIdx)
}

// filterOptimumIndices returns the candidate indices forming the feasible
// non-dominated set of the given objective estimates; without any feasible
// candidate, the least infeasible one.
func filterOptimumIndices(pop []framework.Individual, objs [][]float64) []int {
	var feasible []int
	for i := range pop {
		if pop[i].IsFeasible() {
			feasible = append(feasible, i)
		}
	}

	if len(feasible) == 0 {
		best := 0
		bestCV := pop[0].ConstraintViolation()
		for i := 1; i < len(pop); i++ {
			if cv := pop[i].ConstraintViolation(); cv < bestCV {
				best, bestCV = i, cv
			}
		}
		return []int{best}
	}

	feasObjs := make([][]float64, len(feasible))
	for i, j := range feasible {
		feasObjs[i] = objs[j]
	}
	var out []int
	for _, i := range framework.NonDominatedIndices(feasObjs) {
		out = append(out, feasible[i])
	}
	return out
}

func gather(pop []framework.Individual, idx []int) []framework.Individual {
	out := make([]framework.Individual, len(idx))
	for i, j := range idx {
		out[i] = pop[j]
	}
	return out
}
