package infill

import (
	"k8s.io/klog/v2"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
)

// DefaultInfill returns the default infill criterion for a problem according
// to the following logic:
//   - If evaluations can be run in parallel:
//   - Single-objective: Ensemble of EI, LCB, PoI with batch size nParallel
//   - Multi-objective:  Ensemble of MPoI, MEPoI with batch size nParallel
//   - If no parallelization possible:
//   - Single-objective continuous: mean function estimate, batch size 1
//   - Single-objective mixed-discrete: Ensemble of EI, LCB, PoI, batch size 1
//   - Multi-objective: Ensemble of MPoI, MEPoI, batch size 1
//
// nParallel <= 0 reads the capacity from the problem (defaulting to 1).
// Returns the criterion and the recommended infill batch size.
func DefaultInfill(problem framework.Problem, nParallel int) (ConstrainedInfill, int) {
	if nParallel <= 0 {
		nParallel = framework.NumBatchEvaluate(problem)
	}

	crit, nBatch := defaultInfill(problem, nParallel)
	klog.V(4).InfoS("selected default infill criterion",
		"problem", problem.Name(), "nObj", problem.NumObjectives(), "nParallel", nParallel, "nBatch", nBatch)
	return crit, nBatch
}

func defaultInfill(problem framework.Problem, nParallel int) (ConstrainedInfill, int) {
	soEnsemble := func() []ConstrainedInfill {
		return []ConstrainedInfill{
			NewExpectedImprovementInfill(nil),
			NewLowerConfidenceBoundInfill(DefaultLCBAlpha, nil),
			NewProbabilityOfImprovementInfill(0, nil),
		}
	}
	moEnsemble := func() []ConstrainedInfill {
		return []ConstrainedInfill{
			NewMinimumPoIInfill(false, nil),
			NewMinimumPoIInfill(true, nil),
		}
	}

	// Use the ensemble infill if parallel
	if nParallel > 1 {
		if problem.NumObjectives() == 1 {
			return NewEnsembleInfill(soEnsemble(), nil), nParallel
		}
		return NewEnsembleInfill(moEnsemble(), nil), nParallel
	}

	// Ensemble infill with 1 per iteration if multi-objective
	if problem.NumObjectives() > 1 {
		return NewEnsembleInfill(moEnsemble(), nil), 1
	}

	// Mean function estimate if continuous single-objective
	if framework.IsContinuous(problem) {
		return NewFunctionEstimateConstrainedInfill(nil), 1
	}

	// Single-objective ensemble if mixed-discrete
	return NewEnsembleInfill(soEnsemble(), nil), 1
}
