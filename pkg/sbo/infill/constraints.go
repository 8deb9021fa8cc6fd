package infill

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
)

// ConstraintStrategy converts predicted constraint means and variances into
// the infill constraint values handed to the search algorithm. The number of
// emitted constraint channels may differ from the problem's raw constraint
// count.
type ConstraintStrategy interface {
	Initialize(problem framework.Problem)
	NumInfillConstraints() int
	Evaluate(x, gMean, gVar [][]float64) [][]float64
}

// MeanConstraintPrediction simply uses the mean prediction of the constraint
// functions as the infill constraint.
type MeanConstraintPrediction struct {
	problem framework.Problem
}

func NewMeanConstraintPrediction() *MeanConstraintPrediction {
	return &MeanConstraintPrediction{}
}

func (s *MeanConstraintPrediction) Initialize(problem framework.Problem) {
	s.problem = problem
}

func (s *MeanConstraintPrediction) NumInfillConstraints() int {
	return s.problem.NumConstraints()
}

func (s *MeanConstraintPrediction) Evaluate(x, gMean, gVar [][]float64) [][]float64 {
	return gMean
}

// DefaultMinPoF is the default probability-of-feasibility threshold.
const DefaultMinPoF = 0.5

// ProbabilityOfFeasibility uses a lower limit on the Probability of
// Feasibility (PoF) as the infill constraint:
//
//	PoF(x) = Phi(-y(x)/sqrt(s(x)))
//
// where Phi is the cumulative distribution function of the normal
// distribution, y(x) the constraint estimate and s(x) its variance estimate.
// The transformed constraint min_pof - PoF is satisfied (<= 0) exactly when
// the predicted feasibility probability reaches min_pof.
//
// Based on Schonlau, M., "Global Versus Local Search in Constrained
// Optimization of Computer Models", 1998, 10.1214/lnms/1215456182
type ProbabilityOfFeasibility struct {
	MinPoF  float64
	problem framework.Problem
}

// NewProbabilityOfFeasibility creates the strategy; minPoF <= 0 selects the
// default threshold of 0.5.
func NewProbabilityOfFeasibility(minPoF float64) *ProbabilityOfFeasibility {
	if minPoF <= 0 {
		minPoF = DefaultMinPoF
	}
	return &ProbabilityOfFeasibility{MinPoF: minPoF}
}

func (s *ProbabilityOfFeasibility) Initialize(problem framework.Problem) {
	s.problem = problem
}

func (s *ProbabilityOfFeasibility) NumInfillConstraints() int {
	return s.problem.NumConstraints()
}

func (s *ProbabilityOfFeasibility) Evaluate(x, gMean, gVar [][]float64) [][]float64 {
	out := make([][]float64, len(gMean))
	for i, row := range gMean {
		out[i] = make([]float64, len(row))
		for j, g := range row {
			out[i][j] = s.MinPoF - pof(g, gVar[i][j])
		}
	}
	return out
}

// pof evaluates the probability of feasibility for one constraint value. A
// zero-variance prediction is treated as a certain outcome: PoF is 1 if the
// mean is feasible and 0 otherwise.
func pof(g, gVar float64) float64 {
	p := distuv.UnitNormal.CDF(-g / math.Sqrt(gVar))
	if math.IsNaN(p) {
		if g <= 0 {
			return 1
		}
		return 0
	}
	return p
}

// IgnoreConstraints emits no infill constraints regardless of the problem's
// constraint count.
type IgnoreConstraints struct{}

func NewIgnoreConstraints() *IgnoreConstraints { return &IgnoreConstraints{} }

func (s *IgnoreConstraints) Initialize(problem framework.Problem) {}

func (s *IgnoreConstraints) NumInfillConstraints() int { return 0 }

func (s *IgnoreConstraints) Evaluate(x, gMean, gVar [][]float64) [][]float64 {
	return make([][]float64, len(x))
}
