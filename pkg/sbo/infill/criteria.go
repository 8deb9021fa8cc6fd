package infill

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
)

// objectiveColumns views the objective block of a training output matrix.
func objectiveColumns(y [][]float64, nObj int) [][]float64 {
	f := make([][]float64, len(y))
	for i, row := range y {
		f[i] = row[:nObj]
	}
	return f
}

// normalizedFront extracts the Pareto front of the given objective values and
// normalizes it so that ideal and nadir map to 0 and 1 per objective. A
// degenerate objective (nadir == ideal) keeps a denominator of 1 to avoid
// division by zero.
func normalizedFront(fCurrent [][]float64) (fParetoNorm [][]float64, ideal, denom []float64) {
	fPareto := framework.ParetoFront(fCurrent)
	nF := len(fPareto[0])

	ideal = make([]float64, nF)
	denom = make([]float64, nF)
	for j := 0; j < nF; j++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range fPareto {
			lo = math.Min(lo, row[j])
			hi = math.Max(hi, row[j])
		}
		ideal[j] = lo
		denom[j] = hi - lo
		if denom[j] == 0 {
			denom[j] = 1
		}
	}

	fParetoNorm = make([][]float64, len(fPareto))
	for i, row := range fPareto {
		fParetoNorm[i] = make([]float64, nF)
		for j, v := range row {
			fParetoNorm[i][j] = (v - ideal[j]) / denom[j]
		}
	}
	return fParetoNorm, ideal, denom
}

// normalizeFVar maps one predicted mean/variance row into the normalized
// objective space of the front.
func normalizeFVar(f, fVar, ideal, denom []float64) (fNorm, fVarNorm []float64) {
	fNorm = make([]float64, len(f))
	fVarNorm = make([]float64, len(f))
	for j := range f {
		fNorm[j] = (f[j] - ideal[j]) / denom[j]
		d := denom[j] + 1e-30
		fVarNorm[j] = fVar[j] / (d * d)
	}
	return fNorm, fVarNorm
}

// closestFrontPoint returns the index of the front point with the smallest
// Euclidean distance to f.
func closestFrontPoint(front [][]float64, f []float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, row := range front {
		var d float64
		for j := range row {
			diff := row[j] - f[j]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// ExpectedImprovementInfill implements the Expected Improvement (EI)
// criterion, which naturally balances exploitation and exploration by
// representing the expected amount of improvement at some point taking into
// account its probability of improvement:
//
//	EI(x) = (f_min-y(x)) * Phi((f_min-y(x))/s(x)) + s(x) * phi((f_min-y(x))/s(x))
//
// with f_min the closest point on the normalized Pareto front of the current
// training set, Phi and phi the normal CDF and PDF. The criterion is reported
// as 1-EI so that minimizing the acquisition maximizes improvement.
//
// Based on Jones, D.R., "Efficient Global Optimization of Expensive Black-Box
// Functions", 1998, 10.1023/A:1008306431147
type ExpectedImprovementInfill struct {
	constrainedBase
}

// NewExpectedImprovementInfill creates the EI criterion; a nil strategy
// selects MeanConstraintPrediction.
func NewExpectedImprovementInfill(strategy ConstraintStrategy) *ExpectedImprovementInfill {
	ei := &ExpectedImprovementInfill{}
	ei.bind(ei, strategy)
	return ei
}

func (e *ExpectedImprovementInfill) NumInfillObjectives() int {
	e.ensureInitialized()
	return e.nObj
}

func (e *ExpectedImprovementInfill) EvaluateObjectives(fMean, fVar [][]float64) [][]float64 {
	fParetoNorm, ideal, denom := normalizedFront(objectiveColumns(e.yTrain, e.nObj))

	out := make([][]float64, len(fMean))
	for i := range fMean {
		fNorm, fVarNorm := normalizeFVar(fMean[i], fVar[i], ideal, denom)
		fParMin := fParetoNorm[closestFrontPoint(fParetoNorm, fNorm)]

		out[i] = make([]float64, len(fNorm))
		for j := range fNorm {
			dy := fParMin[j] - fNorm[j]
			ei := expectedImprovement(dy, math.Sqrt(fVarNorm[j]))
			if ei < 0 {
				ei = 0
			}
			out[i][j] = 1 - ei
		}
	}
	return out
}

// expectedImprovement evaluates the classic EI term. A zero or invalid
// standard deviation resolves to 1 for an improving mean and 0 otherwise.
func expectedImprovement(dy, sigma float64) float64 {
	if sigma == 0 {
		if dy > 0 {
			return 1
		}
		return 0
	}
	z := dy / sigma
	ei := dy*distuv.UnitNormal.CDF(z) + sigma*distuv.UnitNormal.Prob(z)
	if math.IsNaN(ei) {
		if dy > 0 {
			return 1
		}
		return 0
	}
	return ei
}

// ProbabilityOfImprovementInfill represents the probability that some point
// will be better than the current best estimate with some offset:
//
//	PoI(x) = Phi((T - y(x))/sqrt(s(x)))
//
// PoI was developed for single-objective optimization; here it is evaluated
// with respect to the closest point on the normalized Pareto front, offset by
// FMinOffset. Reported as 1-PoI.
//
// Based on Hawe, G.I., "An Enhanced Probability of Improvement Utility
// Function for Locating Pareto Optimal Solutions", 2007
type ProbabilityOfImprovementInfill struct {
	constrainedBase

	// FMinOffset shifts the improvement target below the closest front point.
	FMinOffset float64
}

// NewProbabilityOfImprovementInfill creates the PoI criterion; a nil strategy
// selects MeanConstraintPrediction.
func NewProbabilityOfImprovementInfill(fMinOffset float64, strategy ConstraintStrategy) *ProbabilityOfImprovementInfill {
	poi := &ProbabilityOfImprovementInfill{FMinOffset: fMinOffset}
	poi.bind(poi, strategy)
	return poi
}

func (p *ProbabilityOfImprovementInfill) NumInfillObjectives() int {
	p.ensureInitialized()
	return p.nObj
}

func (p *ProbabilityOfImprovementInfill) EvaluateObjectives(fMean, fVar [][]float64) [][]float64 {
	fParetoNorm, ideal, denom := normalizedFront(objectiveColumns(p.yTrain, p.nObj))

	out := make([][]float64, len(fMean))
	for i := range fMean {
		fNorm, fVarNorm := normalizeFVar(fMean[i], fVar[i], ideal, denom)
		fParMin := fParetoNorm[closestFrontPoint(fParetoNorm, fNorm)]

		out[i] = make([]float64, len(fNorm))
		for j := range fNorm {
			target := fParMin[j] - p.FMinOffset
			poi := distuv.UnitNormal.CDF((target - fNorm[j]) / math.Sqrt(fVarNorm[j]))
			out[i][j] = 1 - poi
		}
	}
	return out
}

// DefaultLCBAlpha is the default confidence bound scaling parameter.
const DefaultLCBAlpha = 2.0

// LowerConfidenceBoundInfill represents the lowest expected value to be found
// at some point given its standard deviation:
//
//	LCB(x) = y(x) - alpha * sqrt(s(x))
//
// A lower alpha means more exploitation, a higher one more exploration. No
// Pareto front lookup is needed.
//
// Based on Cox, D., "A Statistical Method for Global Optimization", 1992,
// 10.1109/icsmc.1992.271617
type LowerConfidenceBoundInfill struct {
	constrainedBase

	Alpha float64
}

// NewLowerConfidenceBoundInfill creates the LCB criterion; alpha <= 0 selects
// the default of 2. A nil strategy selects MeanConstraintPrediction.
func NewLowerConfidenceBoundInfill(alpha float64, strategy ConstraintStrategy) *LowerConfidenceBoundInfill {
	if alpha <= 0 {
		alpha = DefaultLCBAlpha
	}
	lcb := &LowerConfidenceBoundInfill{Alpha: alpha}
	lcb.bind(lcb, strategy)
	return lcb
}

func (l *LowerConfidenceBoundInfill) NumInfillObjectives() int {
	l.ensureInitialized()
	return l.nObj
}

func (l *LowerConfidenceBoundInfill) EvaluateObjectives(fMean, fVar [][]float64) [][]float64 {
	out := make([][]float64, len(fMean))
	for i := range fMean {
		out[i] = make([]float64, len(fMean[i]))
		for j := range fMean[i] {
			out[i][j] = fMean[i][j] - l.Alpha*math.Sqrt(fVar[i][j])
		}
	}
	return out
}
