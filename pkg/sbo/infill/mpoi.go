package infill

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
)

// mpoiClampThreshold zeroes out vanishing domination probabilities; the
// literal value matters for behavior compatibility and is not re-derived.
const mpoiClampThreshold = 1e-6

// MinimumPoIInfill implements the Minimum Probability of Improvement (MPoI)
// criterion, a multi-objective infill criterion that modifies the calculation
// of the domination probability by only considering one objective dimension
// at a time. It emits a single acquisition objective regardless of the
// problem's objective count.
//
// The Euclidean variant multiplies the criterion by its distance to the
// Pareto front, turning it into an EI-like metric.
//
// Based on:
// Rahat, A.A.M., "Alternative Infill Strategies for Expensive Multi-Objective
// Optimisation", 2017, 10.1145/3071178.3071276
// Parr, J.M., "Improvement Criteria for Constraint Handling and
// Multiobjective Optimization", 2013
type MinimumPoIInfill struct {
	constrainedBase

	Euclidean bool

	fPareto [][]float64
}

// NewMinimumPoIInfill creates the MPoI criterion; a nil strategy selects
// MeanConstraintPrediction.
func NewMinimumPoIInfill(euclidean bool, strategy ConstraintStrategy) *MinimumPoIInfill {
	m := &MinimumPoIInfill{Euclidean: euclidean}
	m.bind(m, strategy)
	return m
}

func (m *MinimumPoIInfill) NumInfillObjectives() int {
	m.ensureInitialized()
	return 1
}

// SetSamples rebinds the training set and caches the Pareto front of the raw
// (unnormalized) training objectives.
func (m *MinimumPoIInfill) SetSamples(xTrain, yTrain [][]float64) {
	m.ensureInitialized()
	m.base.SetSamples(xTrain, yTrain)
	m.fPareto = framework.ParetoFront(objectiveColumns(yTrain, m.nObj))
}

func (m *MinimumPoIInfill) EvaluateObjectives(fMean, fVar [][]float64) [][]float64 {
	out := make([][]float64, len(fMean))
	for i := range fMean {
		mpoi := minimumPoI(m.fPareto, fMean[i], fVar[i], m.Euclidean)
		if mpoi < mpoiClampThreshold {
			mpoi = 0
		}
		out[i] = []float64{1 - mpoi}
	}
	return out
}

// minimumPoI computes the minimum, over all Pareto front points, of the
// probability that the predicted point dominates that front point.
func minimumPoI(fPareto [][]float64, fPredict, varPredict []float64, euclidean bool) float64 {
	minPDom := math.Inf(1)
	for _, fPar := range fPareto {
		// Probability of the front point not being better than the
		// prediction, per objective dimension (Rahat 2017, Eq. 11, 12)
		pIsDom := 1.0
		for j := range fPar {
			pIsDom *= distuv.UnitNormal.CDF((fPredict[j] - fPar[j]) / math.Sqrt(varPredict[j]))
		}

		// Probability of domination of this front point (Rahat 2017, Eq. 13)
		if pDom := 1 - pIsDom; pDom < minPDom {
			minPDom = pDom
		}
	}

	if euclidean {
		minPDom *= euclideanMoment(minPDom, fPareto, fPredict)
	}
	return minPDom
}

// euclideanMoment returns the minimum Euclidean distance from the prediction
// to the front. A domination probability below 50% means the point is on the
// wrong side of the Pareto front, which zeroes the criterion (Parr Eq. 6.9).
func euclideanMoment(pDominate float64, fPareto [][]float64, fPredict []float64) float64 {
	if pDominate < 0.5 {
		return 0
	}

	minDist := math.Inf(1)
	for _, fPar := range fPareto {
		var d float64
		for j := range fPar {
			diff := fPredict[j] - fPar[j]
			d += diff * diff
		}
		minDist = math.Min(minDist, math.Sqrt(d))
	}
	return minDist
}
