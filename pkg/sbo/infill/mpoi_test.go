package infill

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func mpoiFixture(t *testing.T, euclidean bool, mean, vars []float64) *MinimumPoIInfill {
	t.Helper()
	problem := &stubProblem{nVars: 2, nObj: 2}
	model := &constModel{mean: mean, vars: vars}
	crit := NewMinimumPoIInfill(euclidean, nil)
	crit.Initialize(problem, model, identityNorm{})
	// Training front {(0,1), (1,0)}; the third point is dominated
	crit.SetSamples(
		[][]float64{{0, 1}, {1, 0}, {1, 1}},
		[][]float64{{0, 1}, {1, 0}, {1.5, 1.5}},
	)
	return crit
}

func TestMinimumPoISingleObjective(t *testing.T) {
	crit := mpoiFixture(t, false, []float64{0.5, 0.5}, []float64{0.01, 0.01})
	assert.Equal(t, 1, crit.NumInfillObjectives())
	assert.Len(t, crit.fPareto, 2)
}

func TestMinimumPoIBalancedPoint(t *testing.T) {
	// Prediction (0.5, 0.5) with sigma 0.1 against the front {(0,1), (1,0)}
	crit := mpoiFixture(t, false, []float64{0.5, 0.5}, []float64{0.01, 0.01})

	f, _ := crit.Evaluate([][]float64{{0.5, 0.5}})
	require.Len(t, f, 1)
	require.Len(t, f[0], 1)

	// Per front point one dimension improves by 5 sigma and the other
	// worsens by 5 sigma, so p_dominate = 1 - Phi(5)*Phi(-5) for both
	pDom := 1 - distuv.UnitNormal.CDF(5)*distuv.UnitNormal.CDF(-5)
	assert.InDelta(t, 1-pDom, f[0][0], 1e-12)
}

func TestMinimumPoIDominatingPrediction(t *testing.T) {
	// A prediction far better than the whole front dominates each front
	// point with near certainty, so the criterion saturates at 0.
	crit := mpoiFixture(t, false, []float64{-1, -1}, []float64{0.01, 0.01})

	f, _ := crit.Evaluate([][]float64{{0.1, 0.1}})
	assert.InDelta(t, 0.0, f[0][0], 1e-9)
}

func TestMinimumPoIDominatedPredictionClamps(t *testing.T) {
	// A prediction far behind the front has a vanishing domination
	// probability, which is clamped to exactly 0 and reported as 1.
	crit := mpoiFixture(t, false, []float64{2, 2}, []float64{0.01, 0.01})

	f, _ := crit.Evaluate([][]float64{{0.9, 0.9}})
	assert.Equal(t, 1.0, f[0][0])
}

func TestMinimumPoIEuclideanWrongSide(t *testing.T) {
	// Below 50% domination probability the Euclidean variant zeroes the
	// criterion regardless of the distance to the front.
	crit := mpoiFixture(t, true, []float64{2, 2}, []float64{1, 1})

	f, _ := crit.Evaluate([][]float64{{0.9, 0.9}})
	assert.Equal(t, 1.0, f[0][0])
}

func TestMinimumPoIEuclideanScalesByDistance(t *testing.T) {
	// A dominating prediction at distance sqrt(2.5) from both front points
	plain := mpoiFixture(t, false, []float64{-0.5, -0.5}, []float64{1, 1})
	euclid := mpoiFixture(t, true, []float64{-0.5, -0.5}, []float64{1, 1})

	fPlain, _ := plain.Evaluate([][]float64{{0.1, 0.1}})
	fEuclid, _ := euclid.Evaluate([][]float64{{0.1, 0.1}})

	mpoiPlain := 1 - fPlain[0][0]
	mpoiEuclid := 1 - fEuclid[0][0]
	assert.Greater(t, mpoiPlain, 0.5)
	assert.InDelta(t, mpoiPlain*math.Sqrt(2.5), mpoiEuclid, 1e-9)
}

func TestMinimumPoISetSamplesBeforeInitializePanics(t *testing.T) {
	crit := NewMinimumPoIInfill(false, nil)
	assert.Panics(t, func() {
		crit.SetSamples([][]float64{{0, 0}}, [][]float64{{0, 0}})
	})
}
