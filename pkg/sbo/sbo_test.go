package sbo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relf/SBArchOpt/pkg/sbo/benchmarks"
	"github.com/relf/SBArchOpt/pkg/sbo/framework"
	"github.com/relf/SBArchOpt/pkg/sbo/infill"
	"github.com/relf/SBArchOpt/pkg/sbo/surrogate"
)

// sample evaluates the problem on random points within its bounds.
func sample(problem framework.Problem, n int, rng *rand.Rand) (x, y [][]float64) {
	bounds := problem.Bounds()
	x = make([][]float64, n)
	y = make([][]float64, n)
	for i := 0; i < n; i++ {
		xi := make([]float64, len(bounds))
		for j, b := range bounds {
			xi[j] = b.L + rng.Float64()*(b.H-b.L)
		}
		f, g := problem.Evaluate(xi)
		x[i] = xi
		y[i] = append(append([]float64(nil), f...), g...)
	}
	return x, y
}

func fitModel(t *testing.T, problem framework.Problem, x, y [][]float64) (*surrogate.Kriging, *surrogate.BoxNormalization) {
	t.Helper()
	norm := surrogate.NewBoxNormalization(problem.Bounds())
	model := surrogate.NewKriging(0.5, 1e-8)
	require.NoError(t, model.Fit(norm.Forward(x), y))
	return model, norm
}

func TestProposeInfillBranin(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	problem := benchmarks.NewBranin()
	xTrain, yTrain := sample(problem, 12, rng)
	model, norm := fitModel(t, problem, xTrain, yTrain)

	crit, nBatch := infill.DefaultInfill(problem, 1)
	assert.Equal(t, 1, nBatch)
	crit.Initialize(problem, model, norm)

	selected := ProposeInfill(problem, crit, xTrain, yTrain, nBatch, SearchOptions{
		PopSize:        40,
		NumGenerations: 15,
		Rand:           rng,
	})
	require.Len(t, selected, 1)

	for i, b := range problem.Bounds() {
		assert.GreaterOrEqual(t, selected[0].Variables[i], b.L)
		assert.LessOrEqual(t, selected[0].Variables[i], b.H)
	}
	assert.Greater(t, crit.Log().NumEvals, 0)
}

func TestProposeInfillConstrainedBranin(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	problem := benchmarks.NewConstrainedBranin()
	xTrain, yTrain := sample(problem, 15, rng)
	model, norm := fitModel(t, problem, xTrain, yTrain)

	crit := infill.NewExpectedImprovementInfill(infill.NewProbabilityOfFeasibility(0.5))
	crit.Initialize(problem, model, norm)

	selected := ProposeInfill(problem, crit, xTrain, yTrain, 1, SearchOptions{
		PopSize:        40,
		NumGenerations: 15,
		Rand:           rng,
	})
	require.NotEmpty(t, selected)

	for _, ind := range selected {
		for i, b := range problem.Bounds() {
			assert.GreaterOrEqual(t, ind.Variables[i], b.L)
			assert.LessOrEqual(t, ind.Variables[i], b.H)
		}
	}
}

func TestProposeInfillMultiObjectiveBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	problem := benchmarks.NewZDT1(4)
	xTrain, yTrain := sample(problem, 20, rng)
	model, norm := fitModel(t, problem, xTrain, yTrain)

	crit, nBatch := infill.DefaultInfill(problem, 4)
	assert.Equal(t, 4, nBatch)
	crit.Initialize(problem, model, norm)

	selected := ProposeInfill(problem, crit, xTrain, yTrain, nBatch, SearchOptions{
		PopSize:        40,
		NumGenerations: 15,
		Rand:           rng,
	})
	require.NotEmpty(t, selected)
	assert.LessOrEqual(t, len(selected), nBatch)

	for _, ind := range selected {
		for i, b := range problem.Bounds() {
			assert.GreaterOrEqual(t, ind.Variables[i], b.L)
			assert.LessOrEqual(t, ind.Variables[i], b.H)
		}
	}
}

func TestProposeInfillIsReproducible(t *testing.T) {
	problem := benchmarks.NewBranin()
	setupRng := rand.New(rand.NewSource(9))
	xTrain, yTrain := sample(problem, 10, setupRng)
	model, norm := fitModel(t, problem, xTrain, yTrain)

	run := func(seed int64) []framework.Individual {
		crit := infill.NewLowerConfidenceBoundInfill(2, nil)
		crit.Initialize(problem, model, norm)
		return ProposeInfill(problem, crit, xTrain, yTrain, 1, SearchOptions{
			PopSize:        30,
			NumGenerations: 10,
			Rand:           rand.New(rand.NewSource(seed)),
		})
	}

	sel1 := run(21)
	sel2 := run(21)
	require.Len(t, sel1, 1)
	require.Len(t, sel2, 1)
	assert.Equal(t, sel1[0].Variables, sel2[0].Variables)
}
