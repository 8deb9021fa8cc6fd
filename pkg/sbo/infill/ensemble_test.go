package infill

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
)

func TestEnsembleArityIsSumOfMembers(t *testing.T) {
	problem := &stubProblem{nVars: 1, nObj: 1}
	model := &constModel{mean: []float64{1}, vars: []float64{0.25}}

	e := NewEnsembleInfill([]ConstrainedInfill{
		NewExpectedImprovementInfill(nil),
		NewLowerConfidenceBoundInfill(DefaultLCBAlpha, nil),
		NewProbabilityOfImprovementInfill(0, nil),
	}, nil)
	e.Initialize(problem, model, identityNorm{})
	e.SetSamples([][]float64{{0}}, [][]float64{{1}})

	assert.Equal(t, 3, e.NumInfillObjectives())

	f, _ := e.Evaluate([][]float64{{0.5}, {0.7}})
	require.Len(t, f, 2)
	assert.Len(t, f[0], 3)
}

func TestEnsembleDefaultMembers(t *testing.T) {
	model := &constModel{mean: []float64{1}, vars: []float64{0.25}}

	so := NewEnsembleInfill(nil, nil)
	so.Initialize(&stubProblem{nVars: 1, nObj: 1}, model, identityNorm{})
	assert.Len(t, so.Infills, 4)

	moModel := &constModel{mean: []float64{1, 2}, vars: []float64{0.25, 0.25}}
	mo := NewEnsembleInfill(nil, nil)
	mo.Initialize(&stubProblem{nVars: 1, nObj: 2}, moModel, identityNorm{})
	assert.Len(t, mo.Infills, 2)
}

func TestEnsembleForcesIgnoreConstraintsOnMembers(t *testing.T) {
	problem := &stubProblem{nVars: 1, nObj: 1, nConstr: 1}
	model := &constModel{mean: []float64{1, -0.5}, vars: []float64{0.25, 0.25}}

	member := NewLowerConfidenceBoundInfill(DefaultLCBAlpha, NewProbabilityOfFeasibility(0.5))
	e := NewEnsembleInfill([]ConstrainedInfill{member}, nil)
	e.Initialize(problem, model, identityNorm{})
	e.SetSamples([][]float64{{0}}, [][]float64{{1, -0.5}})

	// Members emit no constraints; the ensemble handles them once itself
	assert.Equal(t, 0, member.NumInfillConstraints())
	assert.Equal(t, 1, e.NumInfillConstraints())

	_, g := e.Evaluate([][]float64{{0.5}})
	require.Len(t, g, 1)
	assert.Equal(t, -0.5, g[0][0], "ensemble default strategy is the mean prediction")
}

// selectionFixture builds an ensemble whose real-objective estimates echo the
// candidate design variables, so selection behavior is fully controlled by
// the candidate coordinates.
func selectionFixture(t *testing.T) *EnsembleInfill {
	t.Helper()
	problem := &stubProblem{nVars: 2, nObj: 2}
	model := &echoModel{nOut: 2, vars: 0.01}
	e := NewEnsembleInfill([]ConstrainedInfill{
		NewMinimumPoIInfill(false, nil),
		NewMinimumPoIInfill(true, nil),
	}, nil)
	e.Initialize(problem, model, identityNorm{})
	e.SetSamples([][]float64{{0, 1}, {1, 0}}, [][]float64{{0, 1}, {1, 0}})
	return e
}

func individuals(points ...[]float64) []framework.Individual {
	pop := make([]framework.Individual, len(points))
	for i, p := range points {
		pop[i] = framework.Individual{Variables: p, Objectives: p}
	}
	return pop
}

func TestEnsembleSelectReturnsWholeFrontWhenSmall(t *testing.T) {
	e := selectionFixture(t)
	// Two non-dominated points, two dominated ones
	pop := individuals(
		[]float64{0.1, 0.9},
		[]float64{0.9, 0.1},
		[]float64{0.92, 0.15},
		[]float64{0.95, 0.95},
	)

	selected := e.SelectInfillSolutions(pop, 3, rand.New(rand.NewSource(1)))
	require.Len(t, selected, 2)
	assert.Equal(t, []float64{0.1, 0.9}, selected[0].Variables)
	assert.Equal(t, []float64{0.9, 0.1}, selected[1].Variables)
}

func TestEnsembleSelectSamplesWithoutReplacement(t *testing.T) {
	e := selectionFixture(t)
	pop := individuals(
		[]float64{0.0, 1.0},
		[]float64{0.25, 0.75},
		[]float64{0.5, 0.5},
		[]float64{0.75, 0.25},
		[]float64{1.0, 0.0},
	)

	// Batch size 2 is below the ensemble arity, so points are drawn
	// uniformly from the front without replacement.
	selected := e.SelectInfillSolutions(pop, 2, rand.New(rand.NewSource(7)))
	require.Len(t, selected, 2)
	assert.NotEqual(t, selected[0].Variables, selected[1].Variables)
}

func TestEnsembleSelectCrowdingRemovalKeepsExtremes(t *testing.T) {
	e := selectionFixture(t)
	// Six non-dominated points on a line, unevenly spaced
	pop := individuals(
		[]float64{0.0, 1.0},
		[]float64{0.2, 0.8},
		[]float64{0.25, 0.75},
		[]float64{0.5, 0.5},
		[]float64{0.75, 0.25},
		[]float64{1.0, 0.0},
	)

	selected := e.SelectInfillSolutions(pop, 3, rand.New(rand.NewSource(3)))
	require.Len(t, selected, 3)

	// Boundary points have infinite crowding distance and survive removal
	vars := make(map[float64]bool)
	for _, ind := range selected {
		vars[ind.Variables[0]] = true
	}
	assert.True(t, vars[0.0], "ideal-f1 extreme must be kept")
	assert.True(t, vars[1.0], "ideal-f2 extreme must be kept")
}

func TestEnsembleSelectPrefersFeasibleCandidates(t *testing.T) {
	e := selectionFixture(t)
	pop := individuals(
		[]float64{0.1, 0.9},
		[]float64{0.9, 0.1},
	)
	pop[0].Constraints = []float64{1.0} // infeasible
	pop[1].Constraints = []float64{-1.0}

	selected := e.SelectInfillSolutions(pop, 2, rand.New(rand.NewSource(1)))
	require.Len(t, selected, 1)
	assert.Equal(t, []float64{0.9, 0.1}, selected[0].Variables)
}

func TestEnsembleSelectLeastInfeasibleFallback(t *testing.T) {
	e := selectionFixture(t)
	pop := individuals(
		[]float64{0.1, 0.9},
		[]float64{0.9, 0.1},
	)
	pop[0].Constraints = []float64{2.0}
	pop[1].Constraints = []float64{0.5}

	selected := e.SelectInfillSolutions(pop, 2, rand.New(rand.NewSource(1)))
	require.Len(t, selected, 1)
	assert.Equal(t, []float64{0.9, 0.1}, selected[0].Variables)
}
