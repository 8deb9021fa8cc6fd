package infill

import (
	"math/rand"
	"time"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
	"github.com/relf/SBArchOpt/pkg/sbo/surrogate"
)

// ConstrainedInfill is an infill criterion that combines a variant-specific
// objective transform with a constraint handling strategy. All constrained
// criteria query both mean and variance predictions and can therefore be
// stacked inside an EnsembleInfill, which evaluates the transforms of its
// members on a single shared prediction.
type ConstrainedInfill interface {
	SurrogateInfill

	// EvaluateObjectives transforms predicted objective means and variances
	// into infill objective values.
	EvaluateObjectives(fMean, fVar [][]float64) [][]float64

	setConstraintStrategy(s ConstraintStrategy)
}

// objectiveEvaluator is the part of a constrained criterion that differs per
// variant; the shared constrainedBase delegates to it.
type objectiveEvaluator interface {
	NumInfillObjectives() int
	EvaluateObjectives(fMean, fVar [][]float64) [][]float64
}

// constrainedBase implements the evaluation template shared by all
// constrained criteria: predict mean and variance, apply the constraint
// strategy to the constraint channels, delegate the objective transform to
// the concrete variant.
type constrainedBase struct {
	base

	strategy ConstraintStrategy
	self     objectiveEvaluator
}

// bind wires the concrete variant and its constraint strategy into the base.
// A nil strategy selects MeanConstraintPrediction.
func (c *constrainedBase) bind(self objectiveEvaluator, strategy ConstraintStrategy) {
	if strategy == nil {
		strategy = NewMeanConstraintPrediction()
	}
	c.self = self
	c.strategy = strategy
}

func (c *constrainedBase) NeedsVariance() bool { return true }

func (c *constrainedBase) Initialize(problem framework.Problem, model surrogate.Model, norm surrogate.Normalization) {
	c.init(problem, model, norm)
	c.strategy.Initialize(problem)
}

func (c *constrainedBase) NumInfillConstraints() int {
	c.ensureInitialized()
	return c.strategy.NumInfillConstraints()
}

func (c *constrainedBase) Evaluate(x [][]float64) (fInfill, gInfill [][]float64) {
	c.ensureInitialized()
	c.checkShape(x)

	start := time.Now()
	fMean, gMean := c.Predict(x)
	fVar, gVar := c.PredictVariance(x)

	gInfill = gMean
	if c.nConstr > 0 {
		gInfill = c.strategy.Evaluate(x, gMean, gVar)
	}
	fInfill = c.self.EvaluateObjectives(fMean, fVar)

	c.log.record(fInfill, gInfill, time.Since(start))
	return fInfill, gInfill
}

func (c *constrainedBase) SelectInfillSolutions(pop []framework.Individual, nInfill int, rng *rand.Rand) []framework.Individual {
	return defaultSelectInfill(c.self.NumInfillObjectives(), pop, nInfill)
}

func (c *constrainedBase) setConstraintStrategy(s ConstraintStrategy) {
	c.strategy = s
}

// FunctionEstimateConstrainedInfill combines the constraint handling strategy
// with the direct function estimate for the objectives.
type FunctionEstimateConstrainedInfill struct {
	constrainedBase
}

// NewFunctionEstimateConstrainedInfill creates the criterion; a nil strategy
// selects MeanConstraintPrediction.
func NewFunctionEstimateConstrainedInfill(strategy ConstraintStrategy) *FunctionEstimateConstrainedInfill {
	fe := &FunctionEstimateConstrainedInfill{}
	fe.bind(fe, strategy)
	return fe
}

func (fe *FunctionEstimateConstrainedInfill) NumInfillObjectives() int {
	fe.ensureInitialized()
	return fe.nObj
}

func (fe *FunctionEstimateConstrainedInfill) EvaluateObjectives(fMean, fVar [][]float64) [][]float64 {
	return fMean
}
