// Package infill implements surrogate infill (acquisition) criteria for
// surrogate-based optimization: given a trained regression model and the
// training set it was built from, an infill criterion scores candidate
// design points so that a search algorithm can propose the next points worth
// evaluating on the real problem.
package infill

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
	"github.com/relf/SBArchOpt/pkg/sbo/surrogate"
)

// SurrogateInfill is the contract of an infill criterion.
//
// A criterion is constructed once, initialized against a fixed problem shape
// and surrogate handle, and then receives SetSamples once per iteration
// before Evaluate is called. Calling Evaluate (or the arity accessors) before
// Initialize is a programming error and panics.
type SurrogateInfill interface {
	// NeedsVariance reports whether Evaluate requires variance predictions.
	// Pure mean-estimate criteria return false, saving a possibly expensive
	// variance query.
	NeedsVariance() bool

	// Initialize binds the criterion to a problem shape, a surrogate model
	// and the input normalization the model was trained with. The model and
	// normalization handles are borrowed, never owned: after deserializing a
	// criterion it must be re-bound through Initialize.
	Initialize(problem framework.Problem, model surrogate.Model, norm surrogate.Normalization)

	// SetSamples replaces the training set backing front-based criteria.
	SetSamples(xTrain, yTrain [][]float64)

	NumInfillObjectives() int
	NumInfillConstraints() int

	// Evaluate computes the infill objectives and constraints for a batch of
	// query points, one output row per input row. Results are deterministic
	// for an unchanged training set and surrogate state.
	Evaluate(x [][]float64) (fInfill, gInfill [][]float64)

	// SelectInfillSolutions picks the batch of nInfill points to actually
	// evaluate from an acquisition-evaluated candidate population.
	SelectInfillSolutions(pop []framework.Individual, nInfill int, rng *rand.Rand) []framework.Individual

	// Log exposes the evaluation log; ResetLog clears it without touching
	// the training set.
	Log() *EvalLog
	ResetLog()
}

// EvalLog accumulates infill evaluation results and timing. It is owned by
// its criterion and only ever mutated by Evaluate and Reset.
type EvalLog struct {
	F [][][]float64
	G [][][]float64

	NumEvals int
	EvalTime time.Duration
}

// Reset clears the log and timing accumulators.
func (l *EvalLog) Reset() {
	*l = EvalLog{}
}

func (l *EvalLog) record(f, g [][]float64, elapsed time.Duration) {
	l.F = append(l.F, f)
	l.G = append(l.G, g)
	l.NumEvals += len(f)
	l.EvalTime += elapsed
}

// base carries the state shared by all infill criteria: the bound problem
// shape, the borrowed surrogate handles, the current training set and the
// evaluation log.
type base struct {
	problem framework.Problem
	model   surrogate.Model
	norm    surrogate.Normalization

	nObj    int
	nConstr int

	xTrain [][]float64
	yTrain [][]float64

	log         EvalLog
	initialized bool
}

func (b *base) init(problem framework.Problem, model surrogate.Model, norm surrogate.Normalization) {
	b.problem = problem
	b.model = model
	b.norm = norm
	b.nObj = problem.NumObjectives()
	b.nConstr = problem.NumConstraints()
	b.initialized = true
}

func (b *base) ensureInitialized() {
	if !b.initialized {
		panic("infill: criterion used before Initialize")
	}
}

func (b *base) checkShape(x [][]float64) {
	nVars := b.problem.NumVars()
	for i, row := range x {
		if len(row) != nVars {
			panic(fmt.Sprintf("infill: query row %d has %d columns, problem has %d variables", i, len(row), nVars))
		}
	}
}

// SetSamples rebinds the training set. The matrices are replaced wholesale,
// never partially mutated.
func (b *base) SetSamples(xTrain, yTrain [][]float64) {
	b.xTrain = xTrain
	b.yTrain = yTrain
}

func (b *base) Log() *EvalLog { return &b.log }

func (b *base) ResetLog() { b.log.Reset() }

// Predict queries the surrogate mean and splits it into objective and
// constraint channels. A model failure yields an all-NaN result of the
// correct shape; downstream formulas own the NaN policy.
func (b *base) Predict(x [][]float64) (f, g [][]float64) {
	y, err := b.model.PredictValues(b.norm.Forward(x))
	if err != nil {
		y = nanMatrix(len(x), b.nObj+b.nConstr)
	}
	return b.splitFG(y)
}

// PredictVariance queries the surrogate variance one row at a time, since
// not all backends support batched variance queries.
func (b *base) PredictVariance(x [][]float64) (fVar, gVar [][]float64) {
	yVar := make([][]float64, len(x))
	for i := range x {
		rows, err := b.model.PredictVariances(b.norm.Forward(x[i : i+1]))
		if err != nil {
			yVar = nanMatrix(len(x), b.nObj+b.nConstr)
			break
		}
		yVar[i] = rows[0]
	}
	return b.splitFG(yVar)
}

// splitFG applies the fixed column-offset rule: objectives occupy columns
// [0, nObj), constraints [nObj, nObj+nConstr).
func (b *base) splitFG(y [][]float64) (f, g [][]float64) {
	f = make([][]float64, len(y))
	g = make([][]float64, len(y))
	for i, row := range y {
		f[i] = row[:b.nObj]
		if b.nConstr > 0 {
			g[i] = row[b.nObj : b.nObj+b.nConstr]
		} else {
			g[i] = nil
		}
	}
	return f, g
}

func nanMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = math.NaN()
		}
	}
	return m
}

// defaultSelectInfill is the selection rule shared by most criteria: with a
// single infill objective the best feasibility-preferring point is taken to
// avoid duplicate proposals, otherwise rank and crowding survival retains
// exactly nInfill points.
func defaultSelectInfill(nInfillObj int, pop []framework.Individual, nInfill int) []framework.Individual {
	if nInfillObj == 1 {
		return framework.FilterOptimum(pop, true)
	}
	return framework.RankAndCrowding(pop, nInfill)
}

// FunctionEstimateInfill directly uses the underlying surrogate model
// prediction, without requiring variance estimates.
type FunctionEstimateInfill struct {
	base
}

// NewFunctionEstimateInfill creates an infill criterion that scores points by
// their predicted mean values.
func NewFunctionEstimateInfill() *FunctionEstimateInfill {
	return &FunctionEstimateInfill{}
}

func (fe *FunctionEstimateInfill) NeedsVariance() bool { return false }

func (fe *FunctionEstimateInfill) Initialize(problem framework.Problem, model surrogate.Model, norm surrogate.Normalization) {
	fe.init(problem, model, norm)
}

func (fe *FunctionEstimateInfill) NumInfillObjectives() int {
	fe.ensureInitialized()
	return fe.nObj
}

func (fe *FunctionEstimateInfill) NumInfillConstraints() int {
	fe.ensureInitialized()
	return fe.nConstr
}

func (fe *FunctionEstimateInfill) Evaluate(x [][]float64) (fInfill, gInfill [][]float64) {
	fe.ensureInitialized()
	fe.checkShape(x)

	start := time.Now()
	f, g := fe.Predict(x)
	fe.log.record(f, g, time.Since(start))
	return f, g
}

func (fe *FunctionEstimateInfill) SelectInfillSolutions(pop []framework.Individual, nInfill int, rng *rand.Rand) []framework.Individual {
	return defaultSelectInfill(fe.NumInfillObjectives(), pop, nInfill)
}
