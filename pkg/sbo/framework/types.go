package framework

// VarType classifies a design variable. Surrogate-based optimization treats
// continuous and discrete variables differently when choosing an infill
// criterion.
type VarType int

const (
	Continuous VarType = iota
	Integer
	Categorical
)

// Bounds holds the lower and upper bound of a single design variable.
type Bounds struct {
	L float64
	H float64
}

// ObjectiveSpacePoint represents an N-dimensional point in the objective space.
// As an example, for a problem with 2 objective functions f1 and f2, a point
// in the objective space could be [f1(x'), f2(x')], for the input of x'.
type ObjectiveSpacePoint []float64

// Problem describes the shape of an optimization problem and how to evaluate
// it. Constraints are inequality constraints in g(x) <= 0 form.
type Problem interface {
	Name() string

	NumVars() int
	NumObjectives() int
	NumConstraints() int

	Bounds() []Bounds
	VarTypes() []VarType

	// Evaluate computes the objective and constraint values for one design
	// vector. The constraint slice is empty for unconstrained problems.
	Evaluate(x []float64) (f, g []float64)
}

// BatchEvaluator is optionally implemented by problems whose (expensive)
// evaluations can be dispatched in parallel by the outer loop. The returned
// count is the number of evaluations that can run at the same time.
type BatchEvaluator interface {
	NumBatchEvaluate() int
}

// Individual represents a solution in a population.
type Individual struct {
	Variables   []float64
	Objectives  []float64
	Constraints []float64

	// Rank is the non-dominated front index assigned by NonDominatedSort.
	Rank int
	// Distance is the crowding distance assigned during survival selection.
	Distance float64
}

// IsFeasible reports whether all constraint values are satisfied (<= 0).
// Individuals without constraint values are feasible.
func (ind *Individual) IsFeasible() bool {
	for _, g := range ind.Constraints {
		if g > 0 {
			return false
		}
	}
	return true
}

// ConstraintViolation returns the summed positive part of the constraint
// values. Zero means feasible.
func (ind *Individual) ConstraintViolation() float64 {
	cv := 0.0
	for _, g := range ind.Constraints {
		if g > 0 {
			cv += g
		}
	}
	return cv
}

// Clone returns a deep copy of the individual.
func (ind *Individual) Clone() Individual {
	out := Individual{
		Variables:  make([]float64, len(ind.Variables)),
		Objectives: make([]float64, len(ind.Objectives)),
		Rank:       ind.Rank,
		Distance:   ind.Distance,
	}
	copy(out.Variables, ind.Variables)
	copy(out.Objectives, ind.Objectives)
	if ind.Constraints != nil {
		out.Constraints = make([]float64, len(ind.Constraints))
		copy(out.Constraints, ind.Constraints)
	}
	return out
}

// IsContinuous reports whether every design variable of the problem is
// continuous.
func IsContinuous(p Problem) bool {
	for _, vt := range p.VarTypes() {
		if vt != Continuous {
			return false
		}
	}
	return true
}

// NumBatchEvaluate returns the problem's parallel evaluation capacity,
// defaulting to 1 when the problem does not declare one.
func NumBatchEvaluate(p Problem) int {
	if be, ok := p.(BatchEvaluator); ok {
		if n := be.NumBatchEvaluate(); n > 0 {
			return n
		}
	}
	return 1
}
