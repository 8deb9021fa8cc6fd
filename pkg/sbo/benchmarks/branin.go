package benchmarks

import (
	"math"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
)

// Branin is the classic single-objective continuous test function on
// [-5, 10] x [0, 15], a standard benchmark for surrogate-based optimization.
// It has three global minima with value ~0.3979.
type Branin struct{}

func NewBranin() *Branin { return &Branin{} }

func (p *Branin) Name() string { return "Branin" }

func (p *Branin) NumVars() int { return 2 }

func (p *Branin) NumObjectives() int { return 1 }

func (p *Branin) NumConstraints() int { return 0 }

func (p *Branin) Bounds() []framework.Bounds {
	return []framework.Bounds{{L: -5, H: 10}, {L: 0, H: 15}}
}

func (p *Branin) VarTypes() []framework.VarType {
	return []framework.VarType{framework.Continuous, framework.Continuous}
}

func (p *Branin) Evaluate(x []float64) (f, g []float64) {
	return []float64{branin(x[0], x[1])}, nil
}

func branin(x1, x2 float64) float64 {
	const (
		a = 1.0
		b = 5.1 / (4 * math.Pi * math.Pi)
		c = 5.0 / math.Pi
		r = 6.0
		s = 10.0
		t = 1.0 / (8 * math.Pi)
	)
	term := x2 - b*x1*x1 + c*x1 - r
	return a*term*term + s*(1-t)*math.Cos(x1) + s
}

// ConstrainedBranin adds one inequality constraint to Branin that excludes a
// disk around the center of the domain, so that constraint handling
// strategies have something to do.
type ConstrainedBranin struct {
	Branin
}

func NewConstrainedBranin() *ConstrainedBranin { return &ConstrainedBranin{} }

func (p *ConstrainedBranin) Name() string { return "ConstrainedBranin" }

func (p *ConstrainedBranin) NumConstraints() int { return 1 }

func (p *ConstrainedBranin) Evaluate(x []float64) (f, g []float64) {
	f, _ = p.Branin.Evaluate(x)
	d1 := x[0] - 2.5
	d2 := x[1] - 7.5
	// Feasible outside the disk of radius sqrt(50) around (2.5, 7.5)
	return f, []float64{50 - (d1*d1 + d2*d2)}
}
