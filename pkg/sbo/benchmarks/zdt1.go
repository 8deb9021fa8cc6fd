// Package benchmarks provides test problems used to validate the surrogate
// optimization components.
package benchmarks

import (
	"math"

	"github.com/relf/SBArchOpt/pkg/sbo/framework"
)

// ZDT1 is a two-objective benchmark function used to test the correctness
// of multi-objective algorithms. For more details, check the article below:
// https://datacrayon.com/practical-evolutionary-algorithms/synthetic-objective-functions-and-zdt1/
type ZDT1 struct {
	numVars int
}

func NewZDT1(numVars int) *ZDT1 {
	return &ZDT1{numVars: numVars}
}

func (p *ZDT1) Name() string { return "ZDT1" }

func (p *ZDT1) NumVars() int { return p.numVars }

func (p *ZDT1) NumObjectives() int { return 2 }

func (p *ZDT1) NumConstraints() int { return 0 }

func (p *ZDT1) Bounds() []framework.Bounds {
	b := make([]framework.Bounds, p.numVars)
	for i := range b {
		b[i] = framework.Bounds{L: 0, H: 1}
	}
	return b
}

func (p *ZDT1) VarTypes() []framework.VarType {
	return make([]framework.VarType, p.numVars)
}

func (p *ZDT1) Evaluate(x []float64) (f, g []float64) {
	gg := 1.0
	for i := 1; i < len(x); i++ {
		gg += 9.0 * x[i] / float64(len(x)-1)
	}
	f1 := x[0]
	f2 := gg * (1.0 - math.Sqrt(x[0]/gg))
	return []float64{f1, f2}, nil
}

// TrueParetoFront generates numPoints points on the true Pareto front.
func (p *ZDT1) TrueParetoFront(numPoints int) []framework.ObjectiveSpacePoint {
	points := make([]framework.ObjectiveSpacePoint, numPoints)
	for i := range points {
		x := float64(i) / float64(numPoints-1)
		points[i] = framework.ObjectiveSpacePoint{x, 1.0 - math.Sqrt(x)}
	}
	return points
}
