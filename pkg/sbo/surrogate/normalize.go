package surrogate

import "github.com/relf/SBArchOpt/pkg/sbo/framework"

// BoxNormalization linearly maps design vectors from their bounds onto the
// unit box [0, 1]^n. Variables with a zero-width bound are passed through
// unscaled.
type BoxNormalization struct {
	xl []float64
	xu []float64
}

// NewBoxNormalization builds a normalization from per-variable bounds.
func NewBoxNormalization(bounds []framework.Bounds) *BoxNormalization {
	xl := make([]float64, len(bounds))
	xu := make([]float64, len(bounds))
	for i, b := range bounds {
		xl[i] = b.L
		xu[i] = b.H
	}
	return &BoxNormalization{xl: xl, xu: xu}
}

func (n *BoxNormalization) Forward(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = (v - n.xl[j]) / n.span(j)
		}
	}
	return out
}

func (n *BoxNormalization) Backward(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = n.xl[j] + v*n.span(j)
		}
	}
	return out
}

func (n *BoxNormalization) span(j int) float64 {
	if d := n.xu[j] - n.xl[j]; d != 0 {
		return d
	}
	return 1
}
