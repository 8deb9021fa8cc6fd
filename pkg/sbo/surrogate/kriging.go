package surrogate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kriging is a Gaussian process regression model with an RBF (squared
// exponential) kernel and a constant mean function. It predicts all output
// columns with a shared kernel, which keeps refitting cheap inside the
// optimization loop.
type Kriging struct {
	theta  float64
	nugget float64

	x     [][]float64
	yMean []float64
	chol  mat.Cholesky
	alpha *mat.Dense
	ny    int

	fitted bool
}

// NewKriging creates an untrained Kriging model. theta is the kernel width
// (suitable for inputs normalized to the unit box), nugget is the diagonal
// regularization keeping the kernel matrix positive definite.
func NewKriging(theta, nugget float64) *Kriging {
	if theta <= 0 {
		theta = 1.0
	}
	if nugget <= 0 {
		nugget = 1e-10
	}
	return &Kriging{theta: theta, nugget: nugget}
}

// Fit trains the model on the given samples. x rows are (normalized) design
// vectors, y rows the corresponding output vectors.
func (k *Kriging) Fit(x, y [][]float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("surrogate: training set has %d inputs and %d outputs", len(x), len(y))
	}

	n := len(x)
	ny := len(y[0])

	gram := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := k.kernel(x[i], x[j])
			if i == j {
				v += k.nugget
			}
			gram.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return fmt.Errorf("surrogate: kernel matrix is not positive definite")
	}

	yMean := make([]float64, ny)
	for _, row := range y {
		for j, v := range row {
			yMean[j] += v
		}
	}
	for j := range yMean {
		yMean[j] /= float64(n)
	}

	yc := mat.NewDense(n, ny, nil)
	for i, row := range y {
		for j, v := range row {
			yc.Set(i, j, v-yMean[j])
		}
	}

	alpha := mat.NewDense(n, ny, nil)
	if err := chol.SolveTo(alpha, yc); err != nil {
		return fmt.Errorf("surrogate: solving for kernel weights: %w", err)
	}

	k.x = make([][]float64, n)
	for i, row := range x {
		k.x[i] = append([]float64(nil), row...)
	}
	k.yMean = yMean
	k.chol = chol
	k.alpha = alpha
	k.ny = ny
	k.fitted = true
	return nil
}

// NumOutputs returns the number of output columns the model predicts.
func (k *Kriging) NumOutputs() int {
	return k.ny
}

// PredictValues estimates the mean response for each row of x.
func (k *Kriging) PredictValues(x [][]float64) ([][]float64, error) {
	if !k.fitted {
		return nil, ErrNotFitted
	}

	out := make([][]float64, len(x))
	for i, row := range x {
		kv := k.kernelVector(row)
		pred := make([]float64, k.ny)
		for j := 0; j < k.ny; j++ {
			pred[j] = k.yMean[j] + mat.Dot(kv, k.alpha.ColView(j))
		}
		out[i] = pred
	}
	return out, nil
}

// PredictVariances estimates the predictive variance for each row of x. The
// shared kernel makes the variance identical across output columns.
func (k *Kriging) PredictVariances(x [][]float64) ([][]float64, error) {
	if !k.fitted {
		return nil, ErrNotFitted
	}

	out := make([][]float64, len(x))
	for i, row := range x {
		kv := k.kernelVector(row)
		w := mat.NewVecDense(len(k.x), nil)
		if err := k.chol.SolveVecTo(w, kv); err != nil {
			return nil, fmt.Errorf("surrogate: solving variance system: %w", err)
		}
		s2 := 1 + k.nugget - mat.Dot(kv, w)
		if s2 < 0 {
			s2 = 0
		}
		vars := make([]float64, k.ny)
		for j := range vars {
			vars[j] = s2
		}
		out[i] = vars
	}
	return out, nil
}

func (k *Kriging) kernelVector(x []float64) *mat.VecDense {
	kv := mat.NewVecDense(len(k.x), nil)
	for i, xi := range k.x {
		kv.SetVec(i, k.kernel(x, xi))
	}
	return kv
}

func (k *Kriging) kernel(x1, x2 []float64) float64 {
	if len(x1) != len(x2) {
		panic("surrogate: input vectors must have the same length")
	}
	var sum float64
	for i := range x1 {
		diff := x1[i] - x2[i]
		sum += diff * diff
	}
	return math.Exp(-sum / (2 * k.theta * k.theta))
}
