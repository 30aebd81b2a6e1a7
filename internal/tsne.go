package internal

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TSNEOptions configures the exact t-SNE projection.
type TSNEOptions struct {
	Perplexity float64
	Iterations int
	Seed       uint64
}

func DefaultTSNEOptions() TSNEOptions {
	return TSNEOptions{Perplexity: 30, Iterations: 1000, Seed: 42}
}

const (
	earlyExaggeration   = 12.0
	exaggerationIters   = 250
	initialMomentum     = 0.5
	finalMomentum       = 0.8
	minGain             = 0.01
	perplexityTolerance = 1e-5
	betaSearchSteps     = 100
	minProbability      = 1e-12
)

var errNonFiniteProjection = errors.New("projection produced non-finite coordinates")

// TSNE embeds the rows of data in two dimensions with exact (O(n²)) t-SNE.
// The result depends only on data and opts.
func TSNE(ctx context.Context, data [][]float64, opts TSNEOptions) ([][2]float64, error) {
	n := len(data)
	switch n {
	case 0:
		return [][2]float64{}, nil
	case 1:
		return [][2]float64{{0, 0}}, nil
	}

	def := DefaultTSNEOptions()
	if opts.Perplexity <= 0 {
		opts.Perplexity = def.Perplexity
	}
	if opts.Iterations <= 0 {
		opts.Iterations = def.Iterations
	}
	// a perplexity above (n-1)/3 cannot be reached with n points
	perplexity := math.Min(opts.Perplexity, math.Max(float64(n-1)/3, 1))

	p := jointProbabilities(squaredDistances(denseRows(data)), perplexity)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, rng.NormFloat64()*1e-4)
		y.Set(i, 1, rng.NormFloat64()*1e-4)
	}

	update := mat.NewDense(n, 2, nil)
	gains := mat.NewDense(n, 2, nil)
	gains.Apply(func(_, _ int, _ float64) float64 { return 1 }, gains)
	grad := mat.NewDense(n, 2, nil)
	num := mat.NewSymDense(n, nil)
	col := make([]float64, n)

	learningRate := math.Max(float64(n)/earlyExaggeration/4, 50)

	for it := 0; it < opts.Iterations; it++ {
		if it%50 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		exaggeration, momentum := 1.0, finalMomentum
		if it < exaggerationIters {
			exaggeration, momentum = earlyExaggeration, initialMomentum
		}

		var sumQ float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy := y.At(i, 0)-y.At(j, 0), y.At(i, 1)-y.At(j, 1)
				q := 1 / (1 + dx*dx + dy*dy)
				num.SetSym(i, j, q)
				sumQ += 2 * q
			}
		}

		for i := 0; i < n; i++ {
			var gx, gy float64
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				q := math.Max(num.At(i, j)/sumQ, minProbability)
				mult := (exaggeration*p.At(i, j) - q) * num.At(i, j)
				gx += mult * (y.At(i, 0) - y.At(j, 0))
				gy += mult * (y.At(i, 1) - y.At(j, 1))
			}
			grad.Set(i, 0, 4*gx)
			grad.Set(i, 1, 4*gy)
		}

		for i := 0; i < n; i++ {
			for d := 0; d < 2; d++ {
				g, u := grad.At(i, d), update.At(i, d)
				gain := gains.At(i, d)
				if (g > 0) != (u > 0) {
					gain += 0.2
				} else {
					gain *= 0.8
				}
				gain = math.Max(gain, minGain)
				gains.Set(i, d, gain)
				u = momentum*u - learningRate*gain*g
				update.Set(i, d, u)
				y.Set(i, d, y.At(i, d)+u)
			}
		}
		for d := 0; d < 2; d++ {
			mean := floats.Sum(mat.Col(col, d, y)) / float64(n)
			for i := 0; i < n; i++ {
				y.Set(i, d, y.At(i, d)-mean)
			}
		}
	}

	for _, v := range y.RawMatrix().Data {
		if !isFinite(v) {
			return nil, errNonFiniteProjection
		}
	}
	out := make([][2]float64, n)
	for i := range out {
		out[i] = [2]float64{y.At(i, 0), y.At(i, 1)}
	}
	return out, nil
}

func denseRows(data [][]float64) *mat.Dense {
	cols := 1
	if len(data[0]) > 0 {
		cols = len(data[0])
	}
	x := mat.NewDense(len(data), cols, nil)
	for i, row := range data {
		if len(row) == cols {
			x.SetRow(i, row)
		}
	}
	return x
}

// squaredDistances returns the pairwise squared Euclidean distances between
// the rows of x, read off the Gram matrix x·xᵀ.
func squaredDistances(x *mat.Dense) *mat.SymDense {
	n, _ := x.Dims()
	var gram mat.SymDense
	gram.SymOuterK(1, x)

	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := gram.At(i, i) + gram.At(j, j) - 2*gram.At(i, j)
			d.SetSym(i, j, math.Max(v, 0))
		}
	}
	return d
}

// jointProbabilities finds, per point, the Gaussian precision whose conditional
// distribution has the target perplexity, then symmetrises.
func jointProbabilities(dist *mat.SymDense, perplexity float64) *mat.SymDense {
	n := dist.SymmetricDim()
	target := math.Log(perplexity)
	cond := mat.NewDense(n, n, nil)
	row := make([]float64, n)

	for i := 0; i < n; i++ {
		di := mat.Row(nil, i, dist)
		beta, lo, hi := 1.0, math.Inf(-1), math.Inf(1)

		for step := 0; step < betaSearchSteps; step++ {
			for j := range row {
				row[j] = 0
				if j != i {
					row[j] = math.Exp(-di[j] * beta)
				}
			}
			sumP := floats.Sum(row)
			if sumP == 0 {
				sumP = minProbability
			}
			entropy := math.Log(sumP) + beta*floats.Dot(di, row)/sumP
			floats.Scale(1/sumP, row)

			diff := entropy - target
			if math.Abs(diff) <= perplexityTolerance {
				break
			}
			if diff > 0 {
				lo = beta
				if math.IsInf(hi, 1) {
					beta *= 2
				} else {
					beta = (beta + hi) / 2
				}
			} else {
				hi = beta
				if math.IsInf(lo, -1) {
					beta /= 2
				} else {
					beta = (beta + lo) / 2
				}
			}
		}
		cond.SetRow(i, row)
	}

	p := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			p.SetSym(i, j, math.Max((cond.At(i, j)+cond.At(j, i))/(2*float64(n)), minProbability))
		}
	}
	return p
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
