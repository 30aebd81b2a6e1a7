package internal

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTSNETrivialInputs(t *testing.T) {
	out, err := TSNE(context.Background(), nil, DefaultTSNEOptions())
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = TSNE(context.Background(), [][]float64{{1, 2, 3}}, DefaultTSNEOptions())
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{0, 0}}, out)
}

func TestTSNESeparatesClusters(t *testing.T) {
	var data [][]float64
	for i := 0; i < 10; i++ {
		off := float64(i) * 0.01
		data = append(data, []float64{off, 0, 0, 0})
	}
	for i := 0; i < 10; i++ {
		off := float64(i) * 0.01
		data = append(data, []float64{10 + off, 10, 10, 10})
	}

	y, err := TSNE(context.Background(), data, TSNEOptions{Perplexity: 5, Iterations: 500, Seed: 42})
	require.NoError(t, err)
	require.Len(t, y, 20)

	dist := func(a, b [2]float64) float64 {
		return math.Hypot(a[0]-b[0], a[1]-b[1])
	}

	var within, between float64
	var nw, nb int
	for i := range y {
		for j := i + 1; j < len(y); j++ {
			if (i < 10) == (j < 10) {
				within += dist(y[i], y[j])
				nw++
			} else {
				between += dist(y[i], y[j])
				nb++
			}
		}
	}
	assert.Less(t, within/float64(nw), between/float64(nb))
}

func TestTSNECentered(t *testing.T) {
	data := [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {5, 5}}
	y, err := TSNE(context.Background(), data, TSNEOptions{Iterations: 100, Seed: 1})
	require.NoError(t, err)

	var mx, my float64
	for _, p := range y {
		mx += p[0]
		my += p[1]
	}
	assert.InDelta(t, 0, mx/5, 1e-9)
	assert.InDelta(t, 0, my/5, 1e-9)
}

func TestTSNECanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TSNE(ctx, [][]float64{{0}, {1}, {2}}, DefaultTSNEOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSquaredDistances(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{0, 0, 1, 0, 3, 3})
	d := squaredDistances(x)

	assert.Equal(t, 3, d.SymmetricDim())
	assert.InDelta(t, 0, d.At(0, 0), 1e-12)
	assert.InDelta(t, 1, d.At(0, 1), 1e-12)
	assert.InDelta(t, 18, d.At(0, 2), 1e-12)
	assert.InDelta(t, 13, d.At(2, 1), 1e-12)
}

func TestJointProbabilitiesSymmetric(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{0, 0, 1, 0, 0, 2, 3, 3})
	p := jointProbabilities(squaredDistances(x), 1.5)

	n := p.SymmetricDim()
	var sum float64
	for i := 0; i < n; i++ {
		assert.Equal(t, 0.0, p.At(i, i))
		for j := 0; j < n; j++ {
			sum += p.At(i, j)
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestTSNESeeded(t *testing.T) {
	data := [][]float64{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}, {1, 1, 1}, {4, 4, 4}, {5, 4, 4}}
	opts := TSNEOptions{Perplexity: 2, Iterations: 120, Seed: 7}

	a, err := TSNE(context.Background(), data, opts)
	require.NoError(t, err)
	b, err := TSNE(context.Background(), data, opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
