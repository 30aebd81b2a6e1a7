package internal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TrainingParams controls continuous-bag-of-words training with negative sampling.
type TrainingParams struct {
	VectorSize int
	Window     int
	MinCount   int
	Workers    int
	Epochs     int
	Negative   int
	Alpha      float64
	MinAlpha   float64
	Sample     float64
	BatchWords int
	// Seed 0 draws a fresh seed per run.
	Seed uint64
}

func DefaultTrainingParams() TrainingParams {
	return TrainingParams{
		VectorSize: 100,
		Window:     5,
		MinCount:   5,
		Workers:    4,
		Epochs:     5,
		Negative:   5,
		Alpha:      0.025,
		MinAlpha:   0.0001,
		Sample:     1e-3,
		BatchWords: 10000,
	}
}

func (p TrainingParams) validate() error {
	switch {
	case p.VectorSize <= 0:
		return fmt.Errorf("vector size must be positive, got %d", p.VectorSize)
	case p.Window <= 0:
		return fmt.Errorf("window must be positive, got %d", p.Window)
	case p.MinCount < 1:
		return fmt.Errorf("min count must be at least 1, got %d", p.MinCount)
	case p.Workers <= 0:
		return fmt.Errorf("workers must be positive, got %d", p.Workers)
	case p.Epochs <= 0:
		return fmt.Errorf("epochs must be positive, got %d", p.Epochs)
	case p.Negative <= 0:
		return fmt.Errorf("negative samples must be positive, got %d", p.Negative)
	case p.Alpha <= 0 || p.MinAlpha < 0 || p.MinAlpha > p.Alpha:
		return fmt.Errorf("invalid learning rate schedule %g -> %g", p.Alpha, p.MinAlpha)
	case p.Sample < 0:
		return fmt.Errorf("sample must not be negative, got %g", p.Sample)
	case p.BatchWords <= 0:
		return fmt.Errorf("batch words must be positive, got %d", p.BatchWords)
	}
	return nil
}

// Trainer fits an embedding model to a corpus.
type Trainer interface {
	Train(ctx context.Context, corpus *Corpus) (*Model, error)
}

var _ Trainer = (*Word2Vec)(nil)

var errEmptyCorpus = errors.New("corpus has no sentences")

// maxExp bounds the sigmoid argument; beyond it the gradient saturates.
const maxExp = 6

type Word2Vec struct {
	params TrainingParams
	logger *zap.Logger
}

func NewWord2Vec(params TrainingParams, logger *zap.Logger) *Word2Vec {
	return &Word2Vec{params: params, logger: orNop(logger)}
}

func (w *Word2Vec) Params() TrainingParams {
	return w.params
}

// Train runs the configured number of epochs over the corpus. Work is cut into
// batches of roughly BatchWords words; up to Workers batches train at once
// against a frozen snapshot of the weights and their updates are merged in
// batch order, so a fixed non-zero Seed reproduces the same model.
func (w *Word2Vec) Train(ctx context.Context, corpus *Corpus) (*Model, error) {
	p := w.params
	if err := p.validate(); err != nil {
		return nil, trainingError("parameters", err)
	}
	if corpus == nil || len(corpus.Sentences) == 0 {
		return nil, trainingError("corpus", errEmptyCorpus)
	}

	vocab := BuildVocabulary(corpus, p.MinCount)
	if len(vocab) == 0 {
		return nil, trainingError("vocabulary", fmt.Errorf("no word occurs at least %d times", p.MinCount))
	}

	seed := p.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	start := time.Now()
	st := newTrainingState(p, vocab, corpus, seed)
	if st.totalWords == 0 {
		return nil, trainingError("corpus", errEmptyCorpus)
	}

	w.logger.Info("training started",
		zap.Int("vocabulary", len(vocab)),
		zap.Int("sentences", len(st.sentences)),
		zap.Int("words", st.totalWords),
		zap.Int("batches", len(st.jobs)),
		zap.Int("workers", p.Workers),
	)

	for epoch := 0; epoch < p.Epochs; epoch++ {
		if err := w.runEpoch(ctx, st, epoch); err != nil {
			return nil, trainingError(fmt.Sprintf("epoch %d", epoch+1), err)
		}
		w.logger.Debug("epoch finished", zap.Int("epoch", epoch+1), zap.Duration("elapsed", time.Since(start)))
	}

	for i, row := range st.syn0 {
		for _, v := range row {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return nil, trainingError("weights", fmt.Errorf("non-finite vector for %q", vocab[i].Word))
			}
		}
	}

	model, err := NewModel(vocab, st.syn0)
	if err != nil {
		return nil, trainingError("model", err)
	}
	model.Params = p

	w.logger.Info("training finished",
		zap.String("model", model.ID),
		zap.Int("vocabulary", model.Len()),
		zap.Duration("took", time.Since(start)),
	)
	return model, nil
}

func (w *Word2Vec) runEpoch(ctx context.Context, st *trainingState, epoch int) error {
	workers := w.params.Workers
	for first := 0; first < len(st.jobs); first += workers {
		if err := ctx.Err(); err != nil {
			return err
		}

		last := min(first+workers, len(st.jobs))
		overlays := make([]*overlay, last-first)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := first; i < last; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				overlays[i-first] = st.runJob(epoch, i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, ov := range overlays {
			ov.apply()
		}
	}
	return nil
}

type trainJob struct {
	first, last int
	// offset is the number of words in all earlier jobs of an epoch.
	offset int
}

type trainingState struct {
	params     TrainingParams
	seed       uint64
	sentences  [][]int32
	jobs       []trainJob
	totalWords int
	keep       []float64
	cumTable   []float64
	syn0       [][]float32
	syn1neg    [][]float32
}

func newTrainingState(p TrainingParams, vocab []VocabEntry, corpus *Corpus, seed uint64) *trainingState {
	index := make(map[string]int32, len(vocab))
	for i, e := range vocab {
		index[e.Word] = int32(i)
	}

	st := &trainingState{params: p, seed: seed}

	job := trainJob{}
	batch := 0
	for _, s := range corpus.Sentences {
		ids := make([]int32, 0, len(s.Tokens))
		for _, tok := range s.Tokens {
			if id, ok := index[tok]; ok {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		st.sentences = append(st.sentences, ids)
		st.totalWords += len(ids)
		batch += len(ids)
		if batch >= p.BatchWords {
			job.last = len(st.sentences)
			st.jobs = append(st.jobs, job)
			job = trainJob{first: job.last, offset: st.totalWords}
			batch = 0
		}
	}
	if batch > 0 {
		job.last = len(st.sentences)
		st.jobs = append(st.jobs, job)
	}

	st.keep = keepProbabilities(vocab, p.Sample)
	st.cumTable = unigramTable(vocab)

	rng := rand.New(rand.NewPCG(seed, 0))
	st.syn0 = make([][]float32, len(vocab))
	st.syn1neg = make([][]float32, len(vocab))
	for i := range vocab {
		row := make([]float32, p.VectorSize)
		for j := range row {
			row[j] = (rng.Float32() - 0.5) / float32(p.VectorSize)
		}
		st.syn0[i] = row
		st.syn1neg[i] = make([]float32, p.VectorSize)
	}
	return st
}

// keepProbabilities returns, per word, the chance that an occurrence survives
// frequent-word downsampling.
func keepProbabilities(vocab []VocabEntry, sample float64) []float64 {
	keep := make([]float64, len(vocab))
	if sample <= 0 {
		for i := range keep {
			keep[i] = 1
		}
		return keep
	}

	var total float64
	for _, e := range vocab {
		total += float64(e.Count)
	}
	threshold := sample * total
	for i, e := range vocab {
		c := float64(e.Count)
		keep[i] = math.Min(1, (math.Sqrt(c/threshold)+1)*threshold/c)
	}
	return keep
}

// unigramTable is the cumulative count^0.75 distribution negatives are drawn from.
func unigramTable(vocab []VocabEntry) []float64 {
	cum := make([]float64, len(vocab))
	var acc float64
	for i, e := range vocab {
		acc += math.Pow(float64(e.Count), 0.75)
		cum[i] = acc
	}
	return cum
}

func (st *trainingState) negative(rng *rand.Rand) int32 {
	r := rng.Float64() * st.cumTable[len(st.cumTable)-1]
	i := sort.SearchFloat64s(st.cumTable, r)
	if i >= len(st.cumTable) {
		i = len(st.cumTable) - 1
	}
	return int32(i)
}

func (st *trainingState) runJob(epoch, jobIndex int) *overlay {
	p := st.params
	job := st.jobs[jobIndex]
	rng := rand.New(rand.NewPCG(st.seed, uint64(epoch)<<32|uint64(jobIndex+1)))
	ov := newOverlay(st.syn0, st.syn1neg)

	neu1 := make([]float32, p.VectorSize)
	neu1e := make([]float32, p.VectorSize)
	words := make([]int32, 0, 64)
	window := make([]int32, 0, 2*p.Window)

	totalPlanned := float64(p.Epochs * st.totalWords)
	processed := epoch*st.totalWords + job.offset

	for _, sentence := range st.sentences[job.first:job.last] {
		alpha := p.Alpha - (p.Alpha-p.MinAlpha)*float64(processed)/totalPlanned
		alpha = math.Max(alpha, p.MinAlpha)
		processed += len(sentence)

		words = words[:0]
		for _, id := range sentence {
			if st.keep[id] >= rng.Float64() {
				words = append(words, id)
			}
		}

		for pos, word := range words {
			b := rng.IntN(p.Window)
			lo := max(0, pos-p.Window+b)
			hi := min(len(words), pos+p.Window+1-b)

			window = window[:0]
			for c := lo; c < hi; c++ {
				if c != pos {
					window = append(window, words[c])
				}
			}
			if len(window) == 0 {
				continue
			}

			clear(neu1)
			for _, c := range window {
				addScaled(neu1, ov.peek0(c), 1)
			}
			scale(neu1, 1/float32(len(window)))

			clear(neu1e)
			for d := 0; d <= p.Negative; d++ {
				target, label := word, float32(1)
				if d > 0 {
					target = st.negative(rng)
					if target == word {
						continue
					}
					label = 0
				}

				row := ov.row1(target)
				f := float32(dot(neu1, row))
				var g float32
				switch {
				case f > maxExp:
					g = (label - 1) * float32(alpha)
				case f < -maxExp:
					g = label * float32(alpha)
				default:
					g = (label - sigmoid(f)) * float32(alpha)
				}
				addScaled(neu1e, row, g)
				addScaled(row, neu1, g)
			}

			for _, c := range window {
				addScaled(ov.row0(c), neu1e, 1)
			}
		}
	}

	ov.toDeltas()
	return ov
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

func addScaled(dst, src []float32, a float32) {
	for i := range dst {
		dst[i] += a * src[i]
	}
}

func scale(v []float32, a float32) {
	for i := range v {
		v[i] *= a
	}
}

// overlay holds the rows one batch has written, copied from the shared
// weights on first write. After training they are turned into deltas and
// added back to the shared weights by a single goroutine.
type overlay struct {
	base0, base1 [][]float32
	syn0, syn1   map[int32][]float32
}

func newOverlay(base0, base1 [][]float32) *overlay {
	return &overlay{
		base0: base0,
		base1: base1,
		syn0:  make(map[int32][]float32),
		syn1:  make(map[int32][]float32),
	}
}

func (o *overlay) peek0(i int32) []float32 {
	if r, ok := o.syn0[i]; ok {
		return r
	}
	return o.base0[i]
}

func (o *overlay) row0(i int32) []float32 {
	return copyOnWrite(o.syn0, o.base0, i)
}

func (o *overlay) row1(i int32) []float32 {
	return copyOnWrite(o.syn1, o.base1, i)
}

func copyOnWrite(rows map[int32][]float32, base [][]float32, i int32) []float32 {
	if r, ok := rows[i]; ok {
		return r
	}
	r := make([]float32, len(base[i]))
	copy(r, base[i])
	rows[i] = r
	return r
}

func (o *overlay) toDeltas() {
	for i, r := range o.syn0 {
		addScaled(r, o.base0[i], -1)
	}
	for i, r := range o.syn1 {
		addScaled(r, o.base1[i], -1)
	}
}

func (o *overlay) apply() {
	for i, d := range o.syn0 {
		addScaled(o.base0[i], d, 1)
	}
	for i, d := range o.syn1 {
		addScaled(o.base1[i], d, 1)
	}
}
