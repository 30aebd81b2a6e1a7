package internal

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type AppOption func(*App)

// WithQueryDefaults sets the neighbour count and projection size used when a
// query asks for zero or fewer.
func WithQueryDefaults(topK, projectionN int) AppOption {
	return func(a *App) {
		if topK > 0 {
			a.topK = topK
		}
		if projectionN > 0 {
			a.projectionN = projectionN
		}
	}
}

// WithNeighborIndex builds the Annoy forest with the given number of trees
// during Initialize instead of on the first approximate query.
func WithNeighborIndex(trees int) AppOption {
	return func(a *App) {
		if trees > 0 {
			a.indexTrees = trees
		}
		a.eagerIndex = true
	}
}

func WithTSNEOptions(opts TSNEOptions) AppOption {
	return func(a *App) {
		a.tsne = opts
	}
}

// App owns the process' single trained model. Initialize loads the corpus and
// trains at most once at a time; queries only read the published model.
type App struct {
	loader     CorpusProvider
	trainer    Trainer
	logger     *zap.Logger
	tsne       TSNEOptions
	indexTrees int
	eagerIndex bool

	topK        int
	projectionN int

	group     singleflight.Group
	state     atomic.Pointer[appState]
	trainings atomic.Int64

	mu      sync.Mutex
	lastErr error
}

type appState struct {
	model     *Model
	documents int
	skipped   int

	indexOnce sync.Once
	index     *NeighborIndex
	indexErr  error
}

func (st *appState) neighborIndex(trees int) (*NeighborIndex, error) {
	st.indexOnce.Do(func() {
		st.index, st.indexErr = NewNeighborIndex(st.model, trees)
	})
	return st.index, st.indexErr
}

func NewApp(loader CorpusProvider, trainer Trainer, logger *zap.Logger, opts ...AppOption) *App {
	a := &App{
		loader:     loader,
		trainer:    trainer,
		logger:     orNop(logger),
		tsne:       DefaultTSNEOptions(),
		indexTrees: DefaultIndexTrees,

		topK:        DefaultTopK,
		projectionN: DefaultProjectionN,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Initialize returns the cached model, loading and training it first if
// needed. Concurrent callers on an empty cache share one run. On failure the
// cache stays empty and a later call starts over.
//
// The shared run is detached from every caller's cancellation: a caller whose
// ctx ends stops waiting and gets a canceled error, while the run carries on
// for the callers still waiting and for whoever asks next.
func (a *App) Initialize(ctx context.Context) (*Model, error) {
	if st := a.state.Load(); st != nil {
		return st.model, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, canceledError("initialize", err)
	}

	ch := a.group.DoChan("model", func() (any, error) {
		if st := a.state.Load(); st != nil {
			return st, nil
		}

		st, err := a.build(context.WithoutCancel(ctx))
		a.mu.Lock()
		a.lastErr = err
		a.mu.Unlock()
		if err != nil {
			a.logger.Error("initialization failed", zap.String("kind", string(KindOf(err))), zap.Error(err))
			return nil, err
		}

		a.state.Store(st)
		return st, nil
	})

	select {
	case <-ctx.Done():
		a.logger.Debug("stopped waiting for initialization", zap.Error(ctx.Err()))
		return nil, canceledError("initialize", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			a.logger.Debug("joined in-flight initialization")
		}
		return res.Val.(*appState).model, nil
	}
}

func (a *App) build(ctx context.Context) (*appState, error) {
	start := time.Now()

	corpus, err := a.loader.Load(ctx)
	if err != nil {
		if KindOf(err) == KindUnknown {
			err = resourceError("load corpus", err)
		}
		return nil, err
	}

	a.trainings.Add(1)
	model, err := a.trainer.Train(ctx, corpus)
	if err != nil {
		if KindOf(err) == KindUnknown {
			err = trainingError("train", err)
		}
		return nil, err
	}

	st := &appState{
		model:     model,
		documents: corpus.TotalDocuments,
		skipped:   len(corpus.Skipped),
	}

	if a.eagerIndex {
		if _, err := st.neighborIndex(a.indexTrees); err != nil {
			return nil, trainingError("neighbour index", err)
		}
	}

	a.logger.Info("model ready",
		zap.String("model", model.ID),
		zap.Int("vocabulary", model.Len()),
		zap.Bool("index", a.eagerIndex),
		zap.Duration("took", time.Since(start)),
	)
	return st, nil
}

// Model returns the cached model without ever training.
func (a *App) Model() (*Model, error) {
	st := a.state.Load()
	if st == nil {
		return nil, ErrNotInitialized
	}
	return st.model, nil
}

// Trainings counts how many times the trainer has been invoked.
func (a *App) Trainings() int64 {
	return a.trainings.Load()
}

func (a *App) Similar(word string, k int) (SimilarityResult, error) {
	m, err := a.Model()
	if err != nil {
		return SimilarityResult{}, err
	}
	return SimilarWords(m, word, a.orTopK(k)), nil
}

func (a *App) SimilarApprox(word string, k int) (SimilarityResult, error) {
	st := a.state.Load()
	if st == nil {
		return SimilarityResult{}, ErrNotInitialized
	}
	idx, err := st.neighborIndex(a.indexTrees)
	if err != nil {
		return SimilarityResult{}, fmt.Errorf("neighbour index: %w", err)
	}
	return idx.Similar(word, a.orTopK(k)), nil
}

func (a *App) Project(ctx context.Context, topN int) (ProjectionResult, error) {
	m, err := a.Model()
	if err != nil {
		return ProjectionResult{}, err
	}
	if topN <= 0 {
		topN = a.projectionN
	}
	return ProjectEmbeddings(ctx, m, topN, a.tsne)
}

func (a *App) orTopK(k int) int {
	if k <= 0 {
		return a.topK
	}
	return k
}

func (a *App) Vocabulary(n int) ([]VocabEntry, error) {
	m, err := a.Model()
	if err != nil {
		return nil, err
	}
	return m.Vocabulary(n), nil
}

type Status struct {
	Initialized   bool       `json:"initialized"`
	ModelID       string     `json:"model_id,omitempty"`
	TrainedAt     *time.Time `json:"trained_at,omitempty"`
	Vocabulary    int        `json:"vocabulary"`
	Dimension     int        `json:"dimension"`
	Documents     int        `json:"documents"`
	Skipped       int        `json:"skipped"`
	Trainings     int64      `json:"trainings"`
	LastError     string     `json:"last_error,omitempty"`
	LastErrorKind ErrorKind  `json:"last_error_kind,omitempty"`
}

func (a *App) Status() Status {
	s := Status{Trainings: a.trainings.Load()}

	a.mu.Lock()
	if a.lastErr != nil {
		s.LastError = a.lastErr.Error()
		s.LastErrorKind = KindOf(a.lastErr)
	}
	a.mu.Unlock()

	st := a.state.Load()
	if st == nil {
		return s
	}
	trainedAt := st.model.TrainedAt
	s.Initialized = true
	s.ModelID = st.model.ID
	s.TrainedAt = &trainedAt
	s.Vocabulary = st.model.Len()
	s.Dimension = st.model.Dim()
	s.Documents = st.documents
	s.Skipped = st.skipped
	return s
}
