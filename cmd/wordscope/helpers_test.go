package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/4thel00z/wordscope/internal"
	"github.com/go-git/go-billy/v5/memfs"
)

var newsLines = []string{
	"Money supply rises as the central bank cuts interest rates.",
	"The money market falls on weak bank lending.",
	"Interest rates stable as the dollar rises against the yen.",
	"Oil prices fall on rising crude supply.",
	"Crude oil output rises in the gulf.",
	"The central bank says money growth is stable.",
}

var stopwords = []string{"the", "a", "as", "and", "on", "in", "is", "says"}

func testDocuments(n int) []internal.RawDocument {
	docs := make([]internal.RawDocument, n)
	for i := range docs {
		var b strings.Builder
		for j := 0; j < 3; j++ {
			b.WriteString(newsLines[(i+j)%len(newsLines)])
			b.WriteString(" ")
		}
		docs[i] = internal.RawDocument{ID: fmt.Sprintf("training/%d", i+1), Text: b.String()}
	}
	return docs
}

func fastParams() internal.TrainingParams {
	p := internal.DefaultTrainingParams()
	p.VectorSize = 12
	p.Window = 3
	p.MinCount = 1
	p.Workers = 2
	p.Epochs = 10
	p.Sample = 0
	p.BatchWords = 50
	p.Seed = 3
	return p
}

var fastTSNE = internal.TSNEOptions{Perplexity: 5, Iterations: 300, Seed: 1}

// staticApp trains on an in-memory corpus, no network involved.
func staticApp(t *testing.T) *internal.App {
	t.Helper()
	resources := &internal.StaticResources{Docs: testDocuments(12), Words: stopwords}
	loader := internal.NewCorpusLoader(resources, "english", nil)
	return internal.NewApp(loader, internal.NewWord2Vec(fastParams(), nil), nil, internal.WithTSNEOptions(fastTSNE))
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// newMirror serves a Reuters and a stopwords package laid out like nltk_data.
func newMirror(t *testing.T) *httptest.Server {
	t.Helper()

	corpus := map[string]string{"reuters/cats.txt": "training/1 money-fx\n"}
	for _, d := range testDocuments(12) {
		corpus["reuters/"+d.ID] = d.Text
	}
	packages := map[string][]byte{
		internal.PackagePath("reuters"):   buildZip(t, corpus),
		internal.PackagePath("stopwords"): buildZip(t, map[string]string{"stopwords/english": strings.Join(stopwords, "\n")}),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := packages[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupE2E wires an app the way setup does, but on memfs against a local mirror.
func setupE2E(t *testing.T) *app {
	t.Helper()
	return appFor(t, newMirror(t).URL)
}

func appFor(t *testing.T, dataURL string) *app {
	t.Helper()

	cfg := internal.DefaultConfig()
	cfg.Data.BaseURL = dataURL
	cfg.Data.CacheDir = "/cache"
	cfg.Query.Perplexity = fastTSNE.Perplexity
	cfg.Query.Iterations = fastTSNE.Iterations

	p, err := internal.NewPipeline(cfg, nil, internal.PipelineOptions{
		FS:      memfs.New(),
		Trainer: internal.NewWord2Vec(fastParams(), nil),
	})
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	return &app{cfg: cfg, pipeline: p}
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test", a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}
