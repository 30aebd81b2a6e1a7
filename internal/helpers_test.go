package internal

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testTimeout = 5 * time.Second
	testTick    = 10 * time.Millisecond
)

var testStopwords = []string{"the", "a", "an", "as", "and", "of", "to", "in", "on", "is", "are", "by", "for", "its", "it"}

// newsLines are short market-report sentences; repeated across documents so
// the default minimum count of 5 keeps a useful vocabulary.
var newsLines = []string{
	"Money supply rises as the central bank cuts interest rates.",
	"The money market falls on weak bank lending.",
	"Interest rates stable as the dollar rises against the yen.",
	"Oil prices fall on rising crude supply.",
	"Crude oil output rises in the gulf.",
	"The central bank says money growth is stable.",
	"Dollar falls against the yen on trade data.",
	"Bank lending and money supply growth slow.",
}

func testDocuments(n int) []RawDocument {
	docs := make([]RawDocument, n)
	for i := range docs {
		var b strings.Builder
		for j := 0; j < 4; j++ {
			b.WriteString(newsLines[(i+j)%len(newsLines)])
			b.WriteString(" ")
		}
		docs[i] = RawDocument{ID: fmt.Sprintf("training/%d", i+1), Text: b.String()}
	}
	return docs
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func reutersZip(t *testing.T, docs []RawDocument) []byte {
	t.Helper()
	files := map[string]string{
		"reuters/cats.txt":  "training/1 money-fx\n",
		"reuters/README":    "Reuters-21578 ApteMod\n",
		"reuters/stopwords": "a\nthe\n",
	}
	for _, d := range docs {
		files["reuters/"+d.ID] = d.Text
	}
	return buildZip(t, files)
}

func stopwordsZip(t *testing.T) []byte {
	t.Helper()
	return buildZip(t, map[string]string{
		"stopwords/english": strings.Join(testStopwords, "\n") + "\n",
		"stopwords/german":  "der\ndie\ndas\n",
	})
}

type mirror struct {
	*httptest.Server
	hits     atomic.Int32
	lastAuth atomic.Value
}

// newMirror serves package archives the way the NLTK data repository lays them out.
func newMirror(t *testing.T, packages map[string][]byte) *mirror {
	t.Helper()
	m := &mirror{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		m.lastAuth.Store(r.Header.Get("Authorization"))
		for name, data := range packages {
			if r.URL.Path == "/"+PackagePath(name) {
				w.Header().Set("Content-Length", fmt.Sprint(len(data)))
				_, _ = w.Write(data)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

func testDataConfig(baseURL string) DataConfig {
	cfg := DefaultConfig().Data
	cfg.BaseURL = baseURL
	return cfg
}

func fastParams() TrainingParams {
	return TrainingParams{
		VectorSize: 16,
		Window:     3,
		MinCount:   1,
		Workers:    2,
		Epochs:     20,
		Negative:   3,
		Alpha:      0.025,
		MinAlpha:   0.0001,
		Sample:     0,
		BatchWords: 40,
		Seed:       7,
	}
}

func sentences(lines ...string) *Corpus {
	c := &Corpus{TotalDocuments: len(lines)}
	for i, l := range lines {
		c.Sentences = append(c.Sentences, Sentence{DocumentID: fmt.Sprint(i), Tokens: strings.Fields(l)})
	}
	return c
}

// handModel builds a model with known vectors, most frequent first.
func handModel(t *testing.T, words []string, vectors [][]float32) *Model {
	t.Helper()
	vocab := make([]VocabEntry, len(words))
	for i, w := range words {
		vocab[i] = VocabEntry{Word: w, Count: int64(len(words) - i)}
	}
	m, err := NewModel(vocab, vectors)
	require.NoError(t, err)
	return m
}
