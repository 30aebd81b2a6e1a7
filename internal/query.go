package internal

import (
	"context"
	"sort"
)

type Neighbor struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// SimilarityResult holds the nearest neighbours of Query. Found is false when
// the query word is not in the vocabulary; Neighbors is then empty.
type SimilarityResult struct {
	Query     string     `json:"query"`
	Found     bool       `json:"found"`
	Neighbors []Neighbor `json:"neighbors"`
}

type Point struct {
	Word string  `json:"word"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type ProjectionResult struct {
	Points []Point `json:"points"`
}

// SimilarWords ranks every other vocabulary word by cosine similarity to word
// and returns the best k, highest first. Equal scores keep vocabulary order.
func SimilarWords(m *Model, word string, k int) SimilarityResult {
	if k <= 0 {
		k = DefaultTopK
	}
	res := SimilarityResult{Query: word, Neighbors: []Neighbor{}}

	qi, ok := m.index[word]
	if !ok {
		return res
	}
	res.Found = true

	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, 0, m.Len()-1)
	for i := range m.words {
		if i == qi {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: m.cosine(qi, i)})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return candidates[a].idx < candidates[b].idx
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	res.Neighbors = make([]Neighbor, k)
	for i, c := range candidates[:k] {
		res.Neighbors[i] = Neighbor{Word: m.words[c.idx], Score: c.score}
	}
	return res
}

// ProjectEmbeddings maps the topN most frequent words to the plane with t-SNE.
func ProjectEmbeddings(ctx context.Context, m *Model, topN int, opts TSNEOptions) (ProjectionResult, error) {
	if topN <= 0 {
		topN = DefaultProjectionN
	}
	n := min(topN, m.Len())

	data := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(m.vectors[i]))
		for j, v := range m.vectors[i] {
			row[j] = float64(v)
		}
		data[i] = row
	}

	coords, err := TSNE(ctx, data, opts)
	if err != nil {
		return ProjectionResult{}, err
	}

	points := make([]Point, n)
	for i := range points {
		points[i] = Point{Word: m.words[i], X: coords[i][0], Y: coords[i][1]}
	}
	return ProjectionResult{Points: points}, nil
}
