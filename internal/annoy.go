package internal

import (
	"fmt"
	"math"

	"github.com/mariotoffia/goannoy/builder"
	"github.com/mariotoffia/goannoy/interfaces"
)

const DefaultIndexTrees = 10

// NeighborIndex answers nearest-neighbour queries over a model's vectors with
// an Annoy forest. Results are approximate; SimilarWords is the exact path.
type NeighborIndex struct {
	idx   interfaces.AnnoyIndex[float32, uint32]
	model *Model
	trees int
}

func NewNeighborIndex(model *Model, trees int) (*NeighborIndex, error) {
	if model == nil || model.Len() == 0 {
		return nil, fmt.Errorf("build neighbour index: empty model")
	}
	if trees <= 0 {
		trees = DefaultIndexTrees
	}

	idx := builder.Index[float32, uint32]().
		AngularDistance(model.Dim()).
		UseMultiWorkerPolicy().
		MmapIndexAllocator().
		Build()

	for i, v := range model.vectors {
		idx.AddItem(uint32(i), v)
	}
	idx.Build(trees, -1)

	return &NeighborIndex{idx: idx, model: model, trees: trees}, nil
}

// Similar returns up to k approximate neighbours of word, highest score first.
func (n *NeighborIndex) Similar(word string, k int) SimilarityResult {
	if k <= 0 {
		k = DefaultTopK
	}
	res := SimilarityResult{Query: word, Neighbors: []Neighbor{}}

	qi, ok := n.model.index[word]
	if !ok {
		return res
	}
	res.Found = true

	searchCtx := n.idx.CreateContext()
	// one extra slot for the query word itself
	ids, distances := n.idx.GetNnsByVector(n.model.vectors[qi], k+1, -1, searchCtx)

	for i, id := range ids {
		if int(id) == qi || int(id) >= n.model.Len() {
			continue
		}
		if len(res.Neighbors) == k {
			break
		}

		// Angular distance is sqrt(2 - 2cos).
		score := 0.0
		if i < len(distances) {
			d := float64(distances[i])
			score = math.Max(-1, math.Min(1, 1-d*d/2))
		}
		res.Neighbors = append(res.Neighbors, Neighbor{Word: n.model.words[id], Score: score})
	}

	return res
}
