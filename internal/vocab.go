package internal

import "sort"

type VocabEntry struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// BuildVocabulary counts every token of the corpus and keeps the words seen at
// least minCount times, most frequent first. Equal counts keep the order in
// which the words first appeared.
func BuildVocabulary(c *Corpus, minCount int) []VocabEntry {
	if c == nil {
		return nil
	}

	counts := make(map[string]int64)
	var order []string
	for _, s := range c.Sentences {
		for _, tok := range s.Tokens {
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	vocab := make([]VocabEntry, 0, len(order))
	for _, w := range order {
		if counts[w] >= int64(minCount) {
			vocab = append(vocab, VocabEntry{Word: w, Count: counts[w]})
		}
	}

	sort.SliceStable(vocab, func(i, j int) bool {
		return vocab[i].Count > vocab[j].Count
	})
	return vocab
}
