// Package retrieval ranks indexed chunks against a query vector and
// widens the winners to paragraph boundaries. Search is brute force
// over every stored index; corpora here are small enough that an ANN
// structure would only add moving parts.
package retrieval

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// IndexSource yields stored document indices. *index.Store satisfies it.
type IndexSource interface {
	List() ([]string, error)
	Load(docID string) (*doc.DocumentIndex, error)
}

// Result is one retrieved chunk with its provenance and score.
type Result struct {
	DocID string
	Chunk doc.Chunk
	Score float64
}

// Retriever searches all stored indices for a query vector.
type Retriever struct {
	indices       IndexSource
	overlapCutoff float64
	log           *slog.Logger
}

func NewRetriever(indices IndexSource, overlapCutoff float64, log *slog.Logger) *Retriever {
	return &Retriever{
		indices:       indices,
		overlapCutoff: overlapCutoff,
		log:           log,
	}
}

// Retrieve scores every chunk in every index against the query vector
// and returns up to topK results, highest similarity first, after
// near-duplicate filtering. The second return value is the number of
// documents actually searched. An index that fails to load is skipped,
// not fatal.
func (r *Retriever) Retrieve(queryVec []float64, topK int) ([]Result, int, error) {
	ids, err := r.indices.List()
	if err != nil {
		return nil, 0, err
	}

	var pool []Result
	searched := 0
	for _, id := range ids {
		idx, err := r.indices.Load(id)
		if err != nil {
			r.log.Warn("skipping unreadable index", "doc_id", id, "error", err)
			continue
		}
		searched++
		for i, c := range idx.Chunks {
			pool = append(pool, Result{
				DocID: idx.DocID,
				Chunk: c,
				Score: Cosine(queryVec, idx.Embeddings[i]),
			})
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	return r.selectDiverse(pool, topK), searched, nil
}

// selectDiverse walks the ranked pool greedily, dropping exact text
// duplicates and chunks whose token overlap with an already selected
// chunk exceeds the cutoff.
func (r *Retriever) selectDiverse(pool []Result, topK int) []Result {
	if topK <= 0 {
		return nil
	}
	seen := make(map[string]bool)
	var selected []Result
	var selectedTokens []map[string]bool

	for _, cand := range pool {
		if len(selected) >= topK {
			break
		}
		text := strings.TrimSpace(cand.Chunk.Text)
		if seen[text] {
			continue
		}
		tokens := tokenSet(text)
		tooClose := false
		for _, prev := range selectedTokens {
			if jaccard(tokens, prev) > r.overlapCutoff {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		seen[text] = true
		selected = append(selected, cand)
		selectedTokens = append(selectedTokens, tokens)
	}
	return selected
}

// Cosine returns the cosine similarity of two vectors. A zero-norm
// vector on either side yields 0 rather than NaN.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		set[tok] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
