package sim

import (
	"context"
	"sort"
	"strings"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// Retriever scores the embedded policy handbook chunks against the query
// with keyword overlap. Zero matching chunks means zero results, which the
// policy pipeline treats as "no grounding exists".
type Retriever struct {
	chunks []policyChunk
}

func NewRetriever() (*Retriever, error) {
	chunks, err := loadPolicyChunks()
	if err != nil {
		return nil, err
	}
	return &Retriever{chunks: chunks}, nil
}

func (r *Retriever) Retrieve(_ context.Context, query string, k int) ([]ports.Chunk, error) {
	if k <= 0 {
		k = 5
	}
	words := queryWords(query)

	type scored struct {
		chunk policyChunk
		score float64
	}
	var hits []scored
	for _, c := range r.chunks {
		matches := 0
		for _, kw := range c.Keywords {
			if words[kw] {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		hits = append(hits, scored{chunk: c, score: float64(matches) / float64(len(c.Keywords))})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > k {
		hits = hits[:k]
	}

	out := make([]ports.Chunk, 0, len(hits))
	for _, h := range hits {
		out = append(out, ports.Chunk{
			Content:    h.chunk.Content,
			Score:      h.score,
			PageNumber: h.chunk.Page,
			SourceRef:  h.chunk.SourceRef,
		})
	}
	return out, nil
}

// queryWords matches keywords on whole words so "late" never fires on
// "validate". Hyphenated keywords like "no-show" stay intact.
func queryWords(query string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		out[strings.Trim(w, ".,?!:;\"'()")] = true
	}
	return out
}
