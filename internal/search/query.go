package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit is used when Params.Limit is not positive.
const DefaultLimit = 20

// Params configures a search.
type Params struct {
	Query  string
	Types  []DocType // empty means all kinds
	Genre  string    // genre slug filter, books only
	Limit  int
	Offset int
}

// Result is a page of ranked hits.
type Result struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []Hit        `json:"hits"`
	Types  []FacetCount `json:"types,omitempty"`
}

// Hit is a single ranked match.
type Hit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Category   string            `json:"category,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is the number of hits of one kind.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search runs a ranked query across the index.
func (s *Index) Search(ctx context.Context, p Params) (*Result, error) {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(p), p.Limit, p.Offset, false)
	req.SortBy([]string{"-_score"})
	req.AddFacet("type", bleve.NewFacetRequest("type", len(AllDocTypes)))
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("name")
	req.Fields = []string{"id", "type", "name", "category"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  p.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if t, ok := h.Fields["type"].(string); ok {
			hit.Type = DocType(t)
		}
		if n, ok := h.Fields["name"].(string); ok {
			hit.Name = n
		}
		if c, ok := h.Fields["category"].(string); ok {
			hit.Category = c
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, frags := range h.Fragments {
				if len(frags) > 0 {
					hit.Highlights[field] = frags[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}

	if facet, ok := res.Facets["type"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			out.Types = append(out.Types, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	return out, nil
}

// buildQuery combines the text match with the kind and genre filters.
func buildQuery(p Params) query.Query {
	var must []query.Query

	if q := strings.TrimSpace(p.Query); q != "" {
		name := bleve.NewMatchQuery(q)
		name.SetField("name")
		name.SetBoost(3.0)

		desc := bleve.NewMatchQuery(q)
		desc.SetField("description")
		desc.SetBoost(1.0)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		text := []query.Query{name, desc, fuzzy}
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}
		must = append(must, bleve.NewDisjunctionQuery(text...))
	}

	if len(p.Types) > 0 {
		kinds := make([]query.Query, len(p.Types))
		for i, t := range p.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			kinds[i] = tq
		}
		must = append(must, bleve.NewDisjunctionQuery(kinds...))
	}

	if p.Genre != "" {
		gq := bleve.NewTermQuery(p.Genre)
		gq.SetField("genres")
		must = append(must, gq)
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}
