package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for Document. Name and description
// are English-analyzed text; type, category and genres are exact keywords.
func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Analyzer = en.AnalyzerName
	name.Store = true
	name.IncludeTermVectors = true
	doc.AddFieldMappingsAt("name", name)

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = en.AnalyzerName
	desc.Store = false
	doc.AddFieldMappingsAt("description", desc)

	for _, field := range []string{"id", "type", "category", "genres"} {
		kw := bleve.NewTextFieldMapping()
		kw.Analyzer = keyword.Name
		kw.Store = field != "genres"
		doc.AddFieldMappingsAt(field, kw)
	}

	created := bleve.NewNumericFieldMapping()
	created.Store = true
	doc.AddFieldMappingsAt("created_at", created)

	im.AddDocumentMapping("_default", doc)
	return im
}
