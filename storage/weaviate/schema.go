package weaviate

import (
	"context"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	chunkClass = "DocumentChunk"
	nodeClass  = "KGNode"
	edgeClass  = "KGEdge"
)

func textProps(names ...string) []*models.Property {
	props := make([]*models.Property, 0, len(names))
	for _, n := range names {
		props = append(props, &models.Property{Name: n, DataType: []string{"text"}})
	}
	return props
}

// EnsureSchema creates the chunk, node and edge classes if they do not
// exist yet. All classes use vectorizer "none"; chunk vectors are
// supplied at write time and graph classes are queried by keyword only.
func EnsureSchema(ctx context.Context, client *weaviate.Client) error {
	classes := []*models.Class{
		{
			Class:       chunkClass,
			Description: "A chunk of an ingested document",
			Vectorizer:  "none",
			Properties: append(
				textProps("text", "tenant_id", "kb_id", "pdf_id"),
				&models.Property{Name: "chunk_index", DataType: []string{"int"}},
			),
		},
		{
			Class:       nodeClass,
			Description: "A knowledge-graph entity extracted from a document",
			Vectorizer:  "none",
			Properties:  textProps("node_id", "label", "type", "tenant_id", "kb_id", "pdf_id"),
		},
		{
			Class:       edgeClass,
			Description: "A knowledge-graph relation extracted from a document",
			Vectorizer:  "none",
			Properties:  textProps("source", "target", "relation", "tenant_id", "kb_id", "pdf_id"),
		},
	}

	for _, class := range classes {
		exists, err := client.Schema().ClassExistenceChecker().
			WithClassName(class.Class).
			Do(ctx)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
			return err
		}
	}
	return nil
}
