package gemini

import "fmt"

const graphExtractionPromptTemplate = `You are a Knowledge Graph extraction engine.

Extract a clean Knowledge Graph from the FULL DOCUMENT TEXT below.
Identify all important entities (nodes) and meaningful relationships (edges).

### OUTPUT REQUIREMENTS
Return ONLY a valid JSON object in the following format:

{
  "nodes": [
    {"id": "unique_node_id", "label": "Readable Name", "type": "Category"}
  ],
  "edges": [
    {"source": "node_id", "target": "node_id", "relation": "relationship_type"}
  ]
}

### RULES
- The JSON MUST be valid.
- Use short unique node IDs (e.g., n1, n2, n3).
- Do NOT include explanations or markdown.
- If unsure about a relationship, omit it.
- Merge duplicate entities into a single node.

### DOCUMENT TEXT
-----------------
%s`

// buildGraphPrompt embeds the document text into the extraction prompt.
func buildGraphPrompt(text string) string {
	return fmt.Sprintf(graphExtractionPromptTemplate, text)
}
