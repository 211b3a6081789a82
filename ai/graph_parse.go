// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"haystack/core"
)

// ErrMissingGraphArrays signals that neither a full parse nor an array
// salvage could locate nodes and edges in the model output.
var ErrMissingGraphArrays = errors.New("could not locate nodes/edges arrays in model output")

// graphNode is an internal type used for JSON unmarshaling.
// It matches the structure requested from the LLM.
type graphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// graphEdge is an internal type used for JSON unmarshaling.
type graphEdge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// graphPayload is the wrapper structure for the LLM's JSON response.
type graphPayload struct {
	Nodes []graphNode `json:"nodes"`
	Edges []graphEdge `json:"edges"`
}

var (
	nodesArrayRe = regexp.MustCompile(`"nodes"\s*:\s*(\[[\s\S]*?\])`)
	edgesArrayRe = regexp.MustCompile(`"edges"\s*:\s*(\[[\s\S]*?\])`)
)

// ParseKnowledgeGraph decodes a raw LLM response into a knowledge graph.
// It strips markdown fences, repairs common JSON defects and, as a last
// resort, salvages the nodes and edges arrays individually. A response
// with zero nodes and edges is a valid result; a response where neither
// the object nor the arrays parse is an error. All provider extractors
// share this tolerance layer.
func ParseKnowledgeGraph(raw string) (*core.KnowledgeGraph, error) {
	// Strip markdown code fences if present
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	// Try to repair common JSON issues
	s = repairJSON(s)

	var payload graphPayload
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		salvaged, salvageErr := salvageGraph(s)
		if salvageErr != nil {
			return nil, err
		}
		payload = *salvaged
	}

	return payloadToGraph(&payload), nil
}

// salvageGraph pulls the nodes and edges arrays out of a response whose
// surrounding object failed to parse.
func salvageGraph(s string) (*graphPayload, error) {
	nodesMatch := nodesArrayRe.FindStringSubmatch(s)
	edgesMatch := edgesArrayRe.FindStringSubmatch(s)
	if nodesMatch == nil || edgesMatch == nil {
		return nil, ErrMissingGraphArrays
	}

	var payload graphPayload
	if err := json.Unmarshal([]byte(nodesMatch[1]), &payload.Nodes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(edgesMatch[1]), &payload.Edges); err != nil {
		return nil, err
	}
	return &payload, nil
}

func payloadToGraph(p *graphPayload) *core.KnowledgeGraph {
	graph := &core.KnowledgeGraph{
		Nodes: make([]core.GraphNode, 0, len(p.Nodes)),
		Edges: make([]core.GraphEdge, 0, len(p.Edges)),
	}
	for _, n := range p.Nodes {
		graph.Nodes = append(graph.Nodes, core.GraphNode{
			NodeID: n.ID,
			Label:  n.Label,
			Type:   n.Type,
		})
	}
	for _, e := range p.Edges {
		graph.Edges = append(graph.Edges, core.GraphEdge{
			Source:   e.Source,
			Target:   e.Target,
			Relation: e.Relation,
		})
	}
	return graph
}
