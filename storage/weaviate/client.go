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


// Package weaviate implements the vector and graph stores on a Weaviate
// instance. Chunks, graph nodes and graph edges each live in their own
// class with vectorizer "none"; all vectors come from the ai layer.
package weaviate

import (
	"fmt"
	"net/url"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
)

// NewClient creates a Weaviate client from a base URL such as
// "http://localhost:8080".
func NewClient(baseURL string) (*weaviate.Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("weaviate: parse url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("weaviate: url %q must include scheme and host", baseURL)
	}

	return weaviate.NewClient(weaviate.Config{
		Host:   u.Host,
		Scheme: u.Scheme,
	})
}
