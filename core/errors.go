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


package core

import "errors"

// Domain errors
var (
	// ErrTenantNotFound indicates the tenant does not exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantExists indicates a tenant with that id already exists.
	ErrTenantExists = errors.New("tenant already exists")

	// ErrUnknownKnowledgeBase indicates the tenant has no knowledge base
	// with the given id.
	ErrUnknownKnowledgeBase = errors.New("unknown knowledge base")

	// ErrNoActiveKnowledgeBase indicates the tenant has no active knowledge
	// base; ingestion must be rejected before any I/O happens.
	ErrNoActiveKnowledgeBase = errors.New("no active knowledge base")

	// ErrEmptyDocument indicates text extraction produced no content.
	ErrEmptyDocument = errors.New("document produced no text")

	// ErrEmptyTenantID indicates a tenant id was blank.
	ErrEmptyTenantID = errors.New("tenant id cannot be empty")

	// ErrEmptyKBName indicates a knowledge base name was blank.
	ErrEmptyKBName = errors.New("knowledge base name cannot be empty")
)
