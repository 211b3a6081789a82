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

import (
	"fmt"
	"strings"
)

// ValidateTenantID validates a tenant identifier.
//
// Validation rules:
//   - must not be empty or whitespace-only
func ValidateTenantID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyTenantID
	}
	return nil
}

// ValidateKBName validates a knowledge base name.
//
// Validation rules:
//   - must not be empty or whitespace-only
func ValidateKBName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyKBName
	}
	return nil
}

// ValidateJobTransition checks a job status transition against the job
// state machine: queued to running, running to completed or failed.
// Terminal states have no outgoing transitions.
func ValidateJobTransition(from, to JobStatus) error {
	valid := false
	switch from {
	case JobQueued:
		valid = to == JobRunning
	case JobRunning:
		valid = to == JobCompleted || to == JobFailed
	}
	if !valid {
		return fmt.Errorf("invalid job transition %s -> %s", from, to)
	}
	return nil
}
