package core

import (
	"testing"
)

func TestChunkContentID(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := ChunkContentID(tt.content)
			id2 := ChunkContentID(tt.content)

			if id1 != id2 {
				t.Errorf("ChunkContentID() produced different IDs for same content: %s vs %s", id1, id2)
			}
		})
	}
}

func TestChunkContentID_Different(t *testing.T) {
	id1 := ChunkContentID("content1")
	id2 := ChunkContentID("content2")

	if id1 == id2 {
		t.Errorf("ChunkContentID() produced same ID for different content")
	}
}

func TestCredentialDigest(t *testing.T) {
	d1 := CredentialDigest("hunter2")
	d2 := CredentialDigest("hunter2")
	d3 := CredentialDigest("hunter3")

	if d1 != d2 {
		t.Errorf("CredentialDigest() not deterministic: %s vs %s", d1, d2)
	}
	if d1 == d3 {
		t.Errorf("CredentialDigest() produced same digest for different secrets")
	}
	if d1 == "hunter2" {
		t.Errorf("CredentialDigest() returned the plaintext")
	}
}

func TestNewIDs_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		for _, id := range []string{NewKBID(), NewDocumentID(), NewJobID()} {
			if seen[id] {
				t.Fatalf("duplicate generated id %s", id)
			}
			seen[id] = true
		}
	}
}

func TestJobStatusTerminal(t *testing.T) {
	if JobQueued.Terminal() || JobRunning.Terminal() {
		t.Errorf("queued/running must not be terminal")
	}
	if !JobCompleted.Terminal() || !JobFailed.Terminal() {
		t.Errorf("completed/failed must be terminal")
	}
}
