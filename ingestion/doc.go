// Package ingestion implements the document ingestion pipeline: extract
// text from a PDF, split it into overlapping chunks, embed the chunks,
// persist them to the vector store, then extract and persist a knowledge
// graph for the whole document.
//
// Stage order is fixed. The active knowledge base is resolved before any
// I/O, chunk persistence must succeed for the job to succeed, and the
// graph stage can only degrade the result, never fail it.
package ingestion
