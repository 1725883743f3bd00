// Package rag ties retrieval and generation together: it embeds the
// question, ranks stored chunks, expands the winners into prompt
// context and asks the configured model for a grounded answer.
package rag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
	"github.com/OuyangRuyi/pdf-reader/internal/docsource"
	"github.com/OuyangRuyi/pdf-reader/internal/retrieval"
)

// NoContentAnswer is returned when nothing relevant can be retrieved.
// No generation call is made in that case.
const NoContentAnswer = "No relevant document content found. Please upload and embed documents first."

// QueryEmbedder turns a question into a query vector.
// *llm.EmbeddingClient satisfies this.
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float64, error)
}

// Generator produces the final answer text. llm.Generator satisfies this.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// IndexManager exposes the index lifecycle the engine delegates to.
// *index.Store satisfies this.
type IndexManager interface {
	Create(ctx context.Context, docID string) (bool, error)
	List() ([]string, error)
	Delete(docID string) error
	Exists(docID string) bool
}

// ContextChunk is one retrieved, expanded chunk as returned to clients.
type ContextChunk struct {
	DocID           string   `json:"doc_id"`
	Page            int      `json:"page"`
	Type            string   `json:"type"`
	Chunk           string   `json:"chunk"`
	SimilarityScore float64  `json:"similarity_score"`
	BBox            doc.Rect `json:"bbox"`
}

// QueryResult is the full answer payload for one question.
type QueryResult struct {
	Answer            string         `json:"answer"`
	ContextChunks     []ContextChunk `json:"context_chunks"`
	TotalDocsSearched int            `json:"total_docs_searched"`
}

// Engine orchestrates one RAG pipeline instance.
type Engine struct {
	embedder  QueryEmbedder
	generator Generator
	retriever *retrieval.Retriever
	indices   IndexManager
	provider  docsource.Provider
	language  string
	topK      int
	log       *slog.Logger
}

func NewEngine(embedder QueryEmbedder, generator Generator, retriever *retrieval.Retriever, indices IndexManager, provider docsource.Provider, language string, defaultTopK int, log *slog.Logger) *Engine {
	return &Engine{
		embedder:  embedder,
		generator: generator,
		retriever: retriever,
		indices:   indices,
		provider:  provider,
		language:  language,
		topK:      defaultTopK,
		log:       log,
	}
}

// Answer runs the full query pipeline. When retrieval yields nothing,
// the sentinel answer comes back without touching the generation
// provider. A generation failure still returns the retrieved context,
// with the error text as the answer.
func (e *Engine) Answer(ctx context.Context, question string, topK int) (*QueryResult, error) {
	if topK <= 0 {
		topK = e.topK
	}
	log := e.log.With("top_k", topK)

	empty := &QueryResult{
		Answer:        NoContentAnswer,
		ContextChunks: []ContextChunk{},
	}

	ids, err := e.indices.List()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return empty, nil
	}

	queryVec, err := e.embedder.EmbedOne(ctx, question)
	if err != nil || len(queryVec) == 0 {
		if err != nil {
			log.Error("question embedding failed", "error", err)
		}
		return empty, nil
	}

	results, searched, err := e.retriever.Retrieve(queryVec, topK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return empty, nil
	}

	contextText, chunks := e.prepareContext(ctx, results)

	answer, err := e.generator.GenerateText(ctx, BuildAnswerPrompt(question, contextText, e.language))
	if err != nil {
		log.Error("answer generation failed", "error", err)
		answer = "Error generating AI response: " + err.Error()
	}

	return &QueryResult{
		Answer:            answer,
		ContextChunks:     chunks,
		TotalDocsSearched: searched,
	}, nil
}

// prepareContext expands each retrieved chunk and renders the labeled
// context text for the prompt. Document full texts are fetched at most
// once per document; when the fetch fails the stored chunk text stands.
func (e *Engine) prepareContext(ctx context.Context, results []retrieval.Result) (string, []ContextChunk) {
	fullTexts := make(map[string]string)
	parts := make([]string, 0, len(results))
	chunks := make([]ContextChunk, 0, len(results))

	for _, res := range results {
		expanded := strings.TrimSpace(res.Chunk.Text)
		if res.Chunk.HasSpan() {
			fullText, ok := fullTexts[res.DocID]
			if !ok {
				var err error
				fullText, err = e.provider.GetFullText(ctx, res.DocID)
				if err != nil {
					e.log.Warn("full text unavailable, using stored chunk", "doc_id", res.DocID, "error", err)
					fullText = ""
				}
				fullTexts[res.DocID] = fullText
			}
			expanded = retrieval.Expand(res.Chunk, fullText)
		}

		parts = append(parts, formatContextPart(res.DocID, res.Chunk.Page, string(res.Chunk.Type), res.Score, expanded))
		chunks = append(chunks, ContextChunk{
			DocID:           res.DocID,
			Page:            res.Chunk.Page,
			Type:            string(res.Chunk.Type),
			Chunk:           expanded,
			SimilarityScore: res.Score,
			BBox:            res.Chunk.BBox,
		})
	}
	return strings.Join(parts, "\n\n---\n\n"), chunks
}

// CreateIndex builds the vector index for one document.
func (e *Engine) CreateIndex(ctx context.Context, docID string) (bool, error) {
	return e.indices.Create(ctx, docID)
}

// ListIndexedDocs returns the ids of all indexed documents.
func (e *Engine) ListIndexedDocs() ([]string, error) {
	return e.indices.List()
}

// HasIndex reports whether a document has a stored index.
func (e *Engine) HasIndex(docID string) bool {
	return e.indices.Exists(docID)
}

// DeleteIndex removes a document's index.
func (e *Engine) DeleteIndex(docID string) error {
	return e.indices.Delete(docID)
}
