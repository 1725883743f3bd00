package rag

import (
	"fmt"
	"strings"
)

const answerInstructions = `You are a professional document analysis assistant.
The user has asked a question, and I have retrieved some potentially relevant snippets from the documents.

**Instructions:**
1. Use the provided "Document Context" as your primary source of information.
2. If the context contains the answer, prioritize it and cite the source (e.g., [Doc ID, Page X]).
3. If the context is insufficient or only partially answers the question, you may use your internal knowledge to provide a more complete and helpful answer.
4. You MUST clearly distinguish between what is explicitly stated in the documents and what is your general knowledge or inference.
5. If the retrieved context is completely irrelevant, acknowledge that the documents don't seem to cover this topic, and then provide a helpful answer based on your general knowledge.
6. Maintain a professional, objective, and helpful tone.`

// BuildAnswerPrompt assembles the generation prompt from the retrieved
// context and the user question. Language selects the answer language
// directive ("zh" for Chinese, anything else for English).
func BuildAnswerPrompt(question, context, language string) string {
	langInstr := "Please provide your answer in English."
	if language == "zh" {
		langInstr = "IMPORTANT: Please provide your answer in Chinese (中文)."
	}

	var sb strings.Builder
	sb.WriteString(answerInstructions)
	sb.WriteString("\n")
	sb.WriteString(langInstr)
	sb.WriteString("\n\n**Document Context:**\n")
	sb.WriteString(context)
	sb.WriteString("\n\n**User Question:** ")
	sb.WriteString(question)
	sb.WriteString("\n\n**Answer:**\n")
	return sb.String()
}

// formatContextPart renders one retrieved chunk as a labeled context
// block for the prompt.
func formatContextPart(docID string, page int, chunkType string, score float64, text string) string {
	return fmt.Sprintf("[Doc %.8s..., Page %d, Type %s] (Score: %.3f)\n%s", docID, page, chunkType, score, text)
}
