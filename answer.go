package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/petroserv/rag-server/lang"
	"github.com/petroserv/rag-server/retrieval"
)

// Generator produces an answer for a query given the retrieved context.
// Text generation is an external collaborator; swapping in an LLM-backed
// implementation does not touch the retrieval core.
type Generator interface {
	Generate(ctx context.Context, query, language string, results []retrieval.Result) (string, error)
}

// TemplateGenerator renders deterministic multilingual answers that quote
// the retrieved context, or a fallback when nothing relevant was found.
type TemplateGenerator struct{}

const contextPreviewChars = 200

var contextTemplates = map[string]string{
	lang.English: "Based on the available documents, I can help with your question: %q\n\nRelevant information:\n%s",
	lang.Arabic:  "بناءً على الوثائق المتاحة، يمكنني مساعدتك في سؤالك: %q\n\nمعلومات ذات صلة:\n%s",
	lang.French:  "Basé sur les documents disponibles, je peux vous aider avec votre question: %q\n\nInformations pertinentes:\n%s",
}

var fallbackTemplates = map[string]string{
	lang.English: "I understand your question: %q. I don't have specific information in my current knowledge base. Could you provide more details or upload relevant documents?",
	lang.Arabic:  "أفهم سؤالك: %q. لا أملك معلومات محددة في قاعدة المعرفة الحالية. هل يمكنك تقديم تفاصيل أكثر أو رفع وثائق ذات صلة؟",
	lang.French:  "Je comprends votre question: %q. Je n'ai pas d'informations spécifiques dans ma base de connaissances actuelle. Pourriez-vous fournir plus de détails ou télécharger des documents pertinents?",
}

func (g *TemplateGenerator) Generate(_ context.Context, query, language string, results []retrieval.Result) (string, error) {
	if len(results) == 0 {
		return fmt.Sprintf(pickTemplate(fallbackTemplates, language), query), nil
	}

	previews := make([]string, 0, min(len(results), 2))
	for _, r := range results[:min(len(results), 2)] {
		previews = append(previews, fmt.Sprintf("From %s: %s", r.Chunk.SourceFile, preview(r.Chunk.Content)))
	}

	return fmt.Sprintf(pickTemplate(contextTemplates, language), query, strings.Join(previews, "\n\n")), nil
}

func pickTemplate(templates map[string]string, language string) string {
	if t, ok := templates[language]; ok {
		return t
	}

	return templates[lang.English]
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= contextPreviewChars {
		return content
	}

	return string(runes[:contextPreviewChars]) + "..."
}
