package prompt

import (
	"fmt"
	"strings"

	"doc-qa-be/pkg/llm"
	"doc-qa-be/pkg/store"
)

// AnswerBuilder builds the grounded question-answering prompt: the
// retrieved chunks as reference material, a task definition, and the
// user question.
type AnswerBuilder struct {
	chunks   []store.Chunk
	question string
}

func NewAnswerBuilder(chunks []store.Chunk, question string) *AnswerBuilder {
	return &AnswerBuilder{
		chunks:   chunks,
		question: question,
	}
}

func (b *AnswerBuilder) Build() string {
	var prompt strings.Builder

	b.writeContext(&prompt)
	b.writeTask(&prompt)
	b.writeQuestion(&prompt)

	return prompt.String()
}

func (b *AnswerBuilder) writeContext(prompt *strings.Builder) {
	prompt.WriteString("<context>\n")
	for _, chunk := range b.chunks {
		source := chunk.MetaString(store.MetaFilename)
		if source == "" {
			source = chunk.DocumentID
		}
		prompt.WriteString(fmt.Sprintf("[source: %s, chunk %d]\n", source, chunk.ChunkIndex))
		prompt.WriteString(chunk.Content)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</context>\n\n")
}

func (b *AnswerBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You are an assistant answering questions about the user's uploaded documents.\n")
	prompt.WriteString("Answer using only the reference material inside <context>.\n")
	prompt.WriteString("If the context does not contain the information needed, say \"I don't know\".\n")
	prompt.WriteString("Cite the source document when possible.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *AnswerBuilder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("<question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</question>\n\n")
	prompt.WriteString("Now answer based on the context above:")
}

// CondenseBuilder builds the question-rewriting prompt used before
// retrieval in conversational mode: given prior turns, reformulate the
// latest question into a standalone query.
type CondenseBuilder struct {
	history  []llm.Message
	question string
}

func NewCondenseBuilder(history []llm.Message, question string) *CondenseBuilder {
	return &CondenseBuilder{
		history:  history,
		question: question,
	}
}

func (b *CondenseBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("<conversation>\n")
	for _, msg := range b.history {
		prompt.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
	}
	prompt.WriteString("</conversation>\n\n")

	prompt.WriteString("<task>\n")
	prompt.WriteString("Reformulate the latest user question into a standalone search query, ")
	prompt.WriteString("resolving pronouns and references using the conversation above.\n")
	prompt.WriteString("Do NOT answer the question.\n")
	prompt.WriteString("If the question already stands alone, return it unchanged.\n")
	prompt.WriteString("Reply with the query only, no explanation.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</question>")

	return prompt.String()
}
