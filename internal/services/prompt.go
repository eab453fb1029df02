package services

import (
	"fmt"
	"os"
	"strings"
)

// MaxDocumentChars is the number of characters of document text embedded in a prompt.
const MaxDocumentChars = 100_000

// DefaultQuestion is asked when summarising a document.
const DefaultQuestion = "What are the main obligations and risks?"

// PromptTemplate renders the prompt file at path. The file is read on every
// call so edits take effect without a restart.
type PromptTemplate struct {
	path string
}

func NewPromptTemplate(path string) *PromptTemplate {
	return &PromptTemplate{path: path}
}

// Render substitutes {doc_text} and {question}. Doubled braces render as a
// single literal brace, so templates may contain JSON examples.
func (p *PromptTemplate) Render(docText, question string) (string, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt template %s: %w", p.path, err)
	}
	return renderTemplate(string(raw), map[string]string{
		"doc_text": TruncateText(docText, MaxDocumentChars),
		"question": question,
	})
}

func renderTemplate(tmpl string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated placeholder at offset %d", i)
			}
			name := tmpl[i+1 : i+1+end]
			value, ok := values[name]
			if !ok {
				return "", fmt.Errorf("unknown placeholder {%s}", name)
			}
			b.WriteString(value)
			i += end + 1
		case c == '}':
			return "", fmt.Errorf("single '}' at offset %d", i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// TruncateText returns at most limit characters (not bytes) of s.
func TruncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
