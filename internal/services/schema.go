package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Lllllllleong/civilex/internal/models"
)

// ProcessResultSchema returns the JSON Schema that model output must satisfy
// before it is accepted as a ProcessResult. Only tldr is required; the
// sequences may be omitted and are normalised to empty, and null item fields
// decode as empty strings.
func ProcessResultSchema() map[string]any {
	str := map[string]any{"type": "string"}
	optionalStr := map[string]any{"type": []string{"string", "null"}}
	objectOf := func(fields ...string) map[string]any {
		props := make(map[string]any, len(fields))
		for _, f := range fields {
			props[f] = optionalStr
		}
		return map[string]any{"type": "object", "properties": props}
	}
	arrayOf := func(items map[string]any) map[string]any {
		return map[string]any{"type": []string{"array", "null"}, "items": items}
	}

	return map[string]any{
		"type":     "object",
		"required": []string{"tldr"},
		"properties": map[string]any{
			"tldr":      str,
			"sections":  arrayOf(objectOf("title", "original", "plain")),
			"risks":     arrayOf(objectOf("clause_text", "why_it_matters", "severity", "deadline", "recommended_action")),
			"checklist": arrayOf(str),
			"qa":        arrayOf(objectOf("question", "answer", "evidence")),
		},
	}
}

var (
	compiledSchema    *jsonschema.Schema
	compileSchemaErr  error
	compileSchemaOnce sync.Once
)

func processResultSchema() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		b, err := json.Marshal(ProcessResultSchema())
		if err != nil {
			compileSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("process_result.json", bytes.NewReader(b)); err != nil {
			compileSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileSchemaErr = compiler.Compile("process_result.json")
	})
	return compiledSchema, compileSchemaErr
}

// ParseProcessResult decodes model output into a ProcessResult. Any failure is
// reported as ErrParse.
func ParseProcessResult(raw string) (models.ProcessResult, error) {
	payload := stripCodeFence(raw)
	if payload == "" {
		return models.ProcessResult{}, fmt.Errorf("%w: empty response", ErrParse)
	}

	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return models.ProcessResult{}, wrap(ErrParse, err)
	}

	schema, err := processResultSchema()
	if err != nil {
		return models.ProcessResult{}, wrap(ErrParse, err)
	}
	if err := schema.Validate(doc); err != nil {
		return models.ProcessResult{}, wrap(ErrParse, err)
	}

	var result models.ProcessResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return models.ProcessResult{}, wrap(ErrParse, err)
	}
	result.Normalize()
	return result, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block, which models emit
// even when asked for bare JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
