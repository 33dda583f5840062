package generation

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// lessonSchemaDef is the JSON schema an LLM lesson response must satisfy.
var lessonSchemaDef = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title": map[string]any{
			"type":        "string",
			"description": "Short lesson title",
		},
		"objectives": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "string",
			},
			"description": "Learning objectives, at least one",
		},
		"plan": map[string]any{
			"type":     "array",
			"minItems": 2,
			"items": map[string]any{
				"type": "string",
			},
			"description": "Ordered lesson steps, at least two",
		},
		"content": map[string]any{
			"type":        "string",
			"description": "Full lesson body as plain prose",
		},
	},
	"required": []any{"title", "objectives", "plan", "content"},
}

var (
	compileOnce   sync.Once
	lessonSchema  *jsonschema.Schema
	lessonCompile error
)

// compiledLessonSchema returns the compiled lesson schema, compiling it on
// first use.
func compiledLessonSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler expects a freshly parsed JSON value. Round-trip the
		// definition so numeric literals have the decoded representation.
		defBytes, err := json.Marshal(lessonSchemaDef)
		if err != nil {
			lessonCompile = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			lessonCompile = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://lesson.json", defParsed); err != nil {
			lessonCompile = fmt.Errorf("add resource: %w", err)
			return
		}
		lessonSchema, lessonCompile = c.Compile("schema://lesson.json")
	})
	return lessonSchema, lessonCompile
}
