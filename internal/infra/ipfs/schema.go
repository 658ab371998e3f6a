package ipfs

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const batchSchemaURL = "schema://batch.json"

// batchSchema describes a published batch file. Only the questions are required; the
// remaining batch fields get defaults when absent.
const batchSchema = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "batchId": {"type": "integer"},
    "createdAt": {"type": "string"},
    "difficulty": {"enum": ["easy", "medium", "hard"]},
    "languagePair": {"type": "string"},
    "questions": {
      "type": "array",
      "minItems": 5,
      "maxItems": 5,
      "items": {
        "type": "object",
        "required": ["sourceText", "correctTranslation"],
        "properties": {
          "id": {"type": "integer"},
          "sourceText": {"type": "string"},
          "correctTranslation": {"type": "string"},
          "targetLanguage": {"type": "string"},
          "difficulty": {"enum": ["easy", "medium", "hard"]}
        }
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(batchSchema), &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(batchSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(batchSchemaURL)
	})
	return compiled, compileErr
}

// ValidateBatch checks raw JSON against the batch file schema.
func ValidateBatch(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile batch schema: %w", err)
	}
	if err := s.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
