package enrich

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// profileSchema describes the minimum shape an enrichment response must have
// to be usable. Anything else degrades to the minimal profile.
const profileSchema = `{
	"type": "object",
	"required": ["headline", "current_company"],
	"properties": {
		"headline": {"type": "string"},
		"current_company": {"type": "string"},
		"skills": {"type": "array", "items": {"type": "string"}},
		"open_to_work": {"type": "boolean"},
		"last_activity": {"type": ["string", "null"]},
		"recent_signals": {"type": "array", "items": {"type": "string"}}
	}
}`

// batchSchema requires a top-level array of component-score objects. A
// response failing this check triggers the sequential per-item fallback.
const batchSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"open_to_work": {"type": "number"},
			"skill_match": {"type": "number"},
			"job_stability": {"type": "number"},
			"platform_engagement": {"type": "number"}
		}
	}
}`

var (
	profileSchemaLoader = gojsonschema.NewStringLoader(profileSchema)
	batchSchemaLoader   = gojsonschema.NewStringLoader(batchSchema)
)

func validateProfileShape(body []byte) error {
	return validateShape(profileSchemaLoader, body)
}

func validateBatchShape(body []byte) error {
	return validateShape(batchSchemaLoader, body)
}

func validateShape(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	if !result.Valid() {
		if errs := result.Errors(); len(errs) > 0 {
			return fmt.Errorf("response shape invalid: %s", errs[0])
		}
		return fmt.Errorf("response shape invalid")
	}
	return nil
}
