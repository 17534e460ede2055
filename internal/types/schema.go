package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resumeSchemaJSON 提取结果的输出格式：六个键必须全部出现，标量可为 null，集合不可为 null
const resumeSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "email", "phone", "skills", "experience", "certifications"],
  "additionalProperties": false,
  "properties": {
    "name":           {"type": ["string", "null"]},
    "email":          {"type": ["string", "null"]},
    "phone":          {"type": ["string", "null"]},
    "experience":     {"type": ["string", "null"], "pattern": "^[0-9]+ years$"},
    "skills":         {"type": "array", "items": {"type": "string"}, "uniqueItems": true},
    "certifications": {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	resumeSchema     *jsonschema.Schema
	resumeSchemaErr  error
	resumeSchemaOnce sync.Once
)

func compiledResumeSchema() (*jsonschema.Schema, error) {
	resumeSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("resume.json", bytes.NewReader([]byte(resumeSchemaJSON))); err != nil {
			resumeSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		resumeSchema, resumeSchemaErr = compiler.Compile("resume.json")
	})
	return resumeSchema, resumeSchemaErr
}

// ValidateRecordJSON 校验序列化后的提取结果是否符合输出格式
func ValidateRecordJSON(data []byte) error {
	schema, err := compiledResumeSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// Validate 序列化并校验提取结果
func (r *ExtractedResume) Validate() error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return ValidateRecordJSON(data)
}
