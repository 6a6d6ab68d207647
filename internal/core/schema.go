package core

import (
	"fmt"
	"math"

	"github.com/google/generative-ai-go/genai"
)

// searchResponseSchema is declared to the provider and used again to check
// what comes back.
var searchResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"explanation": {Type: genai.TypeString},
		"articles": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":   {Type: genai.TypeString},
					"summary": {Type: genai.TypeString},
				},
				Required: []string{"title", "summary"},
			},
		},
		"jurisprudence": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":    {Type: genai.TypeString},
					"summary": {Type: genai.TypeString},
				},
				Required: []string{"name", "summary"},
			},
		},
		"sources": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"explanation", "articles", "jurisprudence", "sources"},
}

// conformsTo checks a value decoded from JSON into `any` against schema.
// Properties the schema does not declare are ignored.
func conformsTo(schema *genai.Schema, v any, path string) error {
	if schema == nil {
		return nil
	}
	if v == nil {
		if schema.Nullable {
			return nil
		}
		return fmt.Errorf("%s: unexpected null", path)
	}

	switch schema.Type {
	case genai.TypeString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: expected string, got %T", path, v)
		}
		if len(schema.Enum) > 0 && !contains(schema.Enum, s) {
			return fmt.Errorf("%s: %q is not an allowed value", path, s)
		}
	case genai.TypeNumber:
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("%s: expected number, got %T", path, v)
		}
	case genai.TypeInteger:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("%s: expected integer, got %v", path, v)
		}
	case genai.TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%s: expected boolean, got %T", path, v)
		}
	case genai.TypeArray:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %T", path, v)
		}
		for i, item := range items {
			if err := conformsTo(schema.Items, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case genai.TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object, got %T", path, v)
		}
		for _, key := range schema.Required {
			if _, present := obj[key]; !present {
				return fmt.Errorf("%s.%s: missing required property", path, key)
			}
		}
		for key, prop := range schema.Properties {
			value, present := obj[key]
			if !present {
				continue
			}
			if err := conformsTo(prop, value, path+"."+key); err != nil {
				return err
			}
		}
	}
	return nil
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
