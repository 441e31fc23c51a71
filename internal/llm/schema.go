package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a JSON Schema for structured output. Providers send Definition
// to the model; Check validates what comes back. A Schema must not be
// copied after first use.
type Schema struct {
	// Name identifies the schema to the provider, e.g. "interview-judgement".
	Name        string
	Description string
	Definition  map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// Check validates raw against the schema. Failures are KindInvalid errors.
func (s *Schema) Check(raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &Error{Kind: KindInvalid, Err: fmt.Errorf("not JSON: %w", err)}
	}
	compiled, err := s.compile()
	if err != nil {
		return &Error{Kind: KindInvalid, Err: err}
	}
	if err := compiled.Validate(doc); err != nil {
		return &Error{Kind: KindInvalid, Err: fmt.Errorf("%s: %w", s.Name, err)}
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		// The compiler wants plain decoded JSON, not Go maps of typed slices.
		b, err := json.Marshal(s.Definition)
		if err != nil {
			s.err = fmt.Errorf("marshal schema %s: %w", s.Name, err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
		if err != nil {
			s.err = fmt.Errorf("decode schema %s: %w", s.Name, err)
			return
		}
		url := "mem://" + s.Name + ".json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, doc); err != nil {
			s.err = fmt.Errorf("add schema %s: %w", s.Name, err)
			return
		}
		s.compiled, s.err = c.Compile(url)
	})
	return s.compiled, s.err
}
