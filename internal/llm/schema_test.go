package llm

import (
	"encoding/json"
	"testing"
)

func answerSchema() *Schema {
	return &Schema{
		Name: "answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"correct": map[string]any{"type": "boolean"},
				"reason":  map[string]any{"type": "string"},
			},
			"required":             []any{"correct", "reason"},
			"additionalProperties": false,
		},
	}
}

func TestSchemaCheck(t *testing.T) {
	s := answerSchema()
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"valid", `{"correct":true,"reason":"ok"}`, true},
		{"missing field", `{"correct":true}`, false},
		{"wrong type", `{"correct":"yes","reason":"ok"}`, false},
		{"extra field", `{"correct":true,"reason":"ok","score":3}`, false},
		{"not json", `Sure! {"correct":true}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Check(json.RawMessage(tt.raw))
			if tt.ok && err != nil {
				t.Fatalf("Check: %v", err)
			}
			if !tt.ok && !IsKind(err, KindInvalid) {
				t.Fatalf("Check = %v, want invalid", err)
			}
		})
	}
}

func TestSchemaCheck_BadDefinition(t *testing.T) {
	s := &Schema{Name: "broken", Definition: map[string]any{"type": 12}}
	if err := s.Check(json.RawMessage(`{}`)); !IsKind(err, KindInvalid) {
		t.Fatalf("Check = %v, want invalid", err)
	}
}

func TestFinish(t *testing.T) {
	p := Prompt{User: "q", Schema: answerSchema()}

	c, err := finish(p, &Completion{JSON: json.RawMessage(`{"correct":false,"reason":"no"}`)})
	if err != nil || c == nil {
		t.Fatalf("finish valid: %v", err)
	}

	_, err = finish(p, &Completion{JSON: json.RawMessage(`{"correct":fal`), Truncated: true})
	if !IsKind(err, KindTruncated) {
		t.Errorf("truncated answer: got %v", err)
	}

	_, err = finish(p, &Completion{JSON: json.RawMessage(`{"correct":false}`)})
	if !IsKind(err, KindInvalid) {
		t.Errorf("incomplete answer: got %v", err)
	}

	plain := Prompt{User: "q"}
	if _, err := finish(plain, &Completion{JSON: json.RawMessage("free text")}); err != nil {
		t.Errorf("no schema: %v", err)
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{429, KindRateLimited},
		{400, KindRejected},
		{401, KindRejected},
		{403, KindRejected},
		{404, KindRejected},
		{500, KindUnavailable},
		{503, KindUnavailable},
		{0, KindUnavailable},
	}
	for _, tt := range tests {
		if got := fromStatus(tt.status, nil).Kind; got != tt.want {
			t.Errorf("fromStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}
