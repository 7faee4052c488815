package schema

import (
	"testing"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"
)

func mustParse(t *testing.T, s string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return v
}

func TestValidatePasses(t *testing.T) {
	schemaDoc := mustParse(t, `{"type":"object","required":["booking_status"],"properties":{"booking_status":{"type":"string"}}}`)
	instance := mustParse(t, `{"booking_status":"confirmed"}`)
	result, err := Validate(schemaDoc, instance)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, got errors: %v", result.Errors)
	}
}

func TestValidateFailsMissingRequired(t *testing.T) {
	schemaDoc := mustParse(t, `{"type":"object","required":["booking_status"]}`)
	instance := mustParse(t, `{}`)
	result, err := Validate(schemaDoc, instance)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Valid {
		t.Fatalf("expected invalid")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
}

func TestValidateAdditionalPropertiesFalse(t *testing.T) {
	schemaDoc := mustParse(t, `{"type":"object","additionalProperties":false,"properties":{"a":{"type":"string"}}}`)
	instance := mustParse(t, `{"a":"x","b":"y"}`)
	result, err := Validate(schemaDoc, instance)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Valid {
		t.Fatalf("expected invalid due to additional property")
	}
}
