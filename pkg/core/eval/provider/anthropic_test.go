package provider

import (
	"testing"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"
)

func TestExtractToolUsesFindsToolUseBlocks(t *testing.T) {
	block, _ := jsonvalue.Parse([]byte(`{"type":"tool_use","id":"toolu_1","name":"lookup","input":{"city":"NYC"}}`))
	textBlock, _ := jsonvalue.Parse([]byte(`{"type":"text","text":"thinking"}`))
	calls := extractToolUses([]jsonvalue.Value{textBlock, block})
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].id != "toolu_1" || calls[0].name != "lookup" {
		t.Fatalf("unexpected call: %+v", calls[0])
	}
}

func TestConcatTextBlocksJoinsOnlyTextType(t *testing.T) {
	a, _ := jsonvalue.Parse([]byte(`{"type":"text","text":"hello "}`))
	b, _ := jsonvalue.Parse([]byte(`{"type":"tool_use","id":"x","name":"y","input":{}}`))
	c, _ := jsonvalue.Parse([]byte(`{"type":"text","text":"world"}`))
	got := concatTextBlocks([]jsonvalue.Value{a, b, c})
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestToolResultBlockSerializesObjectResult(t *testing.T) {
	obj := jsonvalue.NewObject()
	obj.Set("ok", jsonvalue.Bool(true))
	block := toolResultBlock("toolu_1", jsonvalue.FromObject(obj))
	content, _ := block.Object().Get("content")
	if content.String() != `{"ok":true}` {
		t.Fatalf("unexpected content: %v", content)
	}
}
