package provider

import (
	"context"
	"testing"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/model"
)

type fakeProvider struct {
	id model.ProviderID
}

func (f *fakeProvider) InvokeWithTools(ctx context.Context, req Request) (Response, error) {
	return Response{}, nil
}

func TestRegistryLookupUnknownIsError(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Lookup(model.ProviderOpenAI); err == nil {
		t.Fatalf("expected error for unregistered provider")
	}
}

func TestRegistryRegisterBuiltinsIsIdempotent(t *testing.T) {
	r := NewRegistry()
	first := &fakeProvider{id: model.ProviderOpenAI}
	second := &fakeProvider{id: model.ProviderAnthropic}

	r.RegisterBuiltins(first, first, first)
	r.RegisterBuiltins(second, second, second)

	got, err := r.Lookup(model.ProviderOpenAI)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != Provider(first) {
		t.Fatalf("expected first registration to win")
	}
}

func TestRegistryRegisterProviderOverridesForTests(t *testing.T) {
	r := NewRegistry()
	fake := &fakeProvider{id: model.ProviderGemini}
	r.RegisterProvider(model.ProviderGemini, fake)

	got, err := r.Lookup(model.ProviderGemini)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != Provider(fake) {
		t.Fatalf("expected registered fake provider")
	}
}
