package jsonvalue

import "testing"

func TestRoundTripPreservesKeyOrder(t *testing.T) {
	input := []byte(`{"zeta":1,"alpha":2,"mid":{"b":1,"a":2}}`)
	v, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"zeta":1,"alpha":2,"mid":{"b":1,"a":2}}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestDuplicateKeyRejected(t *testing.T) {
	_, err := Parse([]byte(`{"a":1,"a":2}`))
	if err == nil {
		t.Fatalf("expected error for duplicate key")
	}
}

func TestObjectSetPreservesPositionOnReplace(t *testing.T) {
	o := NewObject()
	o.Set("a", Number("1"))
	o.Set("b", Number("2"))
	o.Set("a", Number("3"))
	if got := o.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("key order broken: %v", got)
	}
	v, _ := o.Get("a")
	if v.Number().String() != "3" {
		t.Fatalf("replace did not take effect: %v", v)
	}
}

func TestArrayAndScalarRoundTrip(t *testing.T) {
	v, err := Parse([]byte(`[null,true,false,1.5,"x"]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	arr := v.Array()
	if len(arr) != 5 {
		t.Fatalf("expected 5 elements, got %d", len(arr))
	}
	if !arr[0].IsNull() || !arr[1].Bool() || arr[2].Bool() {
		t.Fatalf("scalar decode mismatch: %+v", arr[:3])
	}
	if f, ok := arr[3].Float64(); !ok || f != 1.5 {
		t.Fatalf("number decode mismatch: %v", arr[3])
	}
	if arr[4].String() != "x" {
		t.Fatalf("string decode mismatch: %v", arr[4])
	}
}
