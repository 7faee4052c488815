package jsonvalue

import "testing"

func TestEqualIgnoresObjectKeyOrder(t *testing.T) {
	a, _ := Parse([]byte(`{"a":1,"b":2}`))
	b, _ := Parse([]byte(`{"b":2,"a":1}`))
	if !Equal(a, b) {
		t.Fatalf("expected objects with different key order to be equal")
	}
}

func TestEqualRespectsArrayOrder(t *testing.T) {
	a, _ := Parse([]byte(`[1,2]`))
	b, _ := Parse([]byte(`[2,1]`))
	if Equal(a, b) {
		t.Fatalf("expected arrays with different order to be unequal")
	}
}

func TestEqualComparesNumbersByValue(t *testing.T) {
	a, _ := Parse([]byte(`1.0`))
	b, _ := Parse([]byte(`1`))
	if !Equal(a, b) {
		t.Fatalf("expected 1.0 to equal 1")
	}
}
