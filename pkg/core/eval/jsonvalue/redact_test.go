package jsonvalue

import "testing"

func TestRedactEmailAndCardNumber(t *testing.T) {
	v, _ := Parse([]byte(`{"email":"person@example.com","card":"4111111111111111","note":"hello"}`))
	red := Redact(v)
	obj := red.Object()
	email, _ := obj.Get("email")
	card, _ := obj.Get("card")
	note, _ := obj.Get("note")
	if email.String() != "[REDACTED_EMAIL]" {
		t.Fatalf("email not redacted: %v", email)
	}
	if card.String() != "[REDACTED_NUMBER]" {
		t.Fatalf("card not redacted: %v", card)
	}
	if note.String() != "hello" {
		t.Fatalf("unrelated string mutated: %v", note)
	}
}

func TestRedactPhoneLikeNumber(t *testing.T) {
	v, _ := Parse([]byte(`{"phone":"call +1-555-123-4567 now"}`))
	red := Redact(v)
	phone, _ := red.Object().Get("phone")
	if phone.String() != "call [REDACTED_PHONE] now" {
		t.Fatalf("phone not redacted in place: %v", phone)
	}
}

func TestRedactIsIdempotent(t *testing.T) {
	v, _ := Parse([]byte(`{"email":"person@example.com"}`))
	once := Redact(v)
	twice := Redact(once)
	if !Equal(once, twice) {
		t.Fatalf("redaction not idempotent")
	}
}

func TestRedactRecursesThroughArrays(t *testing.T) {
	v, _ := Parse([]byte(`{"list":["person@example.com","plain"]}`))
	red := Redact(v)
	list := red.Object()
	arrVal, _ := list.Get("list")
	arr := arrVal.Array()
	if arr[0].String() != "[REDACTED_EMAIL]" {
		t.Fatalf("array element not redacted: %v", arr[0])
	}
	if arr[1].String() != "plain" {
		t.Fatalf("unrelated array element mutated: %v", arr[1])
	}
}
