package codec

import (
	"bytes"
	"testing"
)

func TestJSONRoundTrip(t *testing.T) {
	c := JSON{}
	data, err := c.Encode(map[string]int{"x": 1})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(data) != `{"x":1}` {
		t.Errorf("unexpected encoding: %s", data)
	}

	var out map[string]int
	if err := c.Decode(data, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out["x"] != 1 {
		t.Errorf("expected x=1, got %d", out["x"])
	}
}

func TestJSONEncodeError(t *testing.T) {
	c := JSON{}
	if _, err := c.Encode(make(chan int)); err == nil {
		t.Error("expected error encoding a channel")
	}
}

func TestRawEncode(t *testing.T) {
	c := Raw{}

	data, err := c.Encode("42")
	if err != nil {
		t.Fatalf("Encode string failed: %v", err)
	}
	if !bytes.Equal(data, []byte("42")) {
		t.Errorf("unexpected bytes: %q", data)
	}

	data, err = c.Encode([]byte{1, 2})
	if err != nil {
		t.Fatalf("Encode bytes failed: %v", err)
	}
	if !bytes.Equal(data, []byte{1, 2}) {
		t.Errorf("unexpected bytes: %v", data)
	}

	data, err = c.Encode(nil)
	if err != nil {
		t.Fatalf("Encode nil failed: %v", err)
	}
	if data != nil {
		t.Errorf("nil input should encode to nil, got %v", data)
	}

	if _, err := c.Encode(42); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestRawDecode(t *testing.T) {
	c := Raw{}

	var s string
	if err := c.Decode([]byte("hello"), &s); err != nil {
		t.Fatalf("Decode into string failed: %v", err)
	}
	if s != "hello" {
		t.Errorf("expected hello, got %q", s)
	}

	var i int
	if err := c.Decode([]byte("1"), &i); err == nil {
		t.Error("expected error for unsupported target")
	}
}

func TestResolve(t *testing.T) {
	for _, name := range []string{"json", "raw"} {
		if _, err := Resolve(name); err != nil {
			t.Errorf("Resolve(%q) failed: %v", name, err)
		}
	}

	if _, err := Resolve("msgpack"); err == nil {
		t.Error("expected error for unknown codec")
	}
}

func TestRegister(t *testing.T) {
	Register("upper", Raw{})
	if _, err := Resolve("upper"); err != nil {
		t.Fatalf("registered codec not resolvable: %v", err)
	}
}
