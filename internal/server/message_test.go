package server

import (
	"encoding/json"
	"testing"
)

func TestParseMessage(t *testing.T) {
	msg, err := parseMessage([]byte(`{"action":"set","data":{"name":"region","value":"eu-west"}}`))
	if err != nil {
		t.Fatalf("parseMessage() error: %v", err)
	}
	if msg.Action != "set" {
		t.Errorf("Action = %q, want set", msg.Action)
	}
	if got := msg.getString("name"); got != "region" {
		t.Errorf("getString(name) = %q, want region", got)
	}
	if !msg.has("value") {
		t.Error("has(value) = false, want true")
	}
}

func TestParseMessageDefaults(t *testing.T) {
	msg, err := parseMessage([]byte(`{"action":"set"}`))
	if err != nil {
		t.Fatalf("parseMessage() error: %v", err)
	}
	if msg.Data == nil {
		t.Fatal("missing data should become an empty map")
	}
	if msg.has("name") {
		t.Error("has(name) = true on empty data")
	}
	if got := msg.getString("name"); got != "" {
		t.Errorf("getString(name) = %q, want empty", got)
	}
}

func TestParseMessageErrors(t *testing.T) {
	for _, input := range []string{"", "{", "[1,2]", `"set"`} {
		if _, err := parseMessage([]byte(input)); err == nil {
			t.Errorf("parseMessage(%q) should fail", input)
		}
	}
}

func TestGetStringNonString(t *testing.T) {
	msg, err := parseMessage([]byte(`{"action":"set","data":{"value":42}}`))
	if err != nil {
		t.Fatalf("parseMessage() error: %v", err)
	}
	if got := msg.getString("value"); got != "" {
		t.Errorf("getString on a number = %q, want empty", got)
	}
	if !msg.has("value") {
		t.Error("has(value) = false, want true")
	}
}

func TestUpdateMarshalOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(update{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("empty update marshaled to %s, want {}", data)
	}

	data, err = json.Marshal(update{HTML: "<p>x</p>"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"html":"<p>x</p>"}` {
		t.Errorf("update marshaled to %s", data)
	}
}
