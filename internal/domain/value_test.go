package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseJSON_Kinds(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{`null`, Null},
		{`true`, Bool},
		{`3.5`, Number},
		{`"hi"`, String},
		{`[1,2]`, Array},
		{`{"a":1}`, Object},
	}
	for _, tt := range tests {
		v, err := ParseJSON([]byte(tt.in))
		if err != nil {
			t.Fatalf("ParseJSON(%s): %v", tt.in, err)
		}
		if v.Kind() != tt.kind {
			t.Errorf("ParseJSON(%s).Kind() = %v, want %v", tt.in, v.Kind(), tt.kind)
		}
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	if _, err := ParseJSON([]byte(`{"a":`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if _, err := ParseJSON([]byte(`ping`)); err == nil {
		t.Error("expected error for bare word")
	}
}

func TestValue_ZeroIsUndefined(t *testing.T) {
	var v Value
	if !v.IsUndefined() {
		t.Error("zero Value should be Undefined")
	}
	if v.Kind() != Undefined {
		t.Errorf("Kind() = %v, want Undefined", v.Kind())
	}
	// Undefined is distinct from null.
	if v.Equal(NewNull()) {
		t.Error("Undefined must not equal Null")
	}
}

func TestValue_Accessors(t *testing.T) {
	v := mustParse(t, `{"b":true,"n":7,"s":"x","arr":[10,20],"nested":{"k":"v"}}`)

	if got := v.Field("b").BoolOr(false); got != true {
		t.Errorf("b = %v", got)
	}
	if got := v.Field("n").IntOr(0); got != 7 {
		t.Errorf("n = %d", got)
	}
	if got := v.Field("n").FloatOr(0); got != 7 {
		t.Errorf("n float = %v", got)
	}
	if got := v.Field("s").StringOr(""); got != "x" {
		t.Errorf("s = %q", got)
	}
	if got := v.Field("arr").Len(); got != 2 {
		t.Errorf("arr len = %d", got)
	}
	if got := v.Field("arr").Index(1).IntOr(0); got != 20 {
		t.Errorf("arr[1] = %d", got)
	}
	if got := v.Lookup("nested", "k").StringOr(""); got != "v" {
		t.Errorf("nested.k = %q", got)
	}
}

func TestValue_AccessorDefaults(t *testing.T) {
	v := mustParse(t, `{"n":1}`)

	if got := v.Field("missing").BoolOr(true); got != true {
		t.Error("missing field should yield default")
	}
	if got := v.Field("n").StringOr("def"); got != "def" {
		t.Error("wrong-typed access should yield default")
	}
	if !v.Field("arr").Index(0).IsUndefined() {
		t.Error("index into non-array should be Undefined")
	}
	if !v.Lookup("a", "b", "c").IsUndefined() {
		t.Error("lookup through missing fields should be Undefined")
	}
}

func TestValue_KeysSorted(t *testing.T) {
	v := mustParse(t, `{"z":1,"a":2,"m":3}`)
	want := []string{"a", "m", "z"}
	if got := v.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestValue_Equal(t *testing.T) {
	a := mustParse(t, `{"x":[1,{"y":true}],"z":null}`)
	b := mustParse(t, `{"z":null,"x":[1,{"y":true}]}`)
	if !a.Equal(b) {
		t.Error("structurally equal documents should be Equal")
	}

	c := mustParse(t, `{"x":[1,{"y":false}],"z":null}`)
	if a.Equal(c) {
		t.Error("differing documents should not be Equal")
	}
}

func TestValue_MarshalRoundTrip(t *testing.T) {
	v := mustParse(t, `{"info":{"id":"m1"},"units":[{"ppd":100}]}`)
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Value
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !v.Equal(back) {
		t.Errorf("round trip mismatch: %s", data)
	}
}
