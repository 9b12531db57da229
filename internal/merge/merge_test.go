package merge

import (
	"reflect"
	"testing"
)

type settings struct {
	Theme    string
	FontSize int
	Tags     []string
}

func TestShallowStruct(t *testing.T) {
	base := settings{Theme: "light", FontSize: 14, Tags: []string{"a"}}
	got := Shallow(base, settings{Theme: "dark"})

	if got.Theme != "dark" || got.FontSize != 14 {
		t.Fatalf("got %+v", got)
	}
	if !reflect.DeepEqual(got.Tags, []string{"a"}) {
		t.Fatalf("tags = %v", got.Tags)
	}
}

func TestShallowStructZeroFieldsDoNotOverwrite(t *testing.T) {
	base := settings{Theme: "light", FontSize: 14}
	got := Shallow(base, settings{})
	if !reflect.DeepEqual(got, base) {
		t.Fatalf("got %+v", got)
	}
}

func TestShallowDoesNotMutateInputs(t *testing.T) {
	base := settings{Theme: "light"}
	partial := settings{FontSize: 12}
	Shallow(base, partial)

	if base.FontSize != 0 || partial.Theme != "" {
		t.Fatalf("inputs mutated: %+v %+v", base, partial)
	}
}

func TestShallowMap(t *testing.T) {
	base := map[string]any{"a": 1, "b": 2}
	got := Shallow(base, map[string]any{"b": 20, "c": 3})

	want := map[string]any{"a": 1, "b": 20, "c": 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
	if base["b"] != 2 {
		t.Fatalf("base mutated: %v", base)
	}
}

func TestShallowNilPartialMap(t *testing.T) {
	base := map[string]any{"a": 1}
	got := Shallow(base, nil)
	if !reflect.DeepEqual(got, base) {
		t.Fatalf("got %v", got)
	}
}

func TestCloneDetaches(t *testing.T) {
	original := map[string]any{
		"nested": map[string]any{"k": "v"},
		"list":   []any{1, 2},
	}
	cloned := Clone(original)

	cloned["nested"].(map[string]any)["k"] = "changed"
	cloned["list"].([]any)[0] = 99

	if original["nested"].(map[string]any)["k"] != "v" {
		t.Fatalf("nested map aliased")
	}
	if original["list"].([]any)[0] != 1 {
		t.Fatalf("slice aliased")
	}
}

func TestCloneAnyNil(t *testing.T) {
	if got := CloneAny(nil); got != nil {
		t.Fatalf("got %v", got)
	}
}

func TestClonePointer(t *testing.T) {
	value := 42
	original := &value
	cloned := Clone(original)

	*cloned = 7
	if *original != 42 {
		t.Fatalf("pointer target aliased")
	}
}
