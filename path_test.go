package store

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"///", ""},
		{"user", "user"},
		{"/user/", "user"},
		{"user//name", "user/name"},
		{"//user///name//", "user/name"},
		{"a/b/c", "a/b/c"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplit(t *testing.T) {
	if got := Split(""); got != nil {
		t.Fatalf("Split(\"\") = %v, want nil", got)
	}
	if got := Split("//"); got != nil {
		t.Fatalf("Split(\"//\") = %v, want nil", got)
	}
	want := []string{"a", "b", "c"}
	if got := Split("/a//b/c/"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Split = %v, want %v", got, want)
	}
}

func TestJoin(t *testing.T) {
	if got := Join("user", "name"); got != "user/name" {
		t.Fatalf("Join = %q", got)
	}
	if got := Join("", "user/", "/name"); got != "user/name" {
		t.Fatalf("Join = %q", got)
	}
}

func TestHasPrefixSegmentWise(t *testing.T) {
	cases := []struct {
		path   string
		prefix string
		want   bool
	}{
		{"user/name", "", true},
		{"user/name", "user", true},
		{"user", "user", true},
		{"user/name/first", "user/name", true},
		// segment-wise, not raw string prefix
		{"user2/name", "user", false},
		{"username", "user", false},
		{"user", "user/name", false},
		{"other/name", "user", false},
		// normalization applies to both sides
		{"/user//name/", "user/", true},
	}
	for _, tc := range cases {
		if got := HasPrefix(tc.path, tc.prefix); got != tc.want {
			t.Fatalf("HasPrefix(%q, %q) = %v, want %v", tc.path, tc.prefix, got, tc.want)
		}
	}
}
