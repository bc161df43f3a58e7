package emoji

import (
	"reflect"
	"testing"
)

func TestContains(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"Hi 😊", true},
		{"👍🏽", true},
		{"plain text", false},
		{"", false},
		{"punctuation !?;:", false},
	}
	for _, tt := range tests {
		if got := Contains(tt.s); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"😊😊🎉", 3},
		{"no emoji", 0},
		// skin-tone modifier forms one grapheme cluster
		{"👍🏽 ok", 1},
		{"", 0},
	}
	for _, tt := range tests {
		if got := Count(tt.s); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}

func TestEachOrder(t *testing.T) {
	var seen []string
	Each("a😊b🎉c😊", func(e string) {
		seen = append(seen, e)
	})
	want := []string{"😊", "🎉", "😊"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("Each order = %q, want %q", seen, want)
	}
}
