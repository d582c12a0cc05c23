package errors

import (
	"strings"
	"testing"
)

func TestValidateLocator(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid url", "https://example.com/recipes/pale-ale.xml", false},
		{"valid path", "/srv/recipes/pale-ale.xml", false},
		{"valid relative", "recipes/ipa.xml", false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", "https://example.com/" + strings.Repeat("a", 2100), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLocator(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLocator(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSource) {
				t.Errorf("ValidateLocator(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidSource)
			}
		})
	}
}

func TestValidateScope(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty is global", "", false},
		{"post id", "post-42", false},
		{"tenant", "user_abc123", false},

		{"too long", strings.Repeat("s", 200), true},
		{"space", "post 42", true},
		{"colon", "post:42", true},
		{"control", "post\t42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScope(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScope(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
