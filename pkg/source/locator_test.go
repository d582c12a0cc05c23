package source

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/beerxml/pkg/errors"
)

func TestNormalize(t *testing.T) {
	abs, err := filepath.Abs("recipes/ipa.xml")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		input  string
		scheme Scheme
		value  string
	}{
		{"https", "https://example.com/recipes/pale-ale.xml", SchemeHTTPS, "https://example.com/recipes/pale-ale.xml"},
		{"http keeps query", "http://example.com/r.xml?id=7", SchemeHTTP, "http://example.com/r.xml?id=7"},
		{"lowercases scheme and host", "HTTPS://Example.COM/Pale.xml", SchemeHTTPS, "https://example.com/Pale.xml"},
		{"drops fragment", "https://example.com/r.xml#hops", SchemeHTTPS, "https://example.com/r.xml"},
		{"trims space", "  https://example.com/r.xml  ", SchemeHTTPS, "https://example.com/r.xml"},
		{"s3", "s3://brew-bucket/recipes/stout.xml", SchemeS3, "s3://brew-bucket/recipes/stout.xml"},
		{"absolute path", "/srv/recipes/ipa.xml", SchemeFile, "/srv/recipes/ipa.xml"},
		{"relative path", "recipes/ipa.xml", SchemeFile, abs},
		{"file url", "file:///srv/recipes/ipa.xml", SchemeFile, "/srv/recipes/ipa.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.input, err)
			}
			if loc.Scheme != tt.scheme {
				t.Errorf("Scheme = %q, want %q", loc.Scheme, tt.scheme)
			}
			if loc.String() != tt.value {
				t.Errorf("String() = %q, want %q", loc.String(), tt.value)
			}
		})
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"javascript", "javascript:alert(1)"},
		{"data", "data:text/xml,<RECIPES/>"},
		{"ftp", "ftp://example.com/r.xml"},
		{"no host", "https:///r.xml"},
		{"s3 no key", "s3://bucket"},
		{"remote file host", "file://other-host/r.xml"},
		{"control chars", "https://example.com/\x00.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input)
			if err == nil {
				t.Fatalf("Normalize(%q) succeeded, want error", tt.input)
			}
			if !errors.Is(err, errors.ErrCodeInvalidSource) {
				t.Errorf("Normalize(%q) code = %v, want %v", tt.input, errors.GetCode(err), errors.ErrCodeInvalidSource)
			}
		})
	}
}

func TestLocatorName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://example.com/recipes/pale-ale.xml", "pale-ale"},
		{"https://example.com/recipes/pale-ale.xml?v=2", "pale-ale"},
		{"https://example.com/", ""},
		{"s3://bucket/recipes/stout.beerxml", "stout"},
		{"/srv/recipes/ipa.xml", "ipa"},
		{"/srv/recipes/noext", "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			loc, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.input, err)
			}
			if got := loc.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocatorIsRemote(t *testing.T) {
	file, _ := Normalize("/tmp/r.xml")
	web, _ := Normalize("https://example.com/r.xml")
	if file.IsRemote() {
		t.Error("file locator should not be remote")
	}
	if !web.IsRemote() {
		t.Error("https locator should be remote")
	}
}
