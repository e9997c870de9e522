package engine

import (
	"reflect"
	"testing"
)

func TestExtractRefs(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []string
	}{
		{
			name:     "single ref",
			template: "Classify {Company Name}",
			want:     []string{"Company Name"},
		},
		{
			name:     "multiple refs keep order",
			template: "Summarize {Name} in {Category} terms",
			want:     []string{"Name", "Category"},
		},
		{
			name:     "duplicates removed",
			template: "{Name} and again {Name}",
			want:     []string{"Name"},
		},
		{
			name:     "whitespace trimmed",
			template: "Use { Name } here",
			want:     []string{"Name"},
		},
		{
			name:     "empty braces ignored",
			template: "nothing {} here",
			want:     nil,
		},
		{
			name:     "no braces",
			template: "plain prompt without tokens",
			want:     nil,
		},
		{
			name:     "empty template",
			template: "",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractRefs(tt.template)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractRefs(%q) = %v, want %v", tt.template, got, tt.want)
			}
		})
	}
}

func TestRenderPrompt(t *testing.T) {
	values := map[string]string{
		"Name":     "Acme",
		"category": "Logistics", // значение по ID
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "substitutes by name",
			template: "Classify {Name}",
			want:     "Classify Acme",
		},
		{
			name:     "substitutes by id",
			template: "Tagline for {category}",
			want:     "Tagline for Logistics",
		},
		{
			name:     "unresolved token kept as-is",
			template: "Describe {Unknown Field}",
			want:     "Describe {Unknown Field}",
		},
		{
			name:     "mixed resolved and unresolved",
			template: "{Name} / {Missing}",
			want:     "Acme / {Missing}",
		},
		{
			name:     "no tokens",
			template: "static prompt",
			want:     "static prompt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderPrompt(tt.template, values)
			if got != tt.want {
				t.Errorf("RenderPrompt(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}
