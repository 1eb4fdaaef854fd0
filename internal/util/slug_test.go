package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple title",
			input:    "Chocolate Drip Cake",
			expected: "chocolate-drip-cake",
		},
		{
			name:     "with special characters",
			input:    "Mum's Birthday Cake!",
			expected: "mums-birthday-cake",
		},
		{
			name:     "with numbers",
			input:    "Order 123",
			expected: "order-123",
		},
		{
			name:     "with accents",
			input:    "Café résumé",
			expected: "cafe-resume",
		},
		{
			name:     "with multiple spaces",
			input:    "Treat   Box",
			expected: "treat-box",
		},
		{
			name:     "with hyphens",
			input:    "Bento - Cake",
			expected: "bento-cake",
		},
		{
			name:     "with leading/trailing spaces",
			input:    "  Smash Cake  ",
			expected: "smash-cake",
		},
		{
			name:     "all special characters",
			input:    "!@#$%^&*()",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
