package scraper

import (
	"testing"
)

func TestSearchURL(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		page     int
		expected string
	}{
		{
			name:     "single word",
			query:    "laptop",
			page:     1,
			expected: "https://www.amazon.com/s?k=laptop&page=1",
		},
		{
			name:     "spaces escaped",
			query:    "gaming laptop",
			page:     2,
			expected: "https://www.amazon.com/s?k=gaming+laptop&page=2",
		},
		{
			name:     "special characters escaped",
			query:    "usb-c & hdmi",
			page:     3,
			expected: "https://www.amazon.com/s?k=usb-c+%26+hdmi&page=3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := searchURL(tt.query, tt.page); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
