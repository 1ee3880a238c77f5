package normalize

import "testing"

func TestPhoneAddsCountryPrefix(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"92345678", "59892345678"},
		{"099123456", "59899123456"},
		{"2601 23 45", "59826012345"},
		{"598 99 123 456", "59899123456"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Phone(tt.raw); got != tt.want {
			t.Errorf("Phone(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestPhoneRejectsMaskedAndShortNumbers(t *testing.T) {
	tests := []string{"12*45678", "1234567", "12 34 56", "099***456"}

	for _, raw := range tests {
		if got := Phone(raw); got != "" {
			t.Errorf("Phone(%q) = %q; want rejection", raw, got)
		}
	}
}

func TestPhoneIsIdempotent(t *testing.T) {
	inputs := []string{"92345678", "099123456", "59899123456"}

	for _, raw := range inputs {
		once := Phone(raw)
		if twice := Phone(once); twice != once {
			t.Errorf("Phone not idempotent on %q: %q != %q", raw, once, twice)
		}
	}
}

func TestNeighborhoodCanonicalizesVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"MALVIN", "Malvín"},
		{"malvín", "Malvín"},
		{"cordon", "Cordón"},
		{"blanqueada", "La Blanqueada"},
		{"  pocitos  ", "Pocitos"},
		{"Villa Dolores", "Villa Dolores"}, // unknown passes through trimmed
	}

	for _, tt := range tests {
		if got := Neighborhood(tt.raw); got != tt.want {
			t.Errorf("Neighborhood(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNeighborhoodRejectsPlaceholders(t *testing.T) {
	for _, raw := range []string{"", ".", "—"} {
		if got := Neighborhood(raw); got != "" {
			t.Errorf("Neighborhood(%q) = %q; want rejection", raw, got)
		}
	}
}

func TestCategoryMapsLabelsAndSlugs(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Electricistas", "electricista"},
		{"Sanitarios", "plomero"},
		{"albañiles", "albanil"},
		{"albaniles", "albanil"},
		{"Cerrajerías", "cerrajero"},
		{"desconocido", ""},
	}

	for _, tt := range tests {
		if got := Category(tt.raw); got != tt.want {
			t.Errorf("Category(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}
