package validators

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(11) 98765-4321", "5511987654321"},
		{"11 3456-7890", "551134567890"},
		{"+55 21 99876-5432", "5521998765432"},
		{"", ""},
		{"123", "123"},
		{"(11) ٩٨٧٦٥-4321", "114321"},
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsWhatsAppNumber(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"mobile with mask", "(11) 98765-4321", true},
		{"landline length", "1134567890", true},
		{"country code", "5521998765432", true},
		{"ddd with zero", "(01) 98765-4321", false},
		{"ddd ending in zero", "(10) 98765-4321", false},
		{"nine digits without leading 9", "11 88765-4321", false},
		{"foreign country code", "4411987654321", false},
		{"too short", "98765-4321", false},
		{"empty", "", false},
		{"arabic-indic digits", "٥٥١١٩٨٧٦٥٤٣٢١", false},
		{"mixed arabic-indic digits", "11 ٩٨٧٦٥4321", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWhatsAppNumber(tt.phone); got != tt.want {
				t.Errorf("IsWhatsAppNumber(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}
