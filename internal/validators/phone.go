package validators

import "strings"

// NormalizePhone keeps only ASCII digits and prefixes the Brazilian country code
// when a national number (DDD + number) is given.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) == 10 || len(digits) == 11 {
		digits = "55" + digits
	}
	return digits
}

// IsWhatsAppNumber checks the shape of a Brazilian WhatsApp number:
// country code 55, a two-digit DDD without zeros and an 8 or 9 digit subscriber
// number, mobile numbers starting with 9.
func IsWhatsAppNumber(phone string) bool {
	digits := NormalizePhone(phone)
	if len(digits) != 12 && len(digits) != 13 {
		return false
	}

	if !strings.HasPrefix(digits, "55") {
		return false
	}

	if digits[2] == '0' || digits[3] == '0' {
		return false
	}

	if len(digits) == 13 && digits[4] != '9' {
		return false
	}

	return true
}
