// package export builds the privacy-masked, read-only projections of draw
// results: masking helpers, the spreadsheet export and the sign-in sheet.
package export

import "strings"

// MaskName keeps the first and last character and masks the middle.
// Single-character names stay unmasked; two-character names show the first
// character plus one asterisk.
func MaskName(value string) string {
	runes := []rune(strings.TrimSpace(value))
	switch len(runes) {
	case 0:
		return ""
	case 1:
		return string(runes)
	case 2:
		return string(runes[0]) + "*"
	}

	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}

// MaskPhone keeps the first 3 and last 4 characters, masking the middle.
// Values of 7 characters or fewer are returned unchanged.
func MaskPhone(value string) string {
	return maskContact(value)
}

// MaskIdentifier applies the same 3+4 masking rule as MaskPhone.
func MaskIdentifier(value string) string {
	return maskContact(value)
}

func maskContact(value string) string {
	raw := strings.TrimSpace(value)
	if len(raw) <= 7 {
		return raw
	}

	return raw[:3] + strings.Repeat("*", len(raw)-7) + raw[len(raw)-4:]
}
