package util

import "strings"

// SanitizePostgresText drops NUL bytes and invalid UTF-8 sequences, neither
// of which a Postgres text column accepts. Text extracted by external tools
// such as pdftotext can contain both.
func SanitizePostgresText(text string) string {
	if text == "" {
		return text
	}
	clean := strings.ReplaceAll(text, "\x00", "")
	return strings.ToValidUTF8(clean, "")
}
