package logger

import "strings"

// RedactEmail masks an email address for safe logging.
// "marie.curie@club.ch" → "ma***@club.ch"
// Short local parts (≤2 chars) are fully masked: "ab@club.ch" → "***@club.ch"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}
