package logger

import "strings"

// RedactUserID masks a traveler identifier for safe logging.
// "user_48821" → "us***"
// Short ids (≤2 chars) are fully masked.
func RedactUserID(id string) string {
	if len(id) > 2 {
		return id[:2] + "***"
	}
	return "***"
}

func redactValue(key, val string) string {
	key = strings.ToLower(key)
	if strings.Contains(key, "user_id") || strings.Contains(key, "traveler") {
		return RedactUserID(val)
	}
	return val
}
