package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips markup from user-supplied text (habit titles, descriptions,
// completion notes) before it is stored.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
