package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips all HTML from reviewer-supplied text before it is rendered
// in result pages or notification emails.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
