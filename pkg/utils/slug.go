package utils

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile("[^a-z0-9]+")

func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Singular strips a trailing "s" from a lowered name. Good enough for the
// object kinds we match against ("companies" is handled by its "compan"
// substring before this is ever consulted).
func Singular(s string) string {
	s = strings.ToLower(s)
	if strings.HasSuffix(s, "s") && len(s) > 1 {
		return s[:len(s)-1]
	}
	return s
}
