package util

import "golang.org/x/text/unicode/norm"

// Normalize applies NFKD normalization so user ids and email addresses
// compare stably regardless of how the on-screen keyboard composed them.
func Normalize(s string) string {
	return norm.NFKD.String(s)
}
