// Package redact scrubs credential-shaped substrings from hook output,
// the degradation-notice banner, and health-probe error strings before
// they are persisted or rendered.
package redact

// Masker is a code-based redactor that needs structural awareness beyond
// a regex pattern (e.g. redacting only values known to be live platform
// credentials). Must be defensive: return the original data unchanged on
// any processing error, never panic.
type Masker interface {
	Name() string
	AppliesTo(data string) bool
	Mask(data string) string
}
