package redact

import "strings"

const maskedCredentialValue = "[REDACTED_CREDENTIAL]"

// CredentialSource supplies the current set of live credential literal
// values to redact — typically loaded from environment variables or a
// credentials file at the moment a masker is built, never cached across
// ticks since credentials can rotate.
type CredentialSource func() []string

// CredentialValueMasker redacts any exact-substring occurrence of a live
// platform credential's loaded value. Unlike the regex table, this
// masker's pattern set is data, not structure — it has no fixed shape to
// match against, only a short list of secret strings a given deployment
// is currently holding.
type CredentialValueMasker struct {
	source CredentialSource
}

// NewCredentialValueMasker returns a masker that consults source for the
// current credential values each time Mask is called.
func NewCredentialValueMasker(source CredentialSource) *CredentialValueMasker {
	return &CredentialValueMasker{source: source}
}

func (m *CredentialValueMasker) Name() string { return "credential_value" }

// AppliesTo is intentionally permissive: the cheap containment checks a
// structural masker would use don't apply here, since credential values
// are opaque strings that could appear anywhere. The real cost is paid
// in Mask, which scans for each value the source returns and so does no
// work when that list is empty.
func (m *CredentialValueMasker) AppliesTo(data string) bool {
	return data != ""
}

// Mask replaces every occurrence of every current credential value with
// a fixed placeholder. Values shorter than 6 characters are skipped to
// avoid mass-redacting common substrings from a misconfigured empty or
// near-empty credential.
func (m *CredentialValueMasker) Mask(data string) string {
	if m.source == nil {
		return data
	}
	masked := data
	for _, secret := range m.source() {
		if len(secret) < 6 {
			continue
		}
		masked = strings.ReplaceAll(masked, secret, maskedCredentialValue)
	}
	return masked
}
