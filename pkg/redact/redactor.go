package redact

// Redactor applies a fixed set of maskers to arbitrary text before it is
// persisted or rendered. Created once and reused; stateless aside from
// its compiled pattern table, so safe for concurrent use.
type Redactor struct {
	patterns []*CompiledPattern
	maskers  []Masker
}

// New returns a Redactor with the builtin pattern table plus any
// additional code-based maskers (e.g. a CredentialValueMasker built from
// the deployment's currently loaded platform credentials).
func New(extra ...Masker) *Redactor {
	return &Redactor{
		patterns: builtinPatterns(),
		maskers:  extra,
	}
}

// Redact applies every code-based masker, then every regex pattern, to
// text. Maskers run first since they can reason about structure the
// regex sweep can't; the regex sweep then catches anything left over.
// Never fails — a masker that can't make sense of the text is required
// to return it unchanged, and regex replacement cannot error.
func (r *Redactor) Redact(text string) string {
	if text == "" {
		return text
	}

	masked := text
	for _, m := range r.maskers {
		if m.AppliesTo(masked) {
			masked = m.Mask(masked)
		}
	}
	for _, p := range r.patterns {
		masked = p.Regex.ReplaceAllString(masked, p.Replacement)
	}
	return masked
}
