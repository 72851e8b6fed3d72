package redact

import "regexp"

// CompiledPattern is a pre-compiled regex and its replacement text.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// builtinPatterns is the fixed table of secret shapes every caller
// scrubs for: API keys, bearer tokens, key=value secret-shaped pairs,
// and URL userinfo. There is no per-caller custom-pattern or
// pattern-group layer — every caller in this orchestrator wants the
// same fixed sweep applied uniformly.
func builtinPatterns() []*CompiledPattern {
	specs := []struct {
		name        string
		pattern     string
		replacement string
	}{
		{
			name:        "bearer_token",
			pattern:     `(?i)\bBearer\s+[A-Za-z0-9\-._~+/]+=*`,
			replacement: "Bearer [REDACTED]",
		},
		{
			name:        "api_key_literal",
			pattern:     `\b(sk|pk|rk)-[A-Za-z0-9]{16,}\b`,
			replacement: "[REDACTED_API_KEY]",
		},
		{
			name:        "key_value_secret",
			pattern:     `(?i)\b(api[_-]?key|token|secret|password|passwd)\s*[:=]\s*["']?[^\s"']{4,}["']?`,
			replacement: "$1=[REDACTED]",
		},
		{
			name:        "url_userinfo",
			pattern:     `(https?://)[^/\s:@]+:[^/\s:@]+@`,
			replacement: "${1}[REDACTED]@",
		},
	}

	compiled := make([]*CompiledPattern, 0, len(specs))
	for _, s := range specs {
		compiled = append(compiled, &CompiledPattern{
			Name:        s.name,
			Regex:       regexp.MustCompile(s.pattern),
			Replacement: s.replacement,
		})
	}
	return compiled
}
