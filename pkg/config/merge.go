package config

import "dario.cat/mergo"

// mergeInto merges a user-provided override (possibly nil) onto a copy of
// the built-in default, user values winning on every non-zero field.
func mergeInto[T any](builtin *T, override *T) (*T, error) {
	if override == nil {
		return builtin, nil
	}
	if err := mergo.Merge(builtin, override, mergo.WithOverride); err != nil {
		return nil, err
	}
	return builtin, nil
}
