package hooks

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/tickwright/tickctl/pkg/rotation"
)

// hookNamePattern matches "NN-name.sh" or "NN-name_X.sh", where NN is a
// two-digit ordering prefix and the optional _X restricts the hook to
// mode letter X (B/E/R/A, see pkg/rotation).
var hookNamePattern = regexp.MustCompile(`^(\d{2})-[^_]+(?:_([A-Z]))?\.sh$`)

var modeLetterTo = map[string]rotation.Mode{
	"B": rotation.ModeBuild,
	"E": rotation.ModeEngage,
	"R": rotation.ModeReflect,
	"A": rotation.ModeAudit,
}

// Enumerate lists every hook script in dir, in lexical filename order,
// with the given manifest's metadata attached. Files that don't match
// the naming convention are skipped.
func Enumerate(dir string, manifest Manifest) ([]Hook, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []Hook
	for _, name := range names {
		match := hookNamePattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		hook := Hook{
			Name:  name,
			Path:  filepath.Join(dir, name),
			Order: match[1],
			Meta:  manifest[name],
		}
		if match[2] != "" {
			hook.Mode = modeLetterTo[match[2]]
		}
		out = append(out, hook)
	}
	return out, nil
}

// FilterMode returns the subset of hooks that apply to mode: those with
// no mode restriction, plus those restricted to mode itself.
func FilterMode(all []Hook, mode rotation.Mode) []Hook {
	var out []Hook
	for _, h := range all {
		if h.Mode == "" || h.Mode == mode {
			out = append(out, h)
		}
	}
	return out
}
