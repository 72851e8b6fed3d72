package hooks

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadManifest reads a hooks.yaml file mapping hook filenames to their
// declared metadata. A missing file yields an empty Manifest rather
// than an error, since undeclared hooks simply get the zero Meta.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil
		}
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}
