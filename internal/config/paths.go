package config

import (
	"os"
	"path/filepath"
)

// Names of the files abkhazia manages inside its config directory.
const (
	ConfigFileName = "abkhazia.conf"
	PathScriptName = "path.sh"
	CMUDictName    = "cmudict.0.7a"
)

// Paths holds the configured filesystem layout.
type Paths struct {
	ConfigDir  string
	ConfigFile string
	PathScript string
	CMUDict    string
}

// PathsIn returns the layout rooted at dir.
func PathsIn(dir string) *Paths {
	return &Paths{
		ConfigDir:  dir,
		ConfigFile: filepath.Join(dir, ConfigFileName),
		PathScript: filepath.Join(dir, PathScriptName),
		CMUDict:    filepath.Join(dir, CMUDictName),
	}
}

// DefaultPaths returns the layout under the user configuration
// directory, falling back to ".abkhazia" in the working directory when
// no user directory is available.
func DefaultPaths() *Paths {
	base, err := os.UserConfigDir()
	if err != nil {
		return PathsIn(".abkhazia")
	}
	return PathsIn(filepath.Join(base, "abkhazia"))
}
