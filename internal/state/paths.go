package state

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/giantswarm/zksupervisor/internal/fileutil"
)

// Paths is the resolved set of filesystem locations for the local
// installation.
type Paths struct {
	DataDirectory    string
	LogDirectory     string // transaction log directory
	ConfigDirectory  string
	InstallDirectory string
	ControlScript    string

	// JarPath is the server jar placed first on the purge tool's classpath.
	JarPath string
	// ClassPath holds additional jars (logging bindings) for the purge tool.
	ClassPath []string
}

// Valid reports whether every required location is set and exists. The
// supervisor treats invalid paths as "not configured yet" and skips work.
func (p Paths) Valid() bool {
	for _, path := range []string{
		p.DataDirectory,
		p.LogDirectory,
		p.ConfigDirectory,
		p.InstallDirectory,
		p.ControlScript,
		p.JarPath,
	} {
		if !fileutil.Exists(path) {
			return false
		}
	}
	return true
}

// PurgeClassPath joins the jar, the extra class path entries and the config
// directory into a java -cp argument.
func (p Paths) PurgeClassPath() string {
	parts := make([]string, 0, len(p.ClassPath)+2)
	parts = append(parts, p.JarPath)
	parts = append(parts, p.ClassPath...)
	parts = append(parts, p.ConfigDirectory)
	return strings.Join(parts, string(filepath.ListSeparator))
}

// Locations are the operator-supplied inputs to ResolvePaths.
type Locations struct {
	InstallDirectory string
	DataDirectory    string
	LogDirectory     string // optional, defaults to DataDirectory
	ConfigDirectory  string // optional, defaults to <install>/conf
	ControlScript    string
}

// ResolvePaths fills in derived locations. The jar is the first
// zookeeper*.jar found in the installation directory (falling back to lib/);
// every other jar in lib/ lands on ClassPath. Missing jars are not an error
// here; they surface as Valid() == false.
func ResolvePaths(loc Locations) (Paths, error) {
	p := Paths{
		DataDirectory:    loc.DataDirectory,
		LogDirectory:     loc.LogDirectory,
		ConfigDirectory:  loc.ConfigDirectory,
		InstallDirectory: loc.InstallDirectory,
		ControlScript:    loc.ControlScript,
	}
	if p.LogDirectory == "" {
		p.LogDirectory = p.DataDirectory
	}
	if p.ConfigDirectory == "" && p.InstallDirectory != "" {
		p.ConfigDirectory = filepath.Join(p.InstallDirectory, "conf")
	}
	if p.InstallDirectory == "" {
		return p, nil
	}

	jars, err := globSorted(filepath.Join(p.InstallDirectory, "zookeeper*.jar"))
	if err != nil {
		return Paths{}, err
	}
	libJars, err := globSorted(filepath.Join(p.InstallDirectory, "lib", "*.jar"))
	if err != nil {
		return Paths{}, err
	}
	if len(jars) == 0 {
		for _, j := range libJars {
			if strings.HasPrefix(filepath.Base(j), "zookeeper") {
				jars = append(jars, j)
				break
			}
		}
	}
	if len(jars) > 0 {
		p.JarPath = jars[0]
	}
	for _, j := range libJars {
		if j != p.JarPath {
			p.ClassPath = append(p.ClassPath, j)
		}
	}
	return p, nil
}

func globSorted(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}
