// Package probe locates the external executables abkhazia depends on.
package probe

import "os/exec"

// Finder resolves an executable name to an absolute path, like
// exec.LookPath. Tests inject fakes here.
type Finder func(name string) (string, error)

// Executable is a required external tool and where to obtain it.
type Executable struct {
	Name   string
	Source string
}

// Required lists the executables that must be resolvable in PATH
// before anything else runs.
var Required = []Executable{
	{Name: "sox", Source: "http://sox.sourceforge.net"},
	{Name: "shorten", Source: "http://etree.org/shnutils/shorten"},
	{Name: "festival", Source: "http://www.cstr.ed.ac.uk/projects/festival"},
}

// Result is the outcome of probing for one executable.
type Result struct {
	Name  string
	Path  string
	Found bool
}

// Lookup probes for a single executable.
func Lookup(find Finder, name string) Result {
	if find == nil {
		find = exec.LookPath
	}
	path, err := find(name)
	if err != nil {
		return Result{Name: name}
	}
	return Result{Name: name, Path: path, Found: true}
}

// LookupAll probes every required executable.
func LookupAll(find Finder) []Result {
	results := make([]Result, 0, len(Required))
	for _, e := range Required {
		results = append(results, Lookup(find, e.Name))
	}
	return results
}
