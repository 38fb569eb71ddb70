// Package config models the abkhazia.conf document: a read-only
// template shipped with the binary and a live copy on disk that
// operators edit. The live copy is only ever mutated by a targeted
// single-line patch, so parsing keeps the raw lines around and never
// reserializes the whole document.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed share/abkhazia.conf
var templateData []byte

// Param is a single "key: value" line inside a section.
type Param struct {
	Key   string
	Value string
	Line  int
}

// Section is a "[name]" header and the parameters under it.
type Section struct {
	Name   string
	Params []Param
	Line   int
}

// Document is a parsed configuration file. The original lines are
// retained so callers can patch a single line without disturbing
// comments or ordering.
type Document struct {
	Sections []Section

	lines []string
}

// Template returns the parsed shipped template.
func Template() *Document {
	// The embedded template always parses; a failure here is a
	// packaging error.
	doc, err := Parse(string(templateData))
	if err != nil {
		panic(fmt.Sprintf("config: bad embedded template: %v", err))
	}
	return doc
}

// TemplateBytes returns the raw shipped template.
func TemplateBytes() []byte {
	out := make([]byte, len(templateData))
	copy(out, templateData)
	return out
}

// Parse reads a ConfigParser-style document: "[section]" headers,
// "key: value" parameters, "#" or ";" comments.
func Parse(data string) (*Document, error) {
	doc := &Document{lines: strings.Split(data, "\n")}

	current := -1
	for i, raw := range doc.lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("line %d: malformed section header %q", i+1, line)
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			doc.Sections = append(doc.Sections, Section{Name: name, Line: i})
			current = len(doc.Sections) - 1
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected 'key: value', got %q", i+1, line)
		}
		if current < 0 {
			return nil, fmt.Errorf("line %d: parameter %q before any section", i+1, key)
		}
		doc.Sections[current].Params = append(doc.Sections[current].Params, Param{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
			Line:  i,
		})
	}

	return doc, nil
}

// Load parses the configuration file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	doc, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Instantiate writes the shipped template verbatim to path. It is the
// caller's job to check the file does not already exist.
func Instantiate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, templateData, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// SectionNames returns the set of section names.
func (d *Document) SectionNames() map[string]bool {
	set := make(map[string]bool, len(d.Sections))
	for _, s := range d.Sections {
		set[s.Name] = true
	}
	return set
}

// ParamNames returns the set of parameter names across all sections.
func (d *Document) ParamNames() map[string]bool {
	set := make(map[string]bool)
	for _, s := range d.Sections {
		for _, p := range s.Params {
			set[p.Key] = true
		}
	}
	return set
}

// Get returns the value of a parameter, with whitespace trimmed.
func (d *Document) Get(section, key string) (string, bool) {
	for _, s := range d.Sections {
		if s.Name != section {
			continue
		}
		for _, p := range s.Params {
			if p.Key == key {
				return p.Value, true
			}
		}
	}
	return "", false
}

// Reconcile compares the section-name set and the parameter-name set
// of live against template, as unordered sets. Values are never
// compared. A non-nil error lists every divergent name.
func Reconcile(template, live *Document) error {
	var details []string
	details = append(details, diffSets("section", template.SectionNames(), live.SectionNames())...)
	details = append(details, diffSets("parameter", template.ParamNames(), live.ParamNames())...)
	if len(details) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(details, "; "))
}

func diffSets(kind string, tmpl, live map[string]bool) []string {
	var missing, extra []string
	for name := range tmpl {
		if !live[name] {
			missing = append(missing, name)
		}
	}
	for name := range live {
		if !tmpl[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)

	var out []string
	if len(missing) > 0 {
		out = append(out, fmt.Sprintf("missing %s(s) %s", kind, strings.Join(missing, ", ")))
	}
	if len(extra) > 0 {
		out = append(out, fmt.Sprintf("extra %s(s) %s", kind, strings.Join(extra, ", ")))
	}
	return out
}

// PatchParam rewrites the single line holding a blank parameter in the
// file at path, leaving every other byte untouched. It refuses to
// overwrite a parameter that already has a value.
func PatchParam(path, section, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	current := ""
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		if current != section {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(k) != key {
			continue
		}
		if strings.TrimSpace(v) != "" {
			return fmt.Errorf("%s.%s already has a value", section, key)
		}
		lines[i] = fmt.Sprintf("%s: %s", key, value)
		return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
	}

	return fmt.Errorf("parameter %s.%s not found in %s", section, key, path)
}
