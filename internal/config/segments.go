package config

import (
	_ "embed"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
)

//go:embed segments.yaml
var defaultSegments []byte

// Segment is one named cohort of companies and the contacts to look for.
type Segment struct {
	Name     string           `yaml:"-"`
	Workflow string           `yaml:"workflow"`
	Titles   []string         `yaml:"titles"`
	Options  pipeline.Options `yaml:"options"`
}

// Segments is the segment catalogue keyed by name.
type Segments map[string]Segment

// DefaultSegments returns the catalogue compiled into the binary.
func DefaultSegments() (Segments, error) {
	return parseSegments(defaultSegments)
}

// LoadSegments reads a catalogue from path. An empty path returns the
// built-in catalogue.
func LoadSegments(path string) (Segments, error) {
	if path == "" {
		return DefaultSegments()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read segments %s", path)
	}
	return parseSegments(data)
}

func parseSegments(data []byte) (Segments, error) {
	var wrapper struct {
		Segments map[string]Segment `yaml:"segments"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "config: parse segments")
	}
	if len(wrapper.Segments) == 0 {
		return nil, eris.New("config: segment catalogue is empty")
	}

	out := make(Segments, len(wrapper.Segments))
	for name, seg := range wrapper.Segments {
		seg.Name = name
		var titles []string
		for _, t := range seg.Titles {
			if t = strings.TrimSpace(t); t != "" {
				titles = append(titles, t)
			}
		}
		if len(titles) == 0 {
			return nil, eris.Errorf("config: segment %q has no titles", name)
		}
		seg.Titles = titles
		out[name] = seg
	}
	return out, nil
}

// Lookup returns the named segment.
func (s Segments) Lookup(name string) (Segment, error) {
	seg, ok := s[name]
	if !ok {
		return Segment{}, eris.Errorf("config: unknown segment %q (want one of %s)", name, strings.Join(s.Names(), ", "))
	}
	return seg, nil
}

// Names lists segment names in sorted order.
func (s Segments) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
