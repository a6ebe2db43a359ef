package inspection

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// ManualObservations holds hand-curated observations keyed by display title.
// The join to an analysis is by normalized title only; there is no foreign key.
type ManualObservations struct {
	byTitle map[string][]Observation
}

type manualFile struct {
	Observations map[string][]Observation `yaml:"observations"`
}

// LoadManualObservations reads the curated set from a YAML file. A missing
// path yields an empty set rather than an error so the feature stays optional.
func LoadManualObservations(path string) (*ManualObservations, error) {
	m := &ManualObservations{byTitle: make(map[string][]Observation)}
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("read manual observations %s: %w", path, err)
	}

	var file manualFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse manual observations %s: %w", path, err)
	}

	// Invalid entries are skipped, not fatal: the file is hand-edited and one
	// bad entry must not take the service down.
	for title, observations := range file.Observations {
		valid := make([]Observation, 0, len(observations))
		for i := range observations {
			observations[i].Source = SourceManual
			if err := observations[i].Validate(); err != nil {
				slog.Warn("inspection: skipping invalid manual observation", "title", title, "error", err)
				continue
			}
			valid = append(valid, observations[i])
		}
		if len(valid) > 0 {
			m.byTitle[NormalizeTitle(title)] = valid
		}
	}
	return m, nil
}

// ForTitle returns the curated observations matching the analysis title, or an
// empty list when there is no matching entry.
func (m *ManualObservations) ForTitle(title string) []Observation {
	if m == nil {
		return []Observation{}
	}
	if observations, ok := m.byTitle[NormalizeTitle(title)]; ok {
		return observations
	}
	return []Observation{}
}

// Len reports how many titles carry curated observations.
func (m *ManualObservations) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byTitle)
}
