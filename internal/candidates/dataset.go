// Package candidates generates synthetic candidate profiles for a job position.
package candidates

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultPosition is used when a requested job position has no dataset.
const DefaultPosition = "Software Developer"

//go:embed datasets.yaml
var datasetYAML []byte

// SoftSkill is a soft skill with a one-line description of how it shows up.
type SoftSkill struct {
	Skill  string `yaml:"skill"`
	Detail string `yaml:"detail"`
}

// Followup is an interview follow-up question and the candidate's answer.
type Followup struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// PositionData holds the closed lists sampled for one job position.
type PositionData struct {
	Institutions    []string    `yaml:"institutions"`
	Degrees         []string    `yaml:"degrees"`
	Companies       []string    `yaml:"companies"`
	Titles          []string    `yaml:"titles"`
	TechnicalSkills []string    `yaml:"technical_skills"`
	SoftSkills      []SoftSkill `yaml:"soft_skills"`
	Accomplishments []string    `yaml:"accomplishments"`
	InterviewQuotes []string    `yaml:"interview_quotes"`
	Followups       []Followup  `yaml:"followups"`
	GoldStars       []string    `yaml:"gold_stars"`
	RedFlags        []string    `yaml:"red_flags"`
	KeyStrengths    []string    `yaml:"key_strengths"`
	ReferenceTitles []string    `yaml:"reference_titles"`
	ReferenceQuotes []string    `yaml:"reference_quotes"`
}

// Names holds first-name pools per gender and a shared last-name pool.
type Names struct {
	Male      []string `yaml:"male"`
	Female    []string `yaml:"female"`
	NonBinary []string `yaml:"non_binary"`
	Last      []string `yaml:"last"`
}

// Dataset is the full template corpus used by the local generator.
type Dataset struct {
	Names          Names                    `yaml:"names"`
	ReferenceNames []string                 `yaml:"reference_names"`
	Positions      map[string]*PositionData `yaml:"positions"`
}

var (
	defaultDataset     *Dataset
	defaultDatasetErr  error
	defaultDatasetOnce sync.Once
)

// LoadDataset returns the embedded dataset, parsing it on first use.
func LoadDataset() (*Dataset, error) {
	defaultDatasetOnce.Do(func() {
		defaultDataset, defaultDatasetErr = ParseDataset(datasetYAML)
	})
	return defaultDataset, defaultDatasetErr
}

// MustLoadDataset is like LoadDataset but panics if the embedded data is invalid.
func MustLoadDataset() *Dataset {
	ds, err := LoadDataset()
	if err != nil {
		panic(fmt.Sprintf("failed to load candidate dataset: %v", err))
	}
	return ds
}

// ParseDataset decodes and checks a YAML dataset.
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (d *Dataset) validate() error {
	if len(d.Names.Male) == 0 || len(d.Names.Female) == 0 || len(d.Names.NonBinary) == 0 || len(d.Names.Last) == 0 {
		return fmt.Errorf("dataset: every name pool must be non-empty")
	}
	if len(d.ReferenceNames) == 0 {
		return fmt.Errorf("dataset: reference_names must be non-empty")
	}
	if _, ok := d.Positions[DefaultPosition]; !ok {
		return fmt.Errorf("dataset: missing default position %q", DefaultPosition)
	}
	for name, p := range d.Positions {
		switch {
		case len(p.Institutions) == 0, len(p.Degrees) == 0, len(p.Companies) == 0, len(p.Titles) == 0:
			return fmt.Errorf("dataset: position %q is missing education or employment lists", name)
		case len(p.TechnicalSkills) == 0, len(p.SoftSkills) == 0, len(p.Accomplishments) == 0:
			return fmt.Errorf("dataset: position %q is missing skills or accomplishments", name)
		case len(p.InterviewQuotes) == 0, len(p.Followups) == 0, len(p.KeyStrengths) == 0:
			return fmt.Errorf("dataset: position %q is missing interview material", name)
		case len(p.GoldStars) == 0, len(p.RedFlags) == 0:
			return fmt.Errorf("dataset: position %q is missing gold stars or red flags", name)
		case len(p.ReferenceTitles) == 0, len(p.ReferenceQuotes) == 0:
			return fmt.Errorf("dataset: position %q is missing reference material", name)
		}
	}
	return nil
}

// Position returns the data for a job position, falling back to DefaultPosition.
// The second return value is the position whose data was used.
func (d *Dataset) Position(name string) (*PositionData, string) {
	if p, ok := d.Positions[name]; ok {
		return p, name
	}
	return d.Positions[DefaultPosition], DefaultPosition
}

// HasPosition reports whether the dataset has templates for name.
func (d *Dataset) HasPosition(name string) bool {
	_, ok := d.Positions[name]
	return ok
}

// PositionNames returns every position name in sorted order.
func (d *Dataset) PositionNames() []string {
	names := make([]string, 0, len(d.Positions))
	for name := range d.Positions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
