// Package patterns loads and validates the YAML rule sets consumed by
// the generic pattern extractor.
package patterns

import (
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultMinOccurrences = 2
	defaultMinLength      = 2
)

// EntityPattern is a single extraction rule: a regular expression with
// exactly one capture group plus the category and length filter applied
// to its matches.
type EntityPattern struct {
	Name        string `yaml:"name" validate:"required"`
	Pattern     string `yaml:"pattern" validate:"required"`
	Category    string `yaml:"category" validate:"required"`
	Description string `yaml:"description"`
	MinLength   int    `yaml:"min_length"`
}

// RelationshipTrigger describes when matched entities should be linked.
type RelationshipTrigger struct {
	Name             string   `yaml:"name" validate:"required"`
	SourceCategories []string `yaml:"source_categories" validate:"required,min=1"`
	TargetCategories []string `yaml:"target_categories" validate:"required,min=1"`
	Proximity        int      `yaml:"proximity"`
	TriggerPattern   string   `yaml:"trigger_pattern"`
}

// Config is the root of a validated pattern rule set.
type Config struct {
	Version              string                `yaml:"version"`
	Name                 string                `yaml:"name"`
	Description          string                `yaml:"description"`
	MinOccurrences       int                   `yaml:"min_occurrences"`
	EntityPatterns       []EntityPattern       `yaml:"entity_patterns" validate:"required,min=1,dive"`
	RelationshipTriggers []RelationshipTrigger `yaml:"relationship_triggers" validate:"dive"`
}

var validate = validator.New()

// Load reads a pattern configuration from a YAML file and validates it.
// Invalid YAML, an empty file, and patterns failing the
// single-capture-group rule are all rejected here, before any
// extraction begins.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading patterns file")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.Errorf("patterns file %s is empty", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing patterns file %s", path)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid patterns file %s", path)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Name == "" {
		c.Name = "default"
	}
	if c.MinOccurrences == 0 {
		c.MinOccurrences = defaultMinOccurrences
	}
	for i := range c.EntityPatterns {
		if c.EntityPatterns[i].MinLength == 0 {
			c.EntityPatterns[i].MinLength = defaultMinLength
		}
	}
}

// Validate checks struct-level constraints plus the hard rule that
// every entity pattern compiles and carries exactly one capture group.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	for _, ep := range c.EntityPatterns {
		re, err := regexp.Compile(ep.Pattern)
		if err != nil {
			return errors.Wrapf(err, "entity pattern %q: invalid regex", ep.Name)
		}
		if n := re.NumSubexp(); n != 1 {
			return errors.Errorf("entity pattern %q must have exactly one capture group, got %d", ep.Name, n)
		}
	}
	for _, rt := range c.RelationshipTriggers {
		if rt.TriggerPattern == "" {
			continue
		}
		if _, err := regexp.Compile(rt.TriggerPattern); err != nil {
			return errors.Wrapf(err, "relationship trigger %q: invalid regex", rt.Name)
		}
	}
	return nil
}

// Default returns the bundled rule set used when no patterns file is
// supplied: proper nouns, acronyms, quoted terms and section
// references, each pattern's name doubling as its category.
func Default() *Config {
	cfg := &Config{
		Name:        "default",
		Description: "Built-in generic extraction patterns",
		EntityPatterns: []EntityPattern{
			{
				Name:     "proper_noun",
				Pattern:  `\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\b`,
				Category: "proper_noun",
			},
			{
				Name:     "acronym",
				Pattern:  `\b([A-Z]{2,6})\b`,
				Category: "acronym",
			},
			{
				Name:     "quoted_term",
				Pattern:  `"([^"]+)"`,
				Category: "quoted_term",
			},
			{
				Name:     "section_ref",
				Pattern:  `(?:Section|§)\s*(\d+(?:\.\d+)*)`,
				Category: "section_ref",
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}
