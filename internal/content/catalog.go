package content

import (
	_ "embed"
	"fmt"
	"os"

	"history-quiz/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed periods.yaml
var embeddedPeriods []byte

type periodFile struct {
	Criteria map[string]string `yaml:"criteria"`
	Periods  []struct {
		Name    string            `yaml:"name"`
		Summary string            `yaml:"summary"`
		Aspects map[string]string `yaml:"aspects"`
	} `yaml:"periods"`
}

// Catalog is the read-only study dataset: periods in syllabus order and the
// modernization criteria per aspect.
type Catalog struct {
	order    []string
	periods  map[string]domain.Period
	criteria map[domain.Aspect]string
}

// Default loads the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(embeddedPeriods)
}

// LoadFile loads a catalog from a YAML file with the same layout as the
// embedded one.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f periodFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing content: %w", err)
	}

	c := &Catalog{
		periods:  make(map[string]domain.Period, len(f.Periods)),
		criteria: make(map[domain.Aspect]string, len(f.Criteria)),
	}
	for key, text := range f.Criteria {
		a, err := domain.ParseAspect(key)
		if err != nil {
			return nil, fmt.Errorf("criteria: %w", err)
		}
		c.criteria[a] = text
	}
	for _, p := range f.Periods {
		if p.Name == "" {
			return nil, fmt.Errorf("period without a name")
		}
		if _, dup := c.periods[p.Name]; dup {
			return nil, fmt.Errorf("duplicate period %q", p.Name)
		}
		period := domain.Period{Name: p.Name, Summary: p.Summary, Aspects: make(map[domain.Aspect]string, len(p.Aspects))}
		for key, text := range p.Aspects {
			a, err := domain.ParseAspect(key)
			if err != nil {
				return nil, fmt.Errorf("period %q: %w", p.Name, err)
			}
			period.Aspects[a] = text
		}
		c.order = append(c.order, p.Name)
		c.periods[p.Name] = period
	}
	if len(c.order) == 0 {
		return nil, fmt.Errorf("content has no periods")
	}
	return c, nil
}

// Names returns topic names in syllabus order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Period looks up a topic by exact name.
func (c *Catalog) Period(name string) (domain.Period, error) {
	p, ok := c.periods[name]
	if !ok {
		return domain.Period{}, domain.NewTopicNotFoundError(name)
	}
	return p, nil
}

// Criteria returns the modernization criteria for the aspect.
func (c *Catalog) Criteria(a domain.Aspect) string {
	return c.criteria[a]
}

// Has reports whether name is a known topic.
func (c *Catalog) Has(name string) bool {
	_, ok := c.periods[name]
	return ok
}
