package relative

import (
	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

// Calculator derives relative expression records for target region tables
// against a prebuilt reference index.
type Calculator struct {
	index   Index
	groups  Groups
	targets map[string]struct{} // normalized names of the target tables
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithGroups sets the region-to-component mapping.
func WithGroups(groups Groups) Option {
	return func(c *Calculator) {
		if groups != nil {
			c.groups = groups
		}
	}
}

// WithTargets names the tables that form the target collection. A gene
// whose reference maximum originates from one of these tables peaks inside
// the structure under analysis rather than elsewhere in the organism.
func WithTargets(names []string) Option {
	return func(c *Calculator) {
		c.targets = make(map[string]struct{}, len(names))
		for _, n := range names {
			c.targets[normalizeName(n)] = struct{}{}
		}
	}
}

// NewCalculator creates a Calculator over the given reference index.
func NewCalculator(index Index, opts ...Option) *Calculator {
	c := &Calculator{
		index:   index,
		groups:  DefaultGroups(),
		targets: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute derives one relative record per input record.
//
// Relative is value / reference max when the gene is indexed and the max is
// positive, nil otherwise. MaxInTarget holds when the reference maximum
// originates from a member of the target collection. MaxInComponent
// additionally requires the maximum's source to map to the same component
// group as the table being processed.
func (c *Calculator) Compute(t model.Table) []model.RelativeRecord {
	currentGroup, _ := c.groups.GroupFor(t.Name)

	out := make([]model.RelativeRecord, 0, len(t.Records))
	for _, r := range t.Records {
		rec := model.RelativeRecord{Record: r}
		if ref, ok := c.index[r.Gene]; ok {
			if ref.Value > 0 {
				rel := r.Value / ref.Value
				rec.Relative = &rel
			}
			if _, inTarget := c.targets[normalizeName(ref.Source)]; inTarget {
				rec.MaxInTarget = true
				if maxGroup, ok := c.groups.GroupFor(ref.Source); ok && currentGroup != "" && maxGroup == currentGroup {
					rec.MaxInComponent = true
				}
			}
		}
		out = append(out, rec)
	}
	return out
}
