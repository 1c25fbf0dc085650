package aggregate

import (
	"fmt"
)

// Group names a concept and the attributes whose columns it concatenates.
type Group struct {
	Name       string   `json:"name" yaml:"name"`
	Attributes []string `json:"attributes" yaml:"attributes"`
}

// Grouping is an ordered list of concept groups.
type Grouping []Group

// Validate checks the grouping against the attribute universe: group names are
// unique and non-empty, every group has attributes, and every attribute of the
// universe belongs to exactly one group.
func (gr Grouping) Validate(universe []string) error {
	known := make(map[string]struct{}, len(universe))
	for _, n := range universe {
		known[n] = struct{}{}
	}

	groups := make(map[string]struct{}, len(gr))
	owner := make(map[string]string)
	for _, g := range gr {
		if g.Name == "" {
			return fmt.Errorf("grouping: empty group name")
		}
		if _, dup := groups[g.Name]; dup {
			return fmt.Errorf("grouping: duplicate group %q", g.Name)
		}
		groups[g.Name] = struct{}{}
		if len(g.Attributes) == 0 {
			return fmt.Errorf("grouping: group %q has no attributes", g.Name)
		}
		for _, a := range g.Attributes {
			if _, ok := known[a]; !ok {
				return fmt.Errorf("grouping: group %q names unknown attribute %q", g.Name, a)
			}
			if prev, taken := owner[a]; taken {
				return fmt.Errorf("grouping: attribute %q in groups %q and %q", a, prev, g.Name)
			}
			owner[a] = g.Name
		}
	}
	for _, n := range universe {
		if _, ok := owner[n]; !ok {
			return fmt.Errorf("grouping: attribute %q is in no group", n)
		}
	}
	return nil
}
