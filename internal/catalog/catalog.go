// Package catalog holds the advisory item valuation table used for fairness
// signaling. Values never affect whether a trade executes.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Catalog struct {
	values       map[string]int64
	defaultValue int64
	fairMinPct   int64
}

type fileFormat struct {
	DefaultValue int64            `yaml:"default_value"`
	FairMinPct   int64            `yaml:"fair_min_pct"`
	Items        map[string]int64 `yaml:"items"`
}

func Defaults() *Catalog {
	return &Catalog{
		values:       map[string]int64{},
		defaultValue: 1,
		fairMinPct:   50,
	}
}

func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileFormat
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("items.yaml: %w", err)
	}
	c := Defaults()
	if f.DefaultValue > 0 {
		c.defaultValue = f.DefaultValue
	}
	if f.FairMinPct > 0 && f.FairMinPct <= 100 {
		c.fairMinPct = f.FairMinPct
	}
	for k, v := range f.Items {
		if k == "" || v <= 0 {
			continue
		}
		c.values[k] = v
	}
	return c, nil
}

func (c *Catalog) ItemValue(id string) int64 {
	if v, ok := c.values[id]; ok {
		return v
	}
	// Unknown or unpriced: low value so extreme offers don't skew the signal.
	return c.defaultValue
}

// OfferValue is coins plus the summed advisory value of the offered items.
func (c *Catalog) OfferValue(coins int64, itemRefs []string) int64 {
	total := coins
	for _, id := range itemRefs {
		total += c.ItemValue(id)
	}
	return total
}

// Balanced reports whether two offer values are within the configured ratio
// of each other (min/max >= fairMinPct%). Empty-for-empty counts as balanced;
// something-for-nothing does not.
func (c *Catalog) Balanced(va, vb int64) bool {
	if va == 0 && vb == 0 {
		return true
	}
	if va <= 0 || vb <= 0 {
		return false
	}
	minv, maxv := va, vb
	if minv > maxv {
		minv, maxv = maxv, minv
	}
	return minv*100 >= maxv*c.fairMinPct
}
