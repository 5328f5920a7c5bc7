package main

import (
	"github.com/spf13/cobra"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "Discover and list extraction units",
	RunE:  runUnits,
}

// unitListing is the YAML shape printed per unit.
type unitListing struct {
	Name       string   `yaml:"name"`
	Category   string   `yaml:"category"`
	Priority   int      `yaml:"priority"`
	Enabled    bool     `yaml:"enabled"`
	Operations []string `yaml:"operations"`
	DependsOn  []string `yaml:"depends_on,omitempty"`
	Source     string   `yaml:"source"`
}

func runUnits(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(false, 0)
	if err != nil {
		return err
	}
	if err := a.Discover(cmd.Context()); err != nil {
		return err
	}

	var listings []unitListing
	for _, v := range a.Registry().Units() {
		l := unitListing{
			Name:      v.Name,
			Category:  v.Category,
			Priority:  v.Priority,
			Enabled:   v.Enabled,
			DependsOn: v.DependsOn,
			Source:    v.Source,
		}
		for _, op := range v.Operations {
			l.Operations = append(l.Operations, op.Name)
		}
		listings = append(listings, l)
	}
	return printYAML(cmd.OutOrStdout(), listings)
}
