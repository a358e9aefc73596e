package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/solar-mining-viability/internal/reference"
)

// Catalog sections accepted by --section.
const (
	sectionAll       = "all"
	sectionRegions   = "regions"
	sectionTariffs   = "tariffs"
	sectionEquipment = "equipment"
	sectionPanels    = "panels"
)

func catalogCmd() *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the reference tables as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := reference.Load()
			if err != nil {
				return err
			}
			v, err := catalogSection(catalog.Export(), section)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), v)
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", sectionAll,
		"section to print: all, regions, tariffs, equipment or panels")
	return cmd
}

func catalogSection(export reference.Export, section string) (any, error) {
	switch section {
	case sectionAll:
		return export, nil
	case sectionRegions:
		return export.States, nil
	case sectionTariffs:
		return export.Tariffs, nil
	case sectionEquipment:
		return export.Equipment, nil
	case sectionPanels:
		return export.Panels, nil
	default:
		return nil, fmt.Errorf("unknown catalog section %q", section)
	}
}
