package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hybridship/powersim/config"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Print the unit-commitment plan for a demand series",
	RunE:  printCommitment,
}

func init() {
	commitCmd.Flags().StringVarP(&demandPath, "demand", "d", "", "demand series CSV (demand_kw)")
	_ = commitCmd.MarkFlagRequired("demand")
	rootCmd.AddCommand(commitCmd)
}

func printCommitment(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	demand, _, err := loadDemandCSV(demandPath)
	if err != nil {
		return fmt.Errorf("load demand: %w", err)
	}
	ctrl, err := cfg.Plant.BuildController()
	if err != nil {
		return err
	}

	ids := ctrl.Topology().SwitchboardIDs()
	header := []string{"step", "demand_kw", "gensets_on", "unmet"}
	for _, id := range ids {
		header = append(header, fmt.Sprintf("sb%d", id))
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(header, "\t"))

	for i, st := range ctrl.Schedule(demand) {
		row := []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%.1f", demand[i]),
			fmt.Sprintf("%d", st.GensetsOn),
			fmt.Sprintf("%v", st.Unmet),
		}
		for _, id := range ids {
			parts := make([]string, len(st.Status[id]))
			for u, on := range st.Status[id] {
				parts[u] = fmt.Sprintf("%d", on)
			}
			row = append(row, strings.Join(parts, ""))
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(row, "\t"))
	}
	return nil
}
