package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hybridship/powersim/app"
	"github.com/hybridship/powersim/config"
	"github.com/hybridship/powersim/infra/logger"
	"github.com/hybridship/powersim/pkg/export"
)

var (
	demandPath string
	outPath    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a demand series and report fuel and dispatch results",
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringVarP(&demandPath, "demand", "d", "", "demand series CSV (demand_kw[,storage_kw])")
	runCmd.Flags().StringVarP(&outPath, "out", "o", "", "write timestep records to this .csv or .json file")
	_ = runCmd.MarkFlagRequired("demand")
	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	demand, storage, err := loadDemandCSV(demandPath)
	if err != nil {
		return fmt.Errorf("load demand: %w", err)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("run-command")
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	res, err := svc.Run(ctx, demand, storage)
	if err != nil {
		return err
	}
	logg.Infof("run %s: %d steps, %d unmet, total fuel %.2f kg",
		res.RunID, len(demand), res.UnmetSteps, res.Summary(svc.StepDuration()).TotalFuelKg)

	if outPath == "" {
		return nil
	}
	records := res.Records(svc.StartTime(time.Now().UTC()), svc.StepDuration())
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".json":
		return export.WriteJSON(f, records)
	default:
		return export.WriteCSV(f, records)
	}
}

// loadDemandCSV reads a demand series with an optional storage power column.
// A non-numeric first row is treated as a header.
func loadDemandCSV(path string) (demand, storage []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		d, perr := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if perr != nil {
			if i == 0 {
				continue
			}
			return nil, nil, fmt.Errorf("row %d: %w", i+1, perr)
		}
		demand = append(demand, d)
		if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
			s, perr := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
			if perr != nil {
				return nil, nil, fmt.Errorf("row %d: %w", i+1, perr)
			}
			storage = append(storage, s)
		}
	}
	if storage != nil && len(storage) != len(demand) {
		return nil, nil, fmt.Errorf("storage column covers %d of %d rows", len(storage), len(demand))
	}
	return demand, storage, nil
}
