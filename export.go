package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klokku/finplan/internal/config"
	"github.com/klokku/finplan/pkg/projection"
	"github.com/klokku/finplan/pkg/wizard"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const allTables = "all"

type exportOptions struct {
	input  string
	outDir string
	table  string
	locale string
}

func exportCmd() *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Compute a projection and write its CSV tables",
		Long: `Compute the 36-month projection for a plan file (YAML or JSON, same keys as
the HTTP API) and write the tables to the output directory. Without --input
the wizard's sample plan is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "plan file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVarP(&opts.table, "table", "t", allTables, "pl, cashflow, balance, bundle or all")
	cmd.Flags().StringVar(&opts.locale, "locale", "nl-BE", "locale of the printed summary")
	return cmd
}

func runExport(cmd *cobra.Command, opts exportOptions) error {
	currency, err := projection.NewCurrencyFormatter(opts.locale)
	if err != nil {
		return err
	}

	assumptions := wizard.DefaultAssumptions()
	if opts.input != "" {
		dto, err := config.LoadAssumptions(opts.input)
		if err != nil {
			return err
		}
		assumptions = projection.DTOToAssumptions(dto)
	}
	for _, issue := range projection.Validate(assumptions) {
		log.Warnf("assumption issue: %v", issue)
	}
	p := projection.Project(assumptions)

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	renderer := projection.NewCsvProjectionRenderer()
	switch opts.table {
	case allTables:
		for _, table := range projection.Tables {
			if err := writeTable(renderer, p, table, opts.outDir); err != nil {
				return err
			}
		}
	case projection.BundleExport:
		var b bytes.Buffer
		if err := renderer.RenderBundle(&b, p); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(opts.outDir, "financial_plan.zip"), b.Bytes()); err != nil {
			return err
		}
	default:
		table, err := projection.ParseTable(opts.table)
		if err != nil {
			return err
		}
		if err := writeTable(renderer, p, table, opts.outDir); err != nil {
			return err
		}
	}

	summary := projection.Summarize(p)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total sales (Y1-Y3): %s\n", currency.Format(summary.TotalSales))
	fmt.Fprintf(out, "EBIT Y1:             %s\n", currency.Format(summary.EBITYear1))
	fmt.Fprintf(out, "Cash end of Y3:      %s\n", currency.Format(summary.CashEndYear3))
	return nil
}

func writeTable(renderer projection.Renderer, p projection.Projection, table projection.Table, dir string) error {
	content, err := renderer.RenderTable(p, table)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, table.FileName()), []byte(content))
}

func writeFile(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Infof("Wrote %s", path)
	return nil
}
