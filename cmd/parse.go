package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/high-focus/sourcing-cli/internal/analyze"
	"github.com/high-focus/sourcing-cli/internal/fetcher"
	"github.com/high-focus/sourcing-cli/internal/model"
)

var (
	parseFile   string
	parseURL    string
	parseOutput string
	parseFormat string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract normalized sourcing rows from a supplier spreadsheet",
	Long: `Parses a supplier spreadsheet with no schema contract: locates the header
row, classifies column roles, and normalizes rows into identifier, product
name, unit wholesale cost, and brand.

Examples:
  # Local file, rows as JSON on stdout
  sourcing-cli parse --file pricelist.xlsx

  # Supplier FTP drop, result to a file
  sourcing-cli parse --url ftp://supplier.example.com/drops/latest.xlsx --output rows.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := readInput(cmd, parseFile, parseURL)
		if err != nil {
			return err
		}

		th, err := loadThresholds()
		if err != nil {
			return err
		}

		result, err := analyze.ParseFile(data, th)
		if err != nil {
			return err
		}

		zap.L().Info("parse complete",
			zap.Int("rows", len(result.Rows)),
			zap.Int("row_count", result.RowCount),
		)

		switch parseFormat {
		case "json":
			return writeJSON(parseOutput, result)
		case "csv":
			return writeCSV(parseOutput, result.Rows)
		default:
			return eris.Errorf("unsupported format %q (want json or csv)", parseFormat)
		}
	},
}

// readInput loads workbook bytes from a local file or a remote URL.
func readInput(cmd *cobra.Command, file, url string) ([]byte, error) {
	switch {
	case file != "" && url != "":
		return nil, eris.New("only one of --file and --url may be set")
	case file != "":
		data, err := os.ReadFile(file)
		return data, eris.Wrapf(err, "read %s", file)
	case url != "":
		return fetcher.Fetch(cmd.Context(), url)
	default:
		return nil, eris.New("one of --file or --url is required")
	}
}

// writeJSON marshals v to the output path, or stdout when path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal output")
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}

// writeCSV writes the extracted rows as CSV to the output path, or stdout
// when path is empty.
func writeCSV(path string, rows []model.SourcingRow) error {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"identifier", "product_name", "wholesale_price", "brand"}); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for _, r := range rows {
		record := []string{
			r.Identifier,
			r.ProductName,
			strconv.FormatFloat(r.WholesalePrice, 'f', -1, 64),
			r.Brand,
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "flush csv")
}

func init() {
	parseCmd.Flags().StringVar(&parseFile, "file", "", "local spreadsheet path")
	parseCmd.Flags().StringVar(&parseURL, "url", "", "remote spreadsheet URL (http, https or ftp)")
	parseCmd.Flags().StringVar(&parseOutput, "output", "", "write result to file instead of stdout")
	parseCmd.Flags().StringVar(&parseFormat, "format", "json", "output format: json or csv")
	rootCmd.AddCommand(parseCmd)
}
