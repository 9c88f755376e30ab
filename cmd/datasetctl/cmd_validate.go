package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dataset-artifact-service/internal/core/services"
)

var validateCmd = &cobra.Command{
	Use:   "validate <csv>",
	Short: "Check that a CSV file is well-formed and wide enough to process",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	table, err := services.Validate(raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d columns, %d rows\n", table.ColumnCount(), table.RowCount())
	return nil
}
