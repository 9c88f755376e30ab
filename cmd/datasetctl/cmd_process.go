package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dataset-artifact-service/internal/adapters/secondary/engine/builtin"
	"dataset-artifact-service/internal/adapters/secondary/filestore"
	"dataset-artifact-service/internal/core/domain"
	"dataset-artifact-service/internal/core/services"
)

var processFlags struct {
	out    string
	output string
}

var processCmd = &cobra.Command{
	Use:   "process <csv>",
	Short: "Run the builtin engine on a CSV file and write its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&processFlags.out, "out", "", "Directory to write artifacts to (required)")
	f.StringVarP(&processFlags.output, "output", "o", "json", "Report format: json or yaml")

	_ = processCmd.MarkFlagRequired("out")
}

type processReport struct {
	Source    string              `json:"source" yaml:"source"`
	Columns   int                 `json:"columns" yaml:"columns"`
	Rows      int                 `json:"rows" yaml:"rows"`
	Artifacts *domain.ArtifactSet `json:"result" yaml:"result"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	if processFlags.output != "json" && processFlags.output != "yaml" {
		return fmt.Errorf("unknown output format %q", processFlags.output)
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	table, err := services.Validate(raw)
	if err != nil {
		return err
	}

	store, err := filestore.New(processFlags.out, filestore.LayoutShared)
	if err != nil {
		return err
	}
	ns := store.NamespaceFor(uuid.New())
	input, err := store.Write(filepath.Join(ns, "source"), filepath.Base(args[0]), raw)
	if err != nil {
		return err
	}
	table.SourcePath = input

	set, err := services.NewDispatcher(builtin.New(store), store).
		Process(cmd.Context(), table, ns, domain.NameHints{})
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), processFlags.output, processReport{
		Source:    input,
		Columns:   table.ColumnCount(),
		Rows:      table.RowCount(),
		Artifacts: set,
	})
}

func writeReport(w io.Writer, format string, r processReport) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
