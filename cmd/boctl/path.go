package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/samirrijal/backoffice/internal/pkg/nestedpath"
)

func newPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Read and write JSON documents by dotted path",
	}
	cmd.AddCommand(newPathSetCmd(), newPathGetCmd(), newPathFlattenCmd())
	return cmd
}

func newPathSetCmd() *cobra.Command {
	var (
		numeric bool
		output  string
	)
	cmd := &cobra.Command{
		Use:   "set FILE PATH VALUE",
		Short: "Store VALUE at PATH, creating intermediate objects and arrays",
		Example: `  boctl path set seo.json openGraph.images[0].url https://example.com/a.png
  boctl path set product.json price 12.50 --numeric`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDoc(args[0])
			if err != nil {
				return err
			}
			doc = nestedpath.Set(doc, args[1], args[2], numeric)

			if output == "-" {
				return writeDoc(cmd.OutOrStdout(), doc)
			}
			if output == "" {
				output = args[0]
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()
			return writeDoc(f, doc)
		},
	}
	cmd.Flags().BoolVar(&numeric, "numeric", false, "Store VALUE as a number when it parses as one")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (defaults to in-place)")
	return cmd
}

func newPathGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get FILE PATH",
		Short: "Print the value stored at PATH",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDoc(args[0])
			if err != nil {
				return err
			}
			v, ok := nestedpath.Get(doc, args[1])
			if !ok {
				return fmt.Errorf("%s: nothing stored at %q", args[0], args[1])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
}

func newPathFlattenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flatten FILE",
		Short: "List every leaf of the document with its dotted path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDoc(args[0])
			if err != nil {
				return err
			}
			flat := nestedpath.Flatten(doc)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Path", "Value"})
			for _, p := range nestedpath.Paths(doc) {
				raw, _ := json.Marshal(flat[p])
				t.AppendRow(table.Row{p, string(raw)})
			}
			t.Render()
			return nil
		},
	}
}

func readDoc(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func writeDoc(w io.Writer, doc map[string]any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
