package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newApplyCmd(run sessionRunner) *cobra.Command {
	var interfaceName, file string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply an inbound XML document",
		Long:  "Apply an inbound XML document to every process of an interface in one transaction. Use --file - to read stdin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := readPayload(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(string(payload)) == "" {
				return fmt.Errorf("%s is empty", file)
			}
			return run(cmd, func(ctx context.Context, s *session) error {
				result, err := s.inbound.Apply(ctx, interfaceName, string(payload))
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			})
		},
	}
	cmd.Flags().StringVarP(&interfaceName, "interface", "i", "", "interface name")
	cmd.Flags().StringVarP(&file, "file", "f", "", "XML file to apply")
	_ = cmd.MarkFlagRequired("interface")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readPayload(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}

func newRenderCmd(run sessionRunner) *cobra.Command {
	var (
		processName string
		ids         []int64
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render outbound XML documents for header record IDs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, s *session) error {
				documents, err := s.outbound.RenderOutboundXML(ctx, processName, ids)
				if err != nil {
					return err
				}
				return writeDocuments(cmd.OutOrStdout(), outDir, processName, documents)
			})
		},
	}
	cmd.Flags().StringVarP(&processName, "interface", "i", "", "outbound process name")
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "header record IDs, comma separated")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory receiving one file per record (default: stdout)")
	_ = cmd.MarkFlagRequired("interface")
	_ = cmd.MarkFlagRequired("ids")
	return cmd
}

// writeDocuments prints documents in record ID order, or writes them to
// dir as <name>-<id>.xml when dir is set
func writeDocuments(w io.Writer, dir, name string, documents map[int64]string) error {
	ids := make([]int64, 0, len(documents))
	for id := range documents {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	if dir == "" {
		for _, id := range ids {
			if _, err := fmt.Fprintf(w, "<!-- record %d -->\n%s\n", id, documents[id]); err != nil {
				return err
			}
		}
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, id := range ids {
		path := filepath.Join(dir, fmt.Sprintf("%s-%d.xml", name, id))
		if err := os.WriteFile(path, []byte(documents[id]), 0o644); err != nil {
			return err
		}
		fmt.Fprintln(w, path)
	}
	return nil
}

func newListCmd(run sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured processes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, s *session) error {
				processes, err := s.configuration.ListProcesses(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "INTERFACE\tPROCESS\tORDER\tTABLE\tDIRECTION\tFIELDS")
				for _, p := range processes {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\n",
						p.InterfaceName, p.ProcessName, p.Order, p.TargetTable, p.Direction, len(p.Fields))
				}
				return tw.Flush()
			})
		},
	}
}

func newSeedCmd(run sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the configuration tables and store the default processes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, s *session) error {
				if err := s.migrate(ctx); err != nil {
					return err
				}
				n, err := s.seed(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d processes\n", n)
				return nil
			})
		},
	}
}
