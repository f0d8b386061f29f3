package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lodestar/internal/wiring"
)

var ingestFlags struct {
	chunkSize    int
	chunkOverlap int
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Index documents (text or PDF) into the corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.IntVar(&ingestFlags.chunkSize, "chunk-size", 0, "Chunk size in bytes (default from config)")
	f.IntVar(&ingestFlags.chunkOverlap, "chunk-overlap", 0, "Chunk overlap in bytes (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestFlags.chunkSize > 0 {
		cfg.Ingest.ChunkSize = ingestFlags.chunkSize
	}
	if ingestFlags.chunkOverlap > 0 {
		cfg.Ingest.ChunkOverlap = ingestFlags.chunkOverlap
	}

	app, err := wiring.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Store.InitCollection(cmd.Context()); err != nil {
		return err
	}

	total := 0
	for _, path := range args {
		n, err := app.Ingest.IngestFile(cmd.Context(), path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks\n", path, n)
		total += n
	}
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d chunks from %d files\n", total, len(args))
	return nil
}
