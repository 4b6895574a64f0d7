/*
Copyright © 2026 gemrag authors
*/
package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"gemrag/src/core/filesearch"
	"gemrag/src/log"
)

var ingestWorkers int

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Index local files into file search stores",
	Long: `The ingest command uploads each file and imports it into the store named
after it, creating the store when needed. Files are processed concurrently.`,
	Args: cobra.MinimumNArgs(1),
	RunE: RunIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 4, "Number of files uploaded concurrently")
}

type ingestResult struct {
	path    string
	storeID string
	err     error
}

func RunIngest(cmd *cobra.Command, args []string) error {
	service, err := newFileSearchService()
	if err != nil {
		return err
	}

	results := ingestFiles(cmd.Context(), service, args, ingestWorkers)

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", r.path, r.err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK   %s -> %s\n", r.path, r.storeID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// ingestFiles uploads paths through a bounded worker pool. Results keep the
// order of paths.
func ingestFiles(ctx context.Context, service filesearch.Service, paths []string, workers int) []ingestResult {
	if ctx == nil {
		ctx = context.Background()
	}
	if workers <= 0 {
		workers = 1
	}

	results := make([]ingestResult, len(paths))
	bar := progressbar.Default(int64(len(paths)), "ingesting")

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		log.Error(fmt.Errorf("%v", p), "Ingest worker panic recovered")
	}))
	if err != nil {
		for i, path := range paths {
			results[i] = ingestResult{path: path, err: err}
		}
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		results[i].path = path

		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer bar.Add(1)

			storeID, err := service.UploadFile(ctx, path, filepath.Base(path))
			if err != nil {
				log.Error(err, "Failed to ingest file", "path", path)
			}
			results[i].storeID = storeID
			results[i].err = err
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			results[i].err = fmt.Errorf("failed to schedule upload: %w", err)
		}
	}
	wg.Wait()
	bar.Finish()

	return results
}
