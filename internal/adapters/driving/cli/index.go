package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lattice/internal/core/domain"
)

var (
	indexSymbols bool
	indexLinks   bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path...]",
	Short: "Index files or directories into the graph",
	Long: `Reads the given files (directories are walked recursively), splits
them into overlapping chunks, embeds each chunk, and stores the result
in the graph. Unchanged files are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexSymbols, "symbols", false, "extract code symbols and link them")
	indexCmd.Flags().BoolVar(&indexLinks, "links", false, "extract referenced URLs and link them")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	inputs, err := collectInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		cmd.Println("Nothing to index.")
		return nil
	}

	cmd.Printf("Indexing %d files...\n", len(inputs))
	results := indexerService.IndexDocuments(ctx, inputs)

	var indexed []*domain.Document
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			cmd.Printf("  %s: %v\n", result.Path, result.Err)
			continue
		}
		indexed = append(indexed, result.Document)

		if indexSymbols {
			if _, err := indexerService.ExtractAndIndexSymbols(ctx, result.Document); err != nil {
				cmd.Printf("  %s: symbol extraction failed: %v\n", result.Path, err)
			}
		}
		if indexLinks {
			if _, err := indexerService.ExtractAndIndexResources(ctx, result.Document); err != nil {
				cmd.Printf("  %s: link extraction failed: %v\n", result.Path, err)
			}
		}
	}

	if err := indexerService.IndexDocumentRelations(ctx, indexed); err != nil {
		return fmt.Errorf("record document relations: %w", err)
	}

	cmd.Printf("Indexed %d files (%d failed).\n", len(indexed), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// collectInputs expands the arguments into document inputs, walking
// directories recursively. Hidden files and directories are skipped.
func collectInputs(args []string) ([]domain.DocumentInput, error) {
	var inputs []domain.DocumentInput
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			input, err := readInput(arg)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, input)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if strings.HasPrefix(d.Name(), ".") && path != arg {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			input, err := readInput(path)
			if err != nil {
				return err
			}
			inputs = append(inputs, input)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return inputs, nil
}

func readInput(path string) (domain.DocumentInput, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.DocumentInput{}, err
	}
	return domain.DocumentInput{
		Path:    filepath.ToSlash(path),
		Content: string(content),
		Metadata: map[string]any{
			"source_type": domain.SourceTypeFile.String(),
		},
	}, nil
}
