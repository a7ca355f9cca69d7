package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/l3aro/cxxflow/internal/log"
	"github.com/l3aro/cxxflow/internal/scanner"
	"github.com/l3aro/cxxflow/pkg/cache"
)

// ScanOutput represents the output of the scan command
type ScanOutput struct {
	RootDir         string       `json:"root_dir"`
	FilesScanned    int          `json:"files_scanned"`
	FunctionsCount  int          `json:"functions_count"`
	DeadBlocksCount int          `json:"dead_blocks_count"`
	MaxComplexity   int          `json:"max_complexity"`
	Files           []FileReport `json:"files"`
}

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Report complexity and dead code for a source tree",
	Long: `Scans a directory for C and C++ sources, builds the graph of every function
and reports cyclomatic complexity and dead blocks. Files matching .cxxflowignore
or the exclude patterns from the configuration are skipped.`,
	Args: cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("getting absolute path: %w", err)
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return fmt.Errorf("stat path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("path is not a directory: %s", path)
		}

		jobs := appConfig.Jobs
		if cmd.Flags().Changed("jobs") {
			jobs, _ = cmd.Flags().GetInt("jobs")
		}
		if jobs <= 0 {
			return fmt.Errorf("--jobs must be positive")
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		deadOnly, _ := cmd.Flags().GetBool("dead-only")
		noCache, _ := cmd.Flags().GetBool("no-cache")

		opts := scanner.DefaultOptions()
		opts.ExtraPatterns = appConfig.Exclude
		files, err := scanner.New(opts).Scan(absPath)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		logger.Info("found source files", "count", len(files), "root", absPath)

		var graphs *cache.GraphCache
		if !noCache {
			graphs = openCache(appConfig, logger)
			defer saveCache(appConfig, logger, graphs)
		}

		a, err := newAnalyzer(appConfig, logger, graphs)
		if err != nil {
			return err
		}

		spinner := log.NewProgressSpinner(fmt.Sprintf("Analyzing %d files...", len(files)))
		spinner.Start()
		reports, err := a.scan(cmd.Context(), files, jobs, func(done, total int) {
			spinner.Message(fmt.Sprintf("Analyzing files... %d/%d", done, total))
		})
		spinner.Stop()
		if err != nil {
			return err
		}

		out := summarizeScan(absPath, reports, deadOnly)
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), out)
		}
		printScan(cmd, out)
		return nil
	},
}

// summarizeScan totals the reports. With deadOnly, only functions with dead
// blocks are kept, though the totals still cover every function.
func summarizeScan(root string, reports []FileReport, deadOnly bool) ScanOutput {
	out := ScanOutput{RootDir: root, FilesScanned: len(reports), Files: []FileReport{}}
	for _, r := range reports {
		kept := r
		kept.Functions = []FunctionReport{}
		for _, fn := range r.Functions {
			out.FunctionsCount++
			out.DeadBlocksCount += fn.DeadBlocks
			if fn.Complexity > out.MaxComplexity {
				out.MaxComplexity = fn.Complexity
			}
			if !deadOnly || fn.DeadBlocks > 0 {
				kept.Functions = append(kept.Functions, fn)
			}
		}
		if len(kept.Functions) > 0 || r.Error != "" {
			out.Files = append(out.Files, kept)
		}
	}
	return out
}

func printScan(cmd *cobra.Command, out ScanOutput) {
	w := cmd.OutOrStdout()
	for _, r := range out.Files {
		if r.Error != "" {
			warnStyle.Fprintf(w, "%s: %s\n", r.Path, r.Error)
			continue
		}
		printFunctions(w, r)
	}
	fmt.Fprintln(w)
	headerStyle.Fprintf(w, "Scanned %d files, %d functions\n", out.FilesScanned, out.FunctionsCount)
	fmt.Fprintf(w, "Max complexity: %d\n", out.MaxComplexity)
	if out.DeadBlocksCount > 0 {
		warnStyle.Fprintf(w, "Dead blocks: %d\n", out.DeadBlocksCount)
	} else {
		fmt.Fprintln(w, "Dead blocks: 0")
	}
}

func init() {
	scanCmd.Flags().IntP("jobs", "n", 0, "Number of files analyzed in parallel (default from config)")
	scanCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	scanCmd.Flags().Bool("dead-only", false, "Only list functions with dead blocks")
	scanCmd.Flags().Bool("no-cache", false, "Do not read or write the graph cache")
}
