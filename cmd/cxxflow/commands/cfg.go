package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/cxxflow/pkg/cache"
)

// cfgCmd represents the cfg command
var cfgCmd = &cobra.Command{
	Use:   "cfg <file> <function>",
	Short: "Build the control flow graph of a function",
	Long: `Builds the Control Flow Graph (CFG) for a function defined in a C or C++ file.
Prints blocks, edges, dead blocks and cyclomatic complexity, or the graph as JSON
or Graphviz DOT.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		functionName := args[1]

		info, err := os.Stat(filePath)
		if err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, expected a file: %s", filePath)
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		dotOutput, _ := cmd.Flags().GetBool("dot")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		if jsonOutput && dotOutput {
			return fmt.Errorf("--json and --dot are mutually exclusive")
		}

		var graphs *cache.GraphCache
		if !noCache && !dotOutput {
			graphs = openCache(appConfig, logger)
			defer saveCache(appConfig, logger, graphs)
		}

		a, err := newAnalyzer(appConfig, logger, graphs)
		if err != nil {
			return err
		}
		src, err := a.load(filePath, "")
		if err != nil {
			return err
		}
		fn, err := a.function(src, functionName)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if dotOutput {
			return a.graph(fn).WriteDot(out, fn.Name)
		}

		cfgInfo := a.info(src, fn)
		if jsonOutput {
			return writeJSON(out, cfgInfo)
		}
		printCFGInfo(out, cfgInfo)
		return nil
	},
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cfgCmd.Flags().Bool("dot", false, "Output as Graphviz DOT")
	cfgCmd.Flags().Bool("no-cache", false, "Do not read or write the graph cache")
}
