package commands

import (
	"github.com/spf13/cobra"
)

// funcsCmd represents the funcs command
var funcsCmd = &cobra.Command{
	Use:   "funcs <file>",
	Short: "List the functions defined in a file",
	Long: `Lists every function definition in a C or C++ file with its line,
cyclomatic complexity and number of dead blocks.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer(appConfig, logger, nil)
		if err != nil {
			return err
		}

		src, err := a.load(args[0], "")
		if err != nil {
			return err
		}
		report := a.summarize(src, args[0])

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		printFunctions(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	funcsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}
