package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/cxxflow/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cxxflow configuration interactively",
	Long: `Guides you through setting up cxxflow configuration step by step.
Creates a config file with the source language, no-return functions, constant
folding and scan settings.`,
	// A broken existing config must not prevent writing a new one.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

// initAnswers holds the form values before they are applied to a Config.
type initAnswers struct {
	language      string
	noReturn      string
	foldConstants bool
	jobs          string
	exclude       string
	location      string
}

func runInit() error {
	cfg := config.DefaultConfig()
	answers := initAnswers{
		language:      string(cfg.Language),
		noReturn:      strings.Join(cfg.NoReturnFunctions, ", "),
		foldConstants: cfg.FoldConstants,
		jobs:          strconv.Itoa(cfg.Jobs),
		location:      "project",
	}

	// === SECTION 1: Analysis ===
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Source language").
				Description("Grammar used to parse source files").
				Options(
					huh.NewOption("Detect from file extension", string(config.LanguageAuto)),
					huh.NewOption("C", string(config.LanguageC)),
					huh.NewOption("C++", string(config.LanguageCPP)),
				).
				Value(&answers.language),
			huh.NewInput().
				Title("Functions that never return").
				Description("Comma-separated; used when a call has no declaration in the file").
				Placeholder("exit, abort, panic").
				Value(&answers.noReturn),
			huh.NewConfirm().
				Title("Fold constant conditions?").
				Description("Branches of if (0) and while (1) that can never run become dead").
				Affirmative("Yes").
				Negative("No").
				Value(&answers.foldConstants),
		),
		// === SECTION 2: Scanning ===
		huh.NewGroup(
			huh.NewInput().
				Title("Parallel jobs for scan").
				Placeholder("4").
				Validate(validateJobs).
				Value(&answers.jobs),
			huh.NewInput().
				Title("Extra exclude patterns (optional, press Enter to skip)").
				Description("Comma-separated gitignore-style patterns").
				Placeholder("third_party/, *_gen.c").
				Value(&answers.exclude),
		),
		// === SECTION 3: Config Location ===
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Project (./.cxxflow/config.yaml)", "project"),
					huh.NewOption("Global (~/.cxxflow/config.yaml)", "global"),
				).
				Value(&answers.location),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigPath()
	if answers.location == "global" {
		configPath = config.GlobalConfigPath()
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := answers.apply(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Language: %s\n", cfg.Language)
	fmt.Printf("No-return functions: %s\n", strings.Join(cfg.NoReturnFunctions, ", "))
	fmt.Printf("Fold constants: %t\n", cfg.FoldConstants)
	fmt.Printf("Jobs: %d\n", cfg.Jobs)
	if len(cfg.Exclude) > 0 {
		fmt.Printf("Exclude: %s\n", strings.Join(cfg.Exclude, ", "))
	}
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)
	return nil
}

// apply copies the answers into cfg.
func (a initAnswers) apply(cfg *config.Config) error {
	jobs, err := strconv.Atoi(strings.TrimSpace(a.jobs))
	if err != nil {
		return fmt.Errorf("invalid jobs %q: %w", a.jobs, err)
	}
	cfg.Language = config.Language(a.language)
	cfg.NoReturnFunctions = splitCommaList(a.noReturn)
	cfg.FoldConstants = a.foldConstants
	cfg.Jobs = jobs
	cfg.Exclude = splitCommaList(a.exclude)
	return nil
}

func validateJobs(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
