// Package cli defines the deploypick command line surface: flags,
// environment and config-file handling, and exit-code mapping.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fleetops/deploypick/internal/app"
	"github.com/fleetops/deploypick/internal/git"
	"github.com/fleetops/deploypick/internal/workflow"
)

var (
	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "deploypick",
	Short: "Interactive deploy-branch cherry-pick helper",
	Long: `deploypick walks a release operator through publishing a deploy branch:
it verifies the upstream remote, resets the target branch to its upstream
counterpart, cherry-picks a selected set of commits (a contiguous range from
a source branch, or one SHA at a time), and pushes the result.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
}

// ExecuteContext is the main entry point called from main.go. It returns
// the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Trace every git command as it runs")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Rehearse the workflow without running git commands")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/deploypick/config.yaml)")
	rootCmd.PersistentFlags().StringP("repo", "C", "", "Path to the working copy (default current directory)")
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", "deploypick")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DEPLOYPICK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	app.SetDefaults(viper.GetViper())

	// The config file is optional.
	_ = viper.ReadInConfig()
}

func run(cmd *cobra.Command) error {
	viper.Set("verbose", verbose || viper.GetBool("verbose"))
	viper.Set("dry_run", dryRun || viper.GetBool("dry_run"))
	if repoDir, _ := cmd.Flags().GetString("repo"); repoDir != "" {
		viper.Set("repo_dir", repoDir)
	}

	cfg, err := app.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runner, err := app.NewRunner(cfg)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}

	return runner.Run(cmd.Context())
}

// exitCode maps a failed run to the process exit code: 1 for a declined
// confirmation, the collaborator's own code for a failed git command, and 1
// otherwise.
func exitCode(err error) int {
	if errors.Is(err, workflow.ErrDeclined) {
		return 1
	}

	var gitErr *git.Error
	if errors.As(err, &gitErr) {
		return gitErr.ExitCode()
	}

	return 1
}
