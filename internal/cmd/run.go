package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verilab/harnessctl/internal/config"
	"github.com/verilab/harnessctl/internal/errors"
	"github.com/verilab/harnessctl/internal/harness"
	"github.com/verilab/harnessctl/internal/log"
)

var runCmd = &cobra.Command{
	Use:   "run [id]",
	Short: "Evaluate one data point or all of them",
	Long: `Evaluate a verification data point by ID, or every data point discovered
under harness/ with --all. The process exits nonzero if any evaluated data
point reports a failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		noCheckout, _ := cmd.Flags().GetBool("no-checkout")
		manifestDir, _ := cmd.Flags().GetString("manifest-dir")
		level, _ := cmd.Flags().GetString("log-level")

		if all == (len(args) == 1) {
			return fmt.Errorf("specify exactly one of <id> or --all")
		}

		root, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}

		logger := log.New(log.Config{Level: log.ParseLevel(level)})
		layout := config.DefaultLayout(root)
		settings := config.SettingsFromEnv(!noCheckout)

		orch := harness.New(settings, layout, manifestDir, logger)
		driver := harness.NewBatchDriver(orch, layout.HarnessDir, logger)

		if all {
			failed, total, err := driver.RunAll()
			if err != nil {
				return err
			}
			if failed > 0 {
				return errors.Newf(errors.ErrCodeVerificationFailed,
					"%d of %d data points failed", failed, total)
			}
			logger.Info("all data points passed", "total", total)
			return nil
		}

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("data point ID must be numeric, got %q", args[0])
		}
		return driver.RunOne(id)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("all", false, "Evaluate every data point discovered under harness/")
	runCmd.Flags().BoolP("no-checkout", "n", false, "Skip the revision pin/restore cycle and use the tree as-is")
	runCmd.Flags().String("manifest-dir", "", "Write per-service run manifests to this directory")
	runCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
}
