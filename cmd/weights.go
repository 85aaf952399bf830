package cmd

import (
	"fmt"
	"strconv"

	"github.com/huangsam/changescore/internal/iocache"
	"github.com/huangsam/changescore/internal/outwriter"
	"github.com/huangsam/changescore/schema"
	"github.com/spf13/cobra"
)

// weightsCmd manages per-package base weights.
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Manage per-package base weights",
	Long: `Manage the base number of points awarded to any change of a package.

Packages without a weight score the default points (100). A weight of 0 keeps
the changes of a package out of every report.

Subcommands:
  set  - Set the weight of a package
  list - Show every configured weight
  rm   - Remove the weight of a package

Examples:
  changescore weights set kernel-source 500
  changescore weights rm kernel-source`,
}

var weightsSetCmd = &cobra.Command{
	Use:     "set <package> <points>",
	Short:   "Set the weight of a package",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || points < 0 {
			return fmt.Errorf("points must be a non-negative integer (received %q)", args[1])
		}
		weight := schema.PackageWeight{Package: args[0], Points: points}
		if err := iocache.Manager.GetStore().SetPackageWeight(rootCtx, weight); err != nil {
			return err
		}
		cmd.Printf("Set weight of %s to %d\n", weight.Package, weight.Points)
		return nil
	},
}

var weightsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show every configured weight",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		weights, err := iocache.Manager.GetStore().ListPackageWeights(rootCtx)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteWeights(weights, cfg)
	},
}

var weightsRmCmd = &cobra.Command{
	Use:     "rm <package>",
	Short:   "Remove the weight of a package",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := iocache.Manager.GetStore().DeletePackageWeight(rootCtx, args[0]); err != nil {
			return err
		}
		cmd.Printf("Removed weight of %s\n", args[0])
		return nil
	},
}
