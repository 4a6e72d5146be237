package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	ccerrors "github.com/rog555/ccpr/pkg/errors"
)

// version is set at build time with -ldflags.
var version = "dev"

// releaseSlug is the GitHub repository releases are published to.
const releaseSlug = "rog555/ccpr"

var (
	updateCheck bool
	updateForce bool
	updatePre   bool
	updateYes   bool
)

// updateCmd self-updates the binary from GitHub releases.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update ccpr to the latest release",
	Long: `Check GitHub releases for a newer version and replace the current
binary in place.

Examples:
  ccpr update           # Update after confirmation
  ccpr update --check   # Only report whether an update exists
  ccpr update --yes     # Update without confirmation
  ccpr update --force   # Reinstall even if up to date
  ccpr update --pre     # Include pre-release versions`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVarP(&updateCheck, "check", "c", false, "Check for updates without installing")
	updateCmd.Flags().BoolVarP(&updateForce, "force", "f", false, "Force update even when already up to date")
	updateCmd.Flags().BoolVarP(&updatePre, "pre", "p", false, "Include pre-release versions")
	updateCmd.Flags().BoolVarP(&updateYes, "yes", "y", false, "Skip confirmation prompt")
}

func runUpdate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	current, err := semver.NewVersion(version)
	if err != nil && !updateForce {
		return ccerrors.Wrapf(err, "cannot update a non-release build (%s), use --force", version)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{Prerelease: updatePre})
	if err != nil {
		return ccerrors.Wrap(err, "failed to initialize updater")
	}

	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(releaseSlug))
	if err != nil {
		return ccerrors.Wrap(err, "failed to check for updates")
	}
	if !found {
		return ccerrors.Newf("no release found for %s", releaseSlug)
	}

	upToDate := current != nil && latest.LessOrEqual(current.String())
	if upToDate && !updateForce {
		fmt.Printf("ccpr %s is up to date\n", version)
		return nil
	}

	if updateCheck {
		fmt.Printf("update available: %s -> %s\n", version, latest.Version())
		return nil
	}

	if !updateYes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Update to %s", latest.Version()),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			return nil
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return ccerrors.Wrap(err, "could not locate executable")
	}
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return ccerrors.Wrap(err, "update failed")
	}

	fmt.Printf("updated to %s\n", latest.Version())
	return nil
}
