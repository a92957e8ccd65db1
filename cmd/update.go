package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/memoria/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update memoria to the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		checker := selfupdate.NewChecker(
			selfupdate.WithTimeout(2*time.Minute),
			selfupdate.WithLogger(e.log),
		)

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		out := cmd.OutOrStdout()
		if only, _ := cmd.Flags().GetBool("check"); only {
			res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
			if err != nil {
				return err
			}
			if !res.UpdateAvailable {
				fmt.Fprintf(out, "memoria %s is up to date.\n", version)
				return nil
			}
			fmt.Fprintf(out, "memoria %s is available (running %s).\n%s\n", res.LatestVersion, version, res.ReleaseURL)
			return nil
		}

		tag, err := checker.Update(ctx, &selfupdate.UpdateInput{CurrentVersion: version})
		if err == nil {
			fmt.Fprintf(out, "Updated to %s.\n", tag)
			return nil
		}

		if errors.Is(err, selfupdate.ErrDevBuild) {
			fmt.Fprintln(out, "Cannot update a development build. Install a release build first.")
			return nil
		}
		if errors.Is(err, selfupdate.ErrAlreadyLatest) {
			fmt.Fprintln(out, "Already running the latest version.")
			return nil
		}
		if errors.Is(err, selfupdate.ErrUnsupportedPlatform) {
			return fmt.Errorf("%w\n\nBuild from source with: go install github.com/abhisek/memoria@latest", err)
		}
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("%w\n\nTry running: sudo memoria update", err)
		}

		return err
	},
}

func init() {
	updateCmd.Flags().Bool("check", false, "Only report whether a newer release exists")
}
