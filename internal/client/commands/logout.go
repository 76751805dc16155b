package commands

import (
	"github.com/spf13/cobra"

	"github.com/mindflowai/mindflow/internal/client/auth"
	"github.com/mindflowai/mindflow/internal/client/errors"
	"github.com/mindflowai/mindflow/internal/client/output"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	Long: `Remove the token stored in $HOME/.mindflow.

This operation is idempotent - it succeeds even if no token is stored.`,
	Args: cobra.NoArgs,
	Run:  runLogout,
}

func runLogout(cmd *cobra.Command, args []string) {
	store, err := auth.NewTokenStore()
	if err != nil {
		errors.ExitWithError(err, "")
		return
	}

	if err := store.Delete(); err != nil {
		errors.ExitWithError(err, "failed to remove token")
		return
	}

	if flagJSON {
		output.OutputJSON(map[string]bool{"logged_out": true}, nil)
	} else {
		output.PrintSuccess("Logged out successfully")
	}
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
