package commands

import (
	"github.com/spf13/cobra"

	"github.com/mindflowai/mindflow/internal/client/auth"
	"github.com/mindflowai/mindflow/internal/client/errors"
	"github.com/mindflowai/mindflow/internal/client/output"
	"github.com/mindflowai/mindflow/internal/client/prompts"
)

var loginCmd = &cobra.Command{
	Use:     "login [token]",
	Aliases: []string{"auth"},
	Short:   "Store the authorization token",
	Long: `Store the authorization token used to authenticate with the Mindflow server.

The token can be given as an argument; otherwise it is read from an interactive
prompt. It is written verbatim to $HOME/.mindflow with 0600 permissions,
replacing any previous token.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

func runLogin(cmd *cobra.Command, args []string) {
	store, err := setToken(args, prompts.PromptToken)
	if err != nil {
		errors.ExitWithError(err, "")
		return
	}

	logger.Debug("Token stored", "path", store.Path())

	if flagJSON {
		output.OutputJSON(map[string]string{"token_file": store.Path()}, nil)
	} else {
		output.PrintSuccess("Successfully authorized with token")
	}
}

// setToken stores the token from args, or from prompt when args is empty.
// The home directory is checked before prompting so nothing is read or
// written when HOME is missing.
func setToken(args []string, prompt func() (string, error)) (*auth.TokenStore, error) {
	store, err := auth.NewTokenStore()
	if err != nil {
		return nil, err
	}

	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		token, err = prompt()
		if err != nil {
			return nil, err
		}
	}

	if err := store.Save(token); err != nil {
		return nil, err
	}
	return store, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
