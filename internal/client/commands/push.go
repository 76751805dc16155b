package commands

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindflowai/mindflow/internal/client"
	"github.com/mindflowai/mindflow/internal/client/auth"
	"github.com/mindflowai/mindflow/internal/client/errors"
	"github.com/mindflowai/mindflow/internal/client/output"
	"github.com/mindflowai/mindflow/internal/models"
	"github.com/mindflowai/mindflow/internal/reference"
	"github.com/mindflowai/mindflow/internal/storage"
)

var flagBatchSize int

// errPartialBatch means the server accepted fewer references than were sent;
// the batch is left staged
var errPartialBatch = stderrors.New("batch partially accepted")

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload staged references to the server",
	Long: `Upload the references recorded with 'mindflow resolve --stage'.

References are sent in batches; each accepted batch is removed from the
staging store, so an interrupted push can simply be repeated.

Resolves server URL and token using normal precedence:
- URL: --url flag > MINDFLOW_URL env var > config file
- Token: --token flag > MINDFLOW_TOKEN env var > $HOME/.mindflow`,
	Args: cobra.NoArgs,
	Run:  runPush,
}

func runPush(cmd *cobra.Command, args []string) {
	if flagBatchSize < 1 {
		errors.ExitWithCode(errors.ExitInvalidArguments, "--batch-size must be at least 1")
		return
	}

	serverURL, err := cfg.ResolveURL()
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
		return
	}

	// A missing HOME only disables the stored-token fallback here
	tokenStore, _ := auth.NewTokenStore()
	token, err := auth.ResolveToken(cfg.Token, tokenStore)
	if err != nil {
		errors.ExitWithError(err, "failed to resolve authorization token")
		return
	}
	if token == "" {
		errors.ExitWithCode(errors.ExitAuthError, "no authorization token configured. Run 'mindflow login' to authenticate")
		return
	}

	store, err := openStore()
	if err != nil {
		errors.ExitWithError(err, "failed to open staging store")
		return
	}
	defer store.Close()

	c := client.NewClient(serverURL, token, cfg.Timeout, logger)
	pushed, err := pushStaged(cmd.Context(), c, store, flagBatchSize)
	if err != nil {
		var statusErr *client.StatusError
		if stderrors.As(err, &statusErr) {
			errors.HandleHTTPError(statusErr.StatusCode, fmt.Sprintf("push failed after %d references: %s", pushed, statusErr.Error()))
			return
		}
		errors.ExitWithError(err, fmt.Sprintf("push failed after %d references", pushed))
		return
	}

	if flagJSON {
		output.OutputJSON(map[string]interface{}{
			"server": serverURL,
			"pushed": pushed,
		}, nil)
	} else if pushed == 0 {
		output.PrintSuccess("Nothing to push")
	} else {
		output.PrintSuccess(fmt.Sprintf("Pushed %d references to %s", pushed, serverURL))
	}
}

// pushStaged uploads staged references in batches and removes each batch the
// server fully accepted. A partially accepted batch stays staged and stops the push.
// Returns the number of references pushed before any error.
func pushStaged(ctx context.Context, c *client.Client, store storage.Store, batchSize int) (int, error) {
	staged, err := store.List(ctx)
	if err != nil {
		return 0, err
	}

	pushed := 0
	for start := 0; start < len(staged); start += batchSize {
		end := min(start+batchSize, len(staged))
		batch := staged[start:end]

		refs, keys := splitBatch(batch)
		result, err := c.PushReferences(ctx, refs)
		if err != nil {
			return pushed, err
		}
		if result.Accepted < len(refs) {
			return pushed, fmt.Errorf("%w: server accepted %d of %d references in batch %s",
				errPartialBatch, result.Accepted, len(refs), result.RequestID)
		}
		if err := store.Remove(ctx, keys...); err != nil {
			return pushed, fmt.Errorf("pushed batch %s but failed to unstage it: %w", result.RequestID, err)
		}
		pushed += len(batch)
	}
	return pushed, nil
}

func splitBatch(batch []*models.StagedReference) ([]reference.Reference, []string) {
	refs := make([]reference.Reference, 0, len(batch))
	keys := make([]string, 0, len(batch))
	for _, s := range batch {
		refs = append(refs, s.Reference())
		keys = append(keys, s.AbsPath)
	}
	return refs, keys
}

func init() {
	pushCmd.Flags().IntVar(&flagBatchSize, "batch-size", 100, "References per upload request")
	rootCmd.AddCommand(pushCmd)
}
