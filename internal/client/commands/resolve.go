package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindflowai/mindflow/internal/client/errors"
	"github.com/mindflowai/mindflow/internal/client/output"
	"github.com/mindflowai/mindflow/internal/reference"
	"github.com/mindflowai/mindflow/internal/resolve"
	"github.com/mindflowai/mindflow/internal/storage"
)

var (
	flagOutput string
	flagStage  bool
	flagNoGit  bool
	flagJobs   int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>...",
	Short: "Resolve paths into file references",
	Long: `Resolve files and directories into references: type, SHA-256 content hash,
text, size and path.

A directory inside a git repository yields the files tracked in the git index
below it; any other directory is walked recursively. Files that cannot be read
or are not valid UTF-8 are skipped (see --verbose).

With --stage the references are also recorded in the local staging store for
a later 'mindflow push'.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) {
	format, err := output.ParseFormat(flagOutput)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
		return
	}
	if flagJSON {
		format = output.FormatJSON
	}

	jobs := cfg.Resolve.Jobs
	if cmd.Flags().Changed("jobs") {
		jobs = flagJobs
	}
	resolver := resolve.NewPathResolver(resolve.NewGitLister(), resolve.Options{
		UseGit: cfg.Resolve.Git && !flagNoGit,
		Jobs:   jobs,
	}, logger)

	refs, missing, err := resolveReferences(cmd.Context(), resolver, args)
	if err != nil {
		errors.ExitWithError(err, "failed to resolve paths")
		return
	}
	for _, path := range missing {
		output.PrintError(fmt.Sprintf("path not found: %s", path))
	}

	if err := output.WriteReferences(os.Stdout, refs, format); err != nil {
		errors.ExitWithError(err, "failed to write references")
		return
	}

	if flagStage && len(refs) > 0 {
		// The store is closed before any exit below, which skips deferred calls
		if err := stageReferences(cmd.Context(), openStore, refs); err != nil {
			errors.ExitWithError(err, "failed to stage references")
			return
		}
		if format == output.FormatTable {
			output.PrintSuccess(fmt.Sprintf("Staged %d references", len(refs)))
		}
	}

	if len(missing) > 0 {
		errors.ExitWithCode(errors.ExitInvalidArguments, fmt.Sprintf("%d path(s) not found: %s", len(missing), strings.Join(missing, ", ")))
	}
}

// resolveReferences builds references for every existing path and returns
// the paths that do not exist separately.
func resolveReferences(ctx context.Context, resolver *resolve.PathResolver, paths []string) ([]reference.Reference, []string, error) {
	var existing, missing []string
	for _, path := range paths {
		if resolver.ShouldResolve(path) {
			existing = append(existing, path)
		} else {
			missing = append(missing, path)
		}
	}
	if len(existing) == 0 {
		return nil, missing, nil
	}

	refs, err := resolver.References(ctx, existing...)
	if err != nil {
		return nil, missing, err
	}
	return refs, missing, nil
}

// stageReferences records refs in the store returned by open and closes it
func stageReferences(ctx context.Context, open func() (storage.Store, error), refs []reference.Reference) error {
	store, err := open()
	if err != nil {
		return fmt.Errorf("failed to open staging store: %w", err)
	}
	if err := store.Stage(ctx, refs); err != nil {
		store.Close()
		return err
	}
	return store.Close()
}

func init() {
	resolveCmd.Flags().StringVarP(&flagOutput, "output", "o", "table", "Output format: table, json, or yaml")
	resolveCmd.Flags().BoolVar(&flagStage, "stage", false, "Record the references in the staging store")
	resolveCmd.Flags().BoolVar(&flagNoGit, "no-git", false, "Walk directories even inside a git repository")
	resolveCmd.Flags().IntVarP(&flagJobs, "jobs", "j", 0, "Concurrent file reads (default GOMAXPROCS)")
	rootCmd.AddCommand(resolveCmd)
}
