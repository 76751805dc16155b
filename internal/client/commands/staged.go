package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindflowai/mindflow/internal/client/errors"
	"github.com/mindflowai/mindflow/internal/client/output"
	"github.com/mindflowai/mindflow/internal/client/prompts"
)

var flagClear bool

var stagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "List or clear staged references",
	Long: `List the references waiting in the local staging store for 'mindflow push'.

With --clear every staged reference is dropped (asks for confirmation unless --yes).`,
	Args: cobra.NoArgs,
	Run:  runStaged,
}

func runStaged(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		errors.ExitWithError(err, "failed to open staging store")
		return
	}
	defer store.Close()

	ctx := cmd.Context()

	if flagClear {
		count, err := store.Count(ctx)
		if err != nil {
			errors.ExitWithError(err, "failed to count staged references")
			return
		}
		if count > 0 && !flagYes && !prompts.Confirm(os.Stdin, os.Stdout, fmt.Sprintf("This will clear %d staged references", count)) {
			output.PrintWarning("Aborted")
			return
		}
		if err := store.Clear(ctx); err != nil {
			errors.ExitWithError(err, "failed to clear staged references")
			return
		}
		if flagJSON {
			output.OutputJSON(map[string]int{"cleared": count}, nil)
		} else {
			output.PrintSuccess(fmt.Sprintf("Cleared %d staged references", count))
		}
		return
	}

	staged, err := store.List(ctx)
	if err != nil {
		errors.ExitWithError(err, "failed to list staged references")
		return
	}

	if flagJSON {
		output.OutputJSON(staged, nil)
		return
	}

	table := output.NewTableWriter()
	table.WriteHeader("PATH", "SIZE", "HASH", "STAGED")
	for _, s := range staged {
		ref := s.Reference()
		table.WriteRow(s.Path, strconv.Itoa(s.SizeBytes), ref.ShortHash(), s.StagedAt.Local().Format(time.DateTime))
	}
	if err := table.Flush(); err != nil {
		errors.ExitWithError(err, "failed to write output")
	}
}

func init() {
	stagedCmd.Flags().BoolVar(&flagClear, "clear", false, "Drop every staged reference")
	rootCmd.AddCommand(stagedCmd)
}
