package commands

import (
	stderrors "errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mindflowai/mindflow/internal/client/auth"
	"github.com/mindflowai/mindflow/internal/client/errors"
	"github.com/mindflowai/mindflow/internal/client/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show token, server and staging information",
	Long: `Show where the token is stored, whether one is configured, the server URL
and how many references are staged for push.`,
	Args: cobra.NoArgs,
	Run:  runStatus,
}

// statusReport is the JSON shape of 'mindflow status'
type statusReport struct {
	TokenFile  string `json:"token_file"`
	Token      string `json:"token"`
	Server     string `json:"server"`
	StorageURI string `json:"storage_uri"`
	Staged     int    `json:"staged"`
}

func runStatus(cmd *cobra.Command, args []string) {
	tokenStore, err := auth.NewTokenStore()
	if err != nil && !stderrors.Is(err, auth.ErrHomeNotSet) {
		errors.ExitWithError(err, "")
		return
	}

	report := statusReport{Server: cfg.URL}
	if tokenStore != nil {
		report.TokenFile = tokenStore.Path()
	}

	token, err := auth.ResolveToken(cfg.Token, tokenStore)
	if err != nil {
		errors.ExitWithError(err, "failed to resolve authorization token")
		return
	}
	report.Token = auth.MaskToken(token)

	store, err := openStore()
	if err != nil {
		logger.Debug("Staging store unavailable", "error", err)
	} else {
		defer store.Close()
		report.StorageURI = storeURI()
		if report.Staged, err = store.Count(cmd.Context()); err != nil {
			errors.ExitWithError(err, "failed to count staged references")
			return
		}
	}

	if flagJSON {
		output.OutputJSON(report, nil)
		return
	}

	table := output.NewTableWriter()
	table.WriteRow("Token file:", orNone(report.TokenFile))
	table.WriteRow("Token:", orNone(report.Token))
	table.WriteRow("Server:", orNone(report.Server))
	table.WriteRow("Storage:", orNone(report.StorageURI))
	table.WriteRow("Staged:", strconv.Itoa(report.Staged))
	if err := table.Flush(); err != nil {
		errors.ExitWithError(err, "failed to write output")
	}
}

func storeURI() string {
	uri, err := cfg.StorageURI(homeDir())
	if err != nil {
		return ""
	}
	return uri.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
