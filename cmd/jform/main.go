package main

import (
	"fmt"
	"os"

	"github.com/calumari/jform/internal/config"
	"github.com/calumari/jform/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	annotationUI = "ui"
	uiTerminal   = "terminal"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "jform [file]",
	Short: "Edit JSON arrays of objects as forms and tables",
	Long: `jform edits a JSON file holding an array of objects.

Each object is shown as a form of typed fields: numbers stay numbers and
booleans stay booleans however the text is edited. The table view shows every
object at once with sortable columns.

Run with a file to open it, or without arguments to resume the last session.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	Annotations:  map[string]string{annotationUI: uiTerminal},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}

		opts := logging.Options{Level: cfg.LogLevel, Verbose: verbose}
		// The editor owns the terminal.
		if cmd.Annotations[annotationUI] == uiTerminal {
			opts.File = cfg.LogFile
		}
		logger, err = logging.New(opts)
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded", zap.String("path", path))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runEdit,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/jform/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Write the result back to the file")
	tableCmd.Flags().StringVar(&tableSort, "sort", "", "Sort by column path")
	tableCmd.Flags().BoolVar(&tableDesc, "desc", false, "Sort descending")
	tableCmd.Flags().IntVar(&tableWidth, "width", 24, "Maximum column width")
	setCmd.Flags().StringVar(&setKind, "kind", "", "Read the value as this type (string, number, boolean, null, array, object)")
	restoreCmd.Flags().StringVarP(&restoreOutput, "output", "o", "", "Write the snapshot to this file instead of stdout")
	mcpCmd.Flags().StringVar(&mcpHTTP, "http", "", "Serve streamable HTTP on this address instead of stdio")

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(mcpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
