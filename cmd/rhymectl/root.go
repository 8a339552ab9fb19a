package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/agenthands/rhymenet/internal/app"
	"github.com/agenthands/rhymenet/internal/config"
	"github.com/agenthands/rhymenet/internal/logger"
)

var (
	cfgFile  string
	logLevel string
	asJSON   bool

	rootCmd = &cobra.Command{
		Use:   "rhymectl",
		Short: "Explore rhyme networks from the command line",
		Long: `rhymectl runs rhyme network, lyric and figurative-language searches
directly against the configured store, and seeds stores from fixture files.`,
		SilenceUsage: true,
	}
)

// Execute runs the root command, cancelling on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")

	rootCmd.AddCommand(searchCmd, simpleCmd, figurativeCmd, lyricsCmd, facetsCmd, seedCmd)
}

// withApp builds the pipeline for one command and tears it down afterwards.
func withApp(ctx context.Context, fn func(*app.App) error) error {
	_ = godotenv.Load()

	cfg, err := config.Resolve(cfgFile)
	if err != nil {
		return err
	}
	lg, err := logger.New(logLevel, false)
	if err != nil {
		return err
	}
	defer lg.Sync()

	a, err := app.Build(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(rows [][]string) error {
	if len(rows) <= 1 {
		pterm.Info.Println("No results")
		return nil
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows)).Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}
