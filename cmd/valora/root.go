package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/justestif/valora/internal/catalog"
	"github.com/justestif/valora/internal/config"
	"github.com/justestif/valora/internal/db"
)

var rootCmd = &cobra.Command{
	Use:           "valora",
	Short:         "Mood questionnaire and music recommender",
	Long:          "Valora asks how you feel, works out your mood and recommends songs from its catalog to match.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")
		home, _ := os.UserHomeDir()
		return config.Init(path, home)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default .valora.yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "song catalog CSV (overrides catalog.path)")
	_ = viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openCatalog returns the configured song store and a function that releases
// it. database may be nil unless the catalog lives in PostgreSQL.
func openCatalog(cfg config.Config, database *db.DB) (catalog.Store, func(), error) {
	if cfg.Catalog.Source == config.SourcePostgres {
		if database == nil {
			return nil, nil, fmt.Errorf("%w: postgres catalog without a database", config.ErrInvalid)
		}
		return database.Songs(), func() {}, nil
	}

	songs, err := catalog.LoadCSV(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}
	store := catalog.NewMemoryStore(songs)
	fmt.Printf("Loaded %d songs from %s\n", store.Len(), cfg.Catalog.Path)

	if !cfg.Catalog.Watch {
		return store, func() {}, nil
	}

	watcher, err := catalog.NewWatcher(cfg.Catalog.Path, store)
	if err != nil {
		return nil, nil, fmt.Errorf("watching catalog: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return nil, nil, fmt.Errorf("watching catalog: %w", err)
	}
	return store, watcher.Stop, nil
}

// openDatabase connects and migrates when a database is configured.
// Returns nil without a database_url.
func openDatabase(ctx context.Context, cfg config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
