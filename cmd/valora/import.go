package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/valora/internal/catalog"
	"github.com/justestif/valora/internal/config"
	"github.com/justestif/valora/internal/lastfm"
	"github.com/justestif/valora/internal/spotify"
)

var importCmd = &cobra.Command{
	Use:   "import <songs.csv>",
	Short: "Label a song export and load it into the catalog",
	Long: `Read a song CSV export, derive moods from valence and energy and
super-genres from genres, optionally fetch missing audio features from
Spotify and missing genres from Last.fm, then infer the remaining labels
by k-means clustering.

The result is written to catalog.path, or upserted into PostgreSQL when
catalog.source is postgres.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().Bool("features", false, "fetch missing audio features from Spotify")
	importCmd.Flags().Bool("no-enrich", false, "skip the Last.fm genre lookup")
	importCmd.Flags().StringP("output", "o", "", "CSV to write (default catalog.path)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	songs, err := catalog.LoadCSV(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Read %d songs from %s\n", len(songs), args[0])

	if fetch, _ := cmd.Flags().GetBool("features"); fetch {
		if err := cfg.RequireSpotify(); err != nil {
			return err
		}
		client, err := spotify.NewAppClient(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
		if err != nil {
			return err
		}
		n, err := client.FetchAudioFeatures(ctx, songs)
		if err != nil {
			return err
		}
		fmt.Printf("Fetched audio features for %d songs\n", n)
	}

	fmt.Printf("Labelled %d moods from audio features\n", catalog.LabelFromFeatures(songs))
	fmt.Printf("Labelled %d super-genres from genres\n", catalog.LabelGenres(songs))

	skipEnrich, _ := cmd.Flags().GetBool("no-enrich")
	switch {
	case skipEnrich:
	case cfg.LastFM.APIKey == "":
		fmt.Println("No Last.fm API key set, skipping genre lookup")
	default:
		tags, err := lastfm.NewClient(cfg.LastFM.APIKey)
		if err != nil {
			return err
		}
		enricher := catalog.NewEnricher(tags, catalog.WithConcurrency(cfg.Import.Concurrency))
		n, err := enricher.Enrich(ctx, songs)
		if err != nil {
			return err
		}
		fmt.Printf("Found super-genres for %d songs on Last.fm\n", n)
	}

	stats, err := catalog.Infer(songs, catalog.InferConfig{NumClusters: cfg.Import.Clusters})
	if err != nil {
		return err
	}
	fmt.Printf("Inferred %d moods and %d super-genres from %d clusters\n", stats.Moods, stats.Genres, cfg.Import.Clusters)

	if cfg.Catalog.Source == config.SourcePostgres {
		database, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.Songs().UpsertBatch(ctx, songs); err != nil {
			return err
		}
		fmt.Printf("Saved %d songs to the database\n", len(songs))
		return nil
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = cfg.Catalog.Path
	}
	if err := catalog.SaveCSV(out, songs); err != nil {
		return err
	}
	fmt.Printf("Saved %d songs to %s\n", len(songs), out)
	return nil
}
