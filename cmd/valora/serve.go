package main

import (
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/justestif/valora/internal/auth"
	"github.com/justestif/valora/internal/catalog"
	"github.com/justestif/valora/internal/config"
	"github.com/justestif/valora/internal/quizstore"
	"github.com/justestif/valora/internal/recommend"
	"github.com/justestif/valora/internal/spotify"
	"github.com/justestif/valora/internal/web"
	webfs "github.com/justestif/valora/web"
)

const sessionPurgeInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web application",
	Long: `Serve the questionnaire, recommendations and playlist saving in the
browser. Users sign in with Spotify; sessions last session_ttl.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides addr)")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireSpotify(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	spotifyAuth, err := auth.NewSpotifyAuth(auth.Credentials{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
	})
	if err != nil {
		return err
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	songs, closeCatalog, err := openCatalog(cfg, database)
	if err != nil {
		return err
	}
	defer closeCatalog()

	liked, err := catalog.LoadLikedIDs(cfg.Catalog.LikedPath)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d liked songs", len(liked))

	appClient, err := spotify.NewAppClient(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	if err != nil {
		return err
	}

	srvCfg := web.ServerConfig{
		Addr:        cfg.Addr,
		SessionTTL:  cfg.SessionTTL,
		Auth:        spotifyAuth,
		Clients:     web.SpotifyClients(spotifyAuth),
		Recommender: recommend.NewService(songs, appClient, recommend.WithLikedIDs(liked)),
	}

	if srvCfg.TemplatesFS, err = fs.Sub(webfs.TemplatesFS, "templates"); err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}
	if srvCfg.StaticFS, err = fs.Sub(webfs.StaticFS, "static"); err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	if database != nil {
		sessions := web.NewDBSessionStore(database, cfg.SessionTTL)
		go sessions.PurgeExpired(ctx, sessionPurgeInterval)
		srvCfg.Sessions = sessions
		srvCfg.Users = database.Users()
	} else {
		sessions := web.NewSessionStore(cfg.SessionTTL)
		go sessions.PurgeExpired(ctx, sessionPurgeInterval)
		srvCfg.Sessions = sessions
	}

	if cfg.RedisURL != "" {
		client, err := quizstore.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		srvCfg.Quizzes = quizstore.NewRedisStore(client, cfg.SessionTTL)
	} else {
		quizzes := quizstore.NewMemoryStore(cfg.SessionTTL)
		go quizzes.PurgeExpired(ctx, sessionPurgeInterval)
		srvCfg.Quizzes = quizzes
	}

	server, err := web.NewServer(srvCfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return server.Run(ctx)
}
