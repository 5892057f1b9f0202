package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justestif/valora/internal/auth"
	"github.com/justestif/valora/internal/catalog"
	"github.com/justestif/valora/internal/config"
	"github.com/justestif/valora/internal/recommend"
	"github.com/justestif/valora/internal/spotify"
	"github.com/justestif/valora/internal/tui"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take the questionnaire in the terminal",
	Long: `Rate 20 words, then say how pleasant and how energetic you feel.
Prints the resulting mood. With --recommend, signs in to Spotify and lists
songs for the mood; --save also stores them in your mood playlist.`,
	Args: cobra.NoArgs,
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().Bool("recommend", false, "list songs for the mood")
	quizCmd.Flags().Bool("save", false, "save the songs to your Spotify playlist (implies --recommend)")
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	mood, err := tui.Run(ctx, nil)
	if errors.Is(err, tui.ErrAborted) {
		fmt.Println("Questionnaire cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Your mood: %s\n", mood)

	save, _ := cmd.Flags().GetBool("save")
	list, _ := cmd.Flags().GetBool("recommend")
	if !list && !save {
		return nil
	}
	if err := cfg.RequireSpotify(); err != nil {
		return err
	}

	cache, err := auth.DefaultTokenCache()
	if err != nil {
		return err
	}
	authenticator, err := auth.New(auth.Credentials{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
	}, cache, auth.WithOutput(os.Stdout))
	if err != nil {
		return err
	}
	api, err := authenticator.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	user := spotify.New(api)

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
	appClient, err := spotify.NewAppClient(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	if err != nil {
		return err
	}

	res, err := recommend.NewService(songs, appClient, recommend.WithLikedIDs(liked)).Recommend(ctx, mood, user)
	if err != nil {
		return err
	}

	fmt.Println(res.Message)
	ids := make([]string, len(res.Recommendations))
	for i, r := range res.Recommendations {
		ids[i] = r.ID
		fmt.Printf("%2d. %s - %s [%s]\n", i+1, r.Name, r.Artist, r.SuperGenre)
	}

	if !save || len(ids) == 0 {
		return nil
	}
	msg, err := recommend.SavePlaylist(ctx, user, ids, mood)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}
