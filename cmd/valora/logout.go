package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/valora/internal/auth"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the Spotify sign-in used by the quiz command",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cache, err := auth.DefaultTokenCache()
		if err != nil {
			return err
		}
		if err := cache.Delete(); err != nil {
			return err
		}
		fmt.Printf("Removed cached token at %s\n", cache.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
