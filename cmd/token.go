package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/birdquiz/birdquiz/internal/auth"
	"github.com/birdquiz/birdquiz/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token USER",
	Short: "Issue an API bearer token for a user id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(config.Options{ConfigFile: cfgFile})
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		svc, err := auth.NewService(cfg.JWT.Secret, cfg.JWT.TTL())
		if err != nil {
			return fmt.Errorf("jwt.secret: %w", err)
		}
		tok, err := svc.Issue(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}
