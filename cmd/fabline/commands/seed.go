package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate an empty database with demo projects and progress records",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Seed(context.Background(), time.Now()); err != nil {
			return err
		}

		log.Info().Msg("Database seeded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
