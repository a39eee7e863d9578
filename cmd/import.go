package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/birdquiz/birdquiz/internal/dataset"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Validate a bird dataset JSON file and load it into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := dataset.LoadFile(args[0])
		if err != nil {
			return err
		}

		rt, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		st, err := rt.store.Birds().Import(cmd.Context(), ds, time.Now())
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		rt.log.Info("dataset imported",
			zap.String("file", args[0]),
			zap.Int("birds", st.Birds),
			zap.Int("images", st.Images))
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d birds and %d images.\n", st.Birds, st.Images)
		return nil
	},
}
