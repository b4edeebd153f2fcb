package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"quizgame-service/internal/config"
	"quizgame-service/internal/domain"
)

// NewResultsCmd prints archived final results as JSON.
func NewResultsCmd(flags *globalFlags) *cobra.Command {
	var (
		quizID string
		gameID int
	)
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show archived results of finished games",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (quizID == "") == (gameID == 0) {
				return errors.New("pass exactly one of --quiz or --game")
			}
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			b, err := openBackends(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			archive, err := b.resultArchive()
			if err != nil {
				return err
			}

			var out any
			if gameID != 0 {
				out, err = archive.Get(cmd.Context(), domain.GameID(gameID))
			} else {
				out, err = archive.ListByQuiz(cmd.Context(), quizID)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "list results of every archived game of a quiz")
	cmd.Flags().IntVar(&gameID, "game", 0, "show the results of one game")
	return cmd
}
