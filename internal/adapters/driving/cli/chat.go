package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatJSON bool

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Answer a question from the ingested documents",
	Long: `Retrieves the passages most similar to the question and asks the
generation model to answer from them only. When the passages do not contain
the answer, the model says so.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	answer, err := chatService.Answer(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	if chatJSON {
		return writeJSON(cmd.OutOrStdout(), answer)
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
	fmt.Fprintf(cmd.ErrOrStderr(), "(%d passages used)\n", answer.UsedDocs)
	return nil
}
