package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "letztalk",
	Short: "LetzTalk is an anonymous real-time session broker: random pairing, signaling relay and social rooms.",
	// ошибки уже залогированы в slog, usage на них не печатаем
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
