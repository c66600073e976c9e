package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bowerhall/mitek/internal/logger"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "mitek",
	Short:         "Mitek, an autonomous chat participant",
	Long:          "Mitek drops quotes, replies and a marching song into chats at random intervals. Operators tune it through bot commands.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			os.Setenv("MITEK_DEBUG", "true")
		}
		logger.Setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	godotenv.Load()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(backupCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("mitek failed", "error", err)
		os.Exit(1)
	}
}
