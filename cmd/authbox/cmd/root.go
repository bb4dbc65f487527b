package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "authbox",
	Short: "AuthBox is a multi-factor verification kiosk",
	Long: `AuthBox drives an unattended identity-verification kiosk: a device-facing
REST server fronting the attached sensors, and a step-by-step verification
flow that walks a user through fingerprint, face, location, quiz, and
signature capture.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
