package app

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// addConfigFlags registers the configuration source flags read by loadConfig
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to configuration file (YAML format)")
	cmd.Flags().String("env-file", "", "Path to a dotenv file loaded before DEVPULSE_ variables are read")
}

// confirm asks a yes/no question on the command's input
func confirm(cmd *cobra.Command, prompt string) bool {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (yes/no): ", prompt)

	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes", "y":
		return true
	default:
		return false
	}
}
