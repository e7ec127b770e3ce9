package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	modeFlag   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quasar",
		Short: "Quasar - stateless message-broker proxy",
		Long:  "A stateless proxy terminating the messaging gRPC surface and relaying to backend brokers",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (optional; RMQ_PROXY_HOME is consulted otherwise)")

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const version = "1.0.0"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the proxy version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("quasar", version)
		},
	}
}
