package cmd

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var healthAddr string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe a running relay's health endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 5 * time.Second}

		resp, err := client.Get(healthAddr + "/health")
		if err != nil {
			return fmt.Errorf("probe %s: %w", healthAddr, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("relay unhealthy: %d %s", resp.StatusCode, body)
		}

		fmt.Printf("relay at %s is healthy: %s\n", healthAddr, body)
		return nil
	},
}

func init() {
	healthCmd.Flags().StringVar(&healthAddr, "addr", "http://localhost:3016", "base URL of the relay to probe")
	rootCmd.AddCommand(healthCmd)
}
