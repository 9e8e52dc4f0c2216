package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(startSessionCmd)
	rootCmd.AddCommand(closeSessionCmd)
	rootCmd.AddCommand(costsCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List the session history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/sessions")
	},
}

var startSessionCmd = &cobra.Command{
	Use:   "start-session",
	Short: "Start a new session (or return the active one)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/sessions/start")
	},
}

var closeSessionCmd = &cobra.Command{
	Use:   "close-session",
	Short: "Close the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/sessions/close")
	},
}

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Show the cost breakdown of the viewed session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/sessions/costs")
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest a balanced 2v2 from the free players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/suggest/balanced")
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the latest state from the sheet backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/sync")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", strings.NewReader(""))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
