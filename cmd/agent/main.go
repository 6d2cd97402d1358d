/*
main.go - Heartbeat agent entry point

PURPOSE:
  CLI wrapper around the agent package. One invocation sends one
  heartbeat, matching the cron/Task Scheduler deployment model; a
  built-in interval scheduler covers hosts without one.

USAGE:
  heartbeat-agent                 Send a single heartbeat
  heartbeat-agent --once          Same (legacy invocation contract)
  heartbeat-agent --test          Check server reachability
  heartbeat-agent --interval 1m   Keep sending every interval
  heartbeat-agent --device-id X   Override the configured device

CONFIGURATION:
  SERVER_URL, BEARER_TOKEN, DEVICE_ID, TIMEZONE environment variables
  (or their HEARTBEAT_AGENT_* equivalents / config file) - see config.

EXIT CODES:
  0  Heartbeat sent / server reachable
  1  Send or connection failure

SEE ALSO:
  - agent/agent.go: The client implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/farajallah/heartbeat/agent"
	"github.com/farajallah/heartbeat/config"
)

var (
	flagOnce     bool
	flagTest     bool
	flagDeviceID string
	flagInterval time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "heartbeat-agent",
	Short: "Heartbeat agent for the HeartBeat attendance tracker",
	Long: `heartbeat-agent reports one minute of presence per invocation.

Schedule it once per minute with cron or Task Scheduler:

    * * * * * heartbeat-agent

or let it schedule itself on hosts without one:

    heartbeat-agent --interval 1m`,
	RunE: run,
}

func init() {
	rootCmd.Flags().BoolVar(&flagOnce, "once", false, "send a single heartbeat and exit (the default)")
	rootCmd.Flags().BoolVar(&flagTest, "test", false, "check that the server is reachable and exit")
	rootCmd.Flags().StringVar(&flagDeviceID, "device-id", "", "override the configured device ID")
	rootCmd.Flags().DurationVar(&flagInterval, "interval", 0, "send every interval instead of once (e.g. 1m)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagDeviceID != "" {
		cfg.Agent.DeviceID = flagDeviceID
	}

	a, err := agent.New(cfg.Agent)
	if err != nil {
		return err
	}

	log.Printf("[Agent] Device ID: %s", cfg.Agent.DeviceID)
	log.Printf("[Agent] Server: %s", cfg.Agent.ServerURL)

	if flagTest {
		log.Println("[Agent] Testing connection to server...")
		if err := a.Test(cmd.Context()); err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		log.Println("[Agent] Connection successful")
		return nil
	}

	if flagInterval > 0 {
		a.Run(flagInterval)
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		a.Stop()
		return nil
	}

	// Default behavior: send one heartbeat. --once is accepted for the
	// legacy invocation contract but changes nothing.
	log.Println("[Agent] Sending heartbeat...")
	if err := a.Send(context.Background()); err != nil {
		return fmt.Errorf("failed to send heartbeat: %w", err)
	}
	log.Println("[Agent] Heartbeat sent successfully")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
