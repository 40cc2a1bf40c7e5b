//go:build unix

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitessce/vitcat/internal/daemon"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the vitcat daemon",
	Long: `Control the vitcat daemon that answers catalog queries over a Unix socket.

Endpoints:
- GET /api/datasets        public dataset summaries
- GET /api/datasets/{id}   full view configuration
- GET /health`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the vitcat daemon",
	Long: `Start the vitcat daemon in foreground mode.

For background operation, use:
  nohup vitcat daemon start > /tmp/vitcat-daemon.log 2>&1 &`,
	RunE: startDaemon,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the vitcat daemon",
	RunE:  stopDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status",
	RunE:  statusDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}

func newDaemon() (*daemon.Daemon, error) {
	cfg, logger, err := loadSettings()
	if err != nil {
		return nil, err
	}
	d, err := daemon.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize daemon: %w", err)
	}
	return d, nil
}

func startDaemon(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	return d.Start()
}

func stopDaemon(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	if err := d.Stop(); err != nil {
		return err
	}
	fmt.Println("vitcat daemon stopped")
	return nil
}

func statusDaemon(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}

	status, err := d.GetStatus()
	if err != nil {
		return err
	}

	if !status.Running {
		switch {
		case status.PID > 0 && status.ErrorMessage != "":
			fmt.Printf("vitcat daemon process exists (PID: %d) but not responding\n", status.PID)
			fmt.Printf("  Socket: %s\n", status.SocketPath)
			fmt.Printf("  Error: %v\n", status.ErrorMessage)
		case status.PID > 0:
			fmt.Printf("vitcat daemon is not running (stale pidfile)\n")
			fmt.Printf("  Socket: %s\n", status.SocketPath)
		default:
			fmt.Printf("vitcat daemon is not running\n")
			fmt.Printf("  Socket: %s\n", status.SocketPath)
		}
		return nil
	}

	fmt.Printf("vitcat daemon running (PID: %d)\n", status.PID)
	fmt.Printf("  Socket:   %s\n", status.SocketPath)
	fmt.Printf("  Uptime:   %s\n", status.Uptime.Round(time.Second))
	fmt.Printf("  Datasets: %d\n", status.Datasets)
	return nil
}
