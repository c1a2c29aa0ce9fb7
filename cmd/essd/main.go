package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	debugMode  bool
	apiURL     string
	timeout    time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "essd",
	Short: "essd - employee self-service agent",
	Long: `essd owns the employee self-service session for one device: the site URL,
the app credentials, and the device identity the backend binds logins to.

Run "essd serve" to start the local JSON API. The other commands talk to a
running daemon, except device-id which reads the local store directly.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Enable debug logging to the console")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://127.0.0.1:8085", "Base URL of a running essd (or set ESS_API_URL env)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")

	siteCmd.AddCommand(siteSetCmd)
	siteCmd.AddCommand(siteResetCmd)

	loginCmd.Flags().StringVar(&loginAppID, "app-id", "", "App ID issued by HR (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "App password (or set ESS_APP_PASSWORD env)")
	loginCmd.MarkFlagRequired("app-id")

	attendanceToggleCmd.Flags().StringVar(&toggleLocation, "location", "", "Location recorded with the check-in")
	attendanceMonthCmd.Flags().IntVar(&monthYear, "year", 0, "Year (default: current)")
	attendanceMonthCmd.Flags().IntVar(&monthMonth, "month", 0, "Month 1-12 (default: current)")
	attendanceCmd.AddCommand(attendanceTodayCmd)
	attendanceCmd.AddCommand(attendanceToggleCmd)
	attendanceCmd.AddCommand(attendanceMonthCmd)

	leaveApplyCmd.Flags().StringVar(&leaveType, "type", "", "Leave type (required)")
	leaveApplyCmd.Flags().StringVar(&leaveFrom, "from", "", "First day, YYYY-MM-DD (required)")
	leaveApplyCmd.Flags().StringVar(&leaveTo, "to", "", "Last day, YYYY-MM-DD (required)")
	leaveApplyCmd.Flags().StringVar(&leaveReason, "reason", "", "Reason (required)")
	leaveCmd.AddCommand(leaveTypesCmd)
	leaveCmd.AddCommand(leaveApplyCmd)

	// Add commands to root
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(deviceIDCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(siteCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(passwordCmd)
	rootCmd.AddCommand(attendanceCmd)
	rootCmd.AddCommand(leaveCmd)
	rootCmd.AddCommand(holidaysCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(updatesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
