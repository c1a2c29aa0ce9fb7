package main

import (
	"bytes"
	"context"
	"errors"
	"ess/internal/di"
	"ess/internal/structures"
	"fmt"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"net/http"
	"net/url"
	"os"
	"strconv"
)

var (
	loginAppID     string
	loginPassword  string
	toggleLocation string
	monthYear      int
	monthMonth     int
	leaveType      string
	leaveFrom      string
	leaveTo        string
	leaveReason    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := di.InitApp(cliFlags())
		if err != nil {
			return err
		}
		defer cleanup()
		return app.Run(cmd.Context())
	},
}

var deviceIDCmd = &cobra.Command{
	Use:   "device-id",
	Short: "Print the stable device identifier, creating it on first use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		device, cleanup, err := di.InitDevice(cliFlags())
		if err != nil {
			return err
		}
		defer cleanup()
		return printJSON(cmd, device.DeviceInfo())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session state of the running daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodGet, "/session", nil, nil)
	},
}

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Configure the backend site",
}

var siteSetCmd = &cobra.Command{
	Use:   "set [url]",
	Short: "Validate and store the site URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodPost, "/session/site", nil, map[string]string{"url": args[0]})
	},
}

var siteResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the site URL and any credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodDelete, "/session/site", nil, nil)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with an app ID and app password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("ESS_APP_PASSWORD")
		}
		if password == "" {
			return errors.New("an app password is required (--password or ESS_APP_PASSWORD)")
		}
		return apiCall(cmd, http.MethodPost, "/session/login", nil, map[string]string{
			"appId":       loginAppID,
			"appPassword": password,
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodPost, "/session/logout", nil, nil)
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password [new-password]",
	Short: "Replace the app password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodPost, "/session/password", nil, map[string]string{"newPassword": args[0]})
	},
}

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Check-in state and attendance history",
}

var attendanceTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's check-ins and the next action",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodGet, "/attendance/today", nil, nil)
	},
}

var attendanceToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Check in, or check out when already checked in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodPost, "/attendance/toggle", nil, map[string]string{"location": toggleLocation})
	},
}

var attendanceMonthCmd = &cobra.Command{
	Use:   "month",
	Short: "Show the reconciled attendance of a month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		if monthYear != 0 {
			query.Set("year", strconv.Itoa(monthYear))
		}
		if monthMonth != 0 {
			query.Set("month", strconv.Itoa(monthMonth))
		}
		return apiCall(cmd, http.MethodGet, "/attendance/month", query, nil)
	},
}

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Leave types and applications",
}

var leaveTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the leave types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodGet, "/leave/types", nil, nil)
	},
}

var leaveApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Submit a leave application",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodPost, "/leave", nil, map[string]string{
			"leaveType": leaveType,
			"fromDate":  leaveFrom,
			"toDate":    leaveTo,
			"reason":    leaveReason,
		})
	},
}

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "List this year's holidays",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodGet, "/holidays", nil, nil)
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the employee profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodGet, "/profile", nil, nil)
	},
}

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Show the 50 most recent activity log entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd, http.MethodGet, "/updates", nil, nil)
	},
}

func cliFlags() *structures.CliFlags {
	return &structures.CliFlags{ConfigPath: configPath, DebugMode: debugMode}
}

func baseURL(cmd *cobra.Command) string {
	if !cmd.Flags().Changed("api") {
		if env := os.Getenv("ESS_API_URL"); env != "" {
			return env
		}
	}
	return apiURL
}

// apiCall sends one request to the daemon and prints the data of a
// successful response.
func apiCall(cmd *cobra.Command, method, path string, query url.Values, body any) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := newAPIClient(baseURL(cmd)).Do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	return printJSON(cmd, data)
}

func printJSON(cmd *cobra.Command, v any) error {
	var out bytes.Buffer
	if raw, ok := v.(json.RawMessage); ok {
		if len(raw) == 0 {
			return nil
		}
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return fmt.Errorf("format output: %w", err)
		}
	} else {
		encoded, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		out.Write(encoded)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return err
}
