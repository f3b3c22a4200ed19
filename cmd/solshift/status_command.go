package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"solshift/internal/config"
	"solshift/internal/ipc"
	"solshift/internal/phase"
	"solshift/internal/solar"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and filter status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			statusResp := fetchStatus(ctx)

			fmt.Fprintln(stdout, renderSectionHeader("Daemon", colorize))
			if statusResp.Running {
				fmt.Fprintln(stdout, renderStatusLine("Solshift", statusOK, fmt.Sprintf("Running (pid %d)", statusResp.PID), colorize))
				if statusResp.FilterEnabled {
					fmt.Fprintln(stdout, renderStatusLine("Filter", statusOK, "Enabled", colorize))
				} else {
					fmt.Fprintln(stdout, renderStatusLine("Filter", statusInfo, "Disabled (daytime)", colorize))
				}
				if statusResp.LastError != "" {
					fmt.Fprintln(stdout, renderStatusLine("Last Error", statusWarn, statusResp.LastError, colorize))
				}
			} else {
				fmt.Fprintln(stdout, renderStatusLine("Solshift", statusWarn, "Not running (run `solshift start`)", colorize))
			}
			fmt.Fprintln(stdout)

			fmt.Fprintln(stdout, renderSectionHeader("Solar Schedule", colorize))
			rows := buildScheduleRows(statusResp, ctx.configValue())
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "Schedule unavailable (invalid location)")
				return nil
			}
			fmt.Fprintln(stdout, renderScheduleTable(rows))
			return nil
		},
	}
}

// fetchStatus returns daemon status, or an empty not-running response when
// the daemon socket is unreachable.
func fetchStatus(ctx *commandContext) *ipc.StatusResponse {
	statusResp := &ipc.StatusResponse{}
	client, err := ipc.Dial(ctx.socketPath())
	if err != nil {
		return statusResp
	}
	defer client.Close()
	if resp, statusErr := client.Status(); statusErr == nil && resp != nil {
		statusResp = resp
	}
	return statusResp
}

// buildScheduleRows prefers daemon-reported boundaries and falls back to a
// local almanac computation when the daemon is offline or mid-startup.
func buildScheduleRows(statusResp *ipc.StatusResponse, cfg *config.Config) [][2]string {
	if statusResp.Running && statusResp.Sunrise != "" {
		rows := [][2]string{
			{"Phase", statusResp.Phase},
			{"Sunrise (UTC)", statusResp.Sunrise},
			{"Sunset (UTC)", statusResp.Sunset},
		}
		if statusResp.NextWake != "" {
			rows = append(rows, [2]string{"Next Wake (UTC)", statusResp.NextWake})
		}
		return rows
	}

	if cfg == nil {
		return nil
	}
	almanac, err := solar.New(solar.Location{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Altitude:  cfg.Location.Altitude,
	})
	if err != nil {
		return nil
	}
	now := time.Now().UTC()
	day := almanac.Boundaries(now)
	current := phase.Classify(now, day.Sunrise, day.Sunset)
	return [][2]string{
		{"Phase", current.String()},
		{"Sunrise (UTC)", day.Sunrise.Format(time.RFC3339)},
		{"Sunset (UTC)", day.Sunset.Format(time.RFC3339)},
	}
}
