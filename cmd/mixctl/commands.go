package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-paintmixer/internal/bus"
	"github.com/tendant/simple-paintmixer/internal/swatch"
	"github.com/tendant/simple-paintmixer/pkg/client"
	"github.com/tendant/simple-paintmixer/pkg/schema"
)

// RootCmd builds the mixctl command tree.
func RootCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:          "mixctl",
		Short:        "mixctl submits and tracks paint mixing jobs.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&server, "server", client.DefaultServer, "paint mixer API base URL")

	newClient := func() *client.Client { return client.New(server) }
	cmd.AddCommand(
		submitCmd(newClient),
		statusCmd(newClient),
		cancelCmd(newClient),
		inspectCmd(newClient),
		swatchCmd(newClient),
		watchCmd(),
	)
	return cmd
}

func submitCmd(newClient func() *client.Client) *cobra.Command {
	var m schema.ColoringModel
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new mixing job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := newClient().Submit(cmd.Context(), m)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Description)
			return nil
		},
	}
	cmd.Flags().IntVar(&m.Red, "red", 0, "red dye percentage")
	cmd.Flags().IntVar(&m.Black, "black", 0, "black dye percentage")
	cmd.Flags().IntVar(&m.White, "white", 0, "white dye percentage")
	cmd.Flags().IntVar(&m.Yellow, "yellow", 0, "yellow dye percentage")
	cmd.Flags().IntVar(&m.Blue, "blue", 0, "blue dye percentage")
	cmd.Flags().IntVar(&m.Green, "green", 0, "green dye percentage")
	return cmd
}

func statusCmd(newClient func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "status code",
		Short: "Show whether a job is pending or completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseCode(args[0])
			if err != nil {
				return err
			}
			resp, err := newClient().Status(cmd.Context(), code)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Description)
			return nil
		},
	}
}

func cancelCmd(newClient func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel code",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseCode(args[0])
			if err != nil {
				return err
			}
			resp, err := newClient().Cancel(cmd.Context(), code)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Description)
			return nil
		},
	}
}

func inspectCmd(newClient func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect code",
		Short: "Print a job's dyes, creation time and exact state as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseCode(args[0])
			if err != nil {
				return err
			}
			view, err := newClient().Inspect(cmd.Context(), code)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}
}

func swatchCmd(newClient func() *client.Client) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "swatch code",
		Short: "Download the colour swatch of a job",
		Long:  "Download the colour swatch of a job. The output format follows the file extension (png, jpg, gif, bmp, tiff).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseCode(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("swatch_%d.png", code)
			}
			body, err := newClient().Swatch(cmd.Context(), code)
			if err != nil {
				return err
			}
			defer body.Close()
			if err := swatch.Save(body, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default swatch_<code>.png)")
	return cmd
}

func watchCmd() *cobra.Command {
	var natsURL, subject string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print job lifecycle events published by the mixer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			nc, err := bus.Connect(natsURL, logger)
			if err != nil {
				return err
			}
			defer nc.Close()

			out := cmd.OutOrStdout()
			sub, err := nc.SubscribeJSON(subject, func(_ context.Context, data []byte) {
				var evt schema.JobLifecycleEvent
				if err := json.Unmarshal(data, &evt); err != nil {
					logger.Warn("decode lifecycle event", "err", err)
					return
				}
				fmt.Fprintln(out, formatEvent(evt))
			})
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", subject, err)
			}
			defer sub.Unsubscribe()

			<-cmd.Context().Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats", "nats://127.0.0.1:4222", "NATS server URL")
	cmd.Flags().StringVar(&subject, "subject", "paintmixer.jobs.lifecycle", "lifecycle event subject")
	return cmd
}

func formatEvent(evt schema.JobLifecycleEvent) string {
	at := time.Unix(evt.HappenedAt, 0).UTC().Format(time.RFC3339)
	return fmt.Sprintf("%s job=%d stage=%s dyes=%v", at, evt.Code, evt.Stage, evt.Dyes)
}

func parseCode(s string) (int, error) {
	code, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid job code %q: %w", s, err)
	}
	return code, nil
}
