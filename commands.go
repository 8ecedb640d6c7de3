package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"tripform/internal/domain"
	"tripform/internal/services"

	"github.com/spf13/cobra"
)

var serialCmd = &cobra.Command{
	Use:   "serial",
	Short: "Inspect or change the document counter",
}

var serialGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the last issued serial",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSerials(cmd, func(ctx context.Context, svc services.SerialService) error {
			n, err := svc.Read(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		})
	},
}

var serialNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Issue and print the next serial",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSerials(cmd, func(ctx context.Context, svc services.SerialService) error {
			n, err := svc.Increment(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		})
	},
}

var serialSetCmd = &cobra.Command{
	Use:   "set <value>",
	Short: "Overwrite the counter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || value < 0 {
			return fmt.Errorf("invalid serial %q", args[0])
		}
		return withSerials(cmd, func(ctx context.Context, svc services.SerialService) error {
			return svc.Set(ctx, value)
		})
	},
}

func init() {
	serialCmd.AddCommand(serialGetCmd, serialNextCmd, serialSetCmd)
	submitCmd.Flags().String("user-agent", "", "user agent used to pick the share link template")
}

func withSerials(cmd *cobra.Command, fn func(context.Context, services.SerialService) error) error {
	ctx := cmd.Context()
	store, err := openStore(ctx, envFrom(ctx))
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, services.SerialService{Store: store, RequestID: "cli"})
}

var submitCmd = &cobra.Command{
	Use:   "submit <record.json>",
	Short: "Run one submission from a JSON trip record",
	Long: `Validates the record, issues a serial, renders and uploads the PDF, then prints
the outcome. The share link is printed instead of opened.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env := envFrom(ctx)

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}
	var rec domain.TripRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("parse record: %w", err)
	}

	store, err := openStore(ctx, env)
	if err != nil {
		return err
	}
	defer store.Close()

	uploader, err := newUploader(ctx, env)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opener := services.LinkOpenerFunc(func(_ context.Context, url string) error {
		_, err := fmt.Fprintln(cmd.ErrOrStderr(), "share:", url)
		return err
	})
	svc := newSubmissionService(env, store, uploader, opener)
	svc.RequestID = "cli"

	ua, _ := cmd.Flags().GetString("user-agent")
	outcome := svc.Submit(ctx, rec, ua)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		return err
	}
	if outcome.State != services.StateSucceeded {
		return fmt.Errorf("%s: %s", outcome.Notification.Title, outcome.Notification.Description)
	}
	return nil
}
