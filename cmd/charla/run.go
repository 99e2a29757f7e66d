package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/charlabot/charla/internal/logutil"
)

// newRunCmd handles one message from the command line and prints the reply.
// Useful for trying routing and tools without a bot token.
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Handle a single message and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(flagString(cmd, "message"))
			if text == "" && len(args) > 0 {
				text = strings.TrimSpace(strings.Join(args, " "))
			}
			if text == "" {
				data, err := os.ReadFile("/dev/stdin")
				if err == nil {
					text = strings.TrimSpace(string(data))
				}
			}
			if text == "" {
				return fmt.Errorf("missing --message (or stdin)")
			}

			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			orch, err := orchestratorFromViper(logger)
			if err != nil {
				return err
			}

			timeout := flagDuration(cmd, "timeout")
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			userID := flagInt64(cmd, "user-id")
			reply := orch.HandleMessage(ctx, userID, flagString(cmd, "user-name"), text)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().String("message", "", "Message to handle (if empty, reads args or stdin).")
	cmd.Flags().Int64("user-id", 1, "User id for the conversation history.")
	cmd.Flags().String("user-name", "", "User display name.")
	cmd.Flags().Duration("timeout", 2*time.Minute, "Overall timeout.")

	return cmd
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return viper.GetString(name)
	}
	return v
}

func flagInt64(cmd *cobra.Command, name string) int64 {
	v, _ := cmd.Flags().GetInt64(name)
	return v
}

func flagDuration(cmd *cobra.Command, name string) time.Duration {
	v, _ := cmd.Flags().GetDuration(name)
	return v
}
