package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"habitcoach/internal/scheduler"
)

var tickAt string

func init() {
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run one scheduler pass and print what it did",
		RunE:  runTick,
	}
	cmd.Flags().StringVar(&tickAt, "at", "", "Evaluate as of this RFC3339 time instead of now")

	RootCmd.AddCommand(cmd)
}

func runTick(cmd *cobra.Command, args []string) error {
	var opts []scheduler.Option
	if tickAt != "" {
		at, err := time.Parse(time.RFC3339, tickAt)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		opts = append(opts, scheduler.WithClock(func() time.Time { return at }))
	}

	svc, err := buildServices(loadConfig(), opts...)
	if err != nil {
		return err
	}
	defer svc.close()

	res, err := svc.scheduler.Tick(cmd.Context())
	if err != nil {
		return err
	}
	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
