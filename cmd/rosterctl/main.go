package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-roster/internal/client"
	"hospital-roster/internal/roster"
	"hospital-roster/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	server   string
	token    string
	timeout  time.Duration
	logLevel string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Browse and administer the hospital roster",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(opts.logLevel, "console")
		},
	}

	root.PersistentFlags().StringVar(&opts.server, "server", envOr("ROSTER_SERVER", "http://localhost:8080"), "roster service base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("ROSTER_TOKEN"), "bearer token (defaults to $ROSTER_TOKEN)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "per-call timeout")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newListCmd(opts),
		newStatsCmd(opts),
		newAdminsCmd(opts),
		newAddAdminCmd(opts),
		newRemoveAdminCmd(opts),
		newStatusCmd(opts),
		newDeleteCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o *globalOptions) client() *client.Client {
	return client.New(o.server, client.StaticToken(o.token), client.WithTimeout(o.timeout))
}

func newListCmd(opts *globalOptions) *cobra.Command {
	var (
		criteria roster.Criteria
		minBeds  int
		maxBeds  int
		sortKey  string
		desc     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hospitals matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			maxSet := cmd.Flags().Changed("max-beds")
			if minBeds > 0 || maxSet {
				criteria.Capacity = &roster.CapacityRange{Min: minBeds}
				if maxSet {
					criteria.Capacity.Max = roster.AtMost(maxBeds)
				}
			}

			d := client.NewDashboard(opts.client())
			defer d.Close()
			if err := d.Refresh(cmd.Context()); err != nil {
				log.Warn().Err(err).Msg("Refresh incomplete")
			}

			out := cmd.OutOrStdout()
			if banner := d.Banner(); banner != "" {
				fmt.Fprintln(out, bannerStyle.Render(banner))
			}
			hospitals := roster.Sort(d.View(criteria), sortKey, desc)
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d of %d hospitals", len(hospitals), d.Store().Len())))
			return writeHospitals(out, hospitals)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&criteria.SearchTerm, "search", "s", "", "search name, location, city, admin and contact fields")
	f.StringVar(&criteria.Type, "type", "", "hospital type")
	f.StringVar(&criteria.Region, "region", "", "northeast, southeast, midwest, southwest or west")
	f.StringVar(&criteria.Status, "status", "", "hospital status")
	f.StringVar(&criteria.AdminFilter, "admin", roster.AdminFilterAny, "has_admin or no_admin")
	f.IntVar(&minBeds, "min-beds", 0, "minimum bed count")
	f.IntVar(&maxBeds, "max-beds", 0, "maximum bed count, unbounded when unset")
	f.StringVar(&sortKey, "sort", roster.SortByName, "name, beds, rating or status")
	f.BoolVar(&desc, "desc", false, "sort descending")
	return cmd
}

func newStatsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show roster statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := opts.client().Stats(cmd.Context())
			if err != nil {
				return err
			}
			return writeStats(cmd.OutOrStdout(), stats)
		},
	}
}

func newAdminsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "admins <hospital-id>",
		Short: "List the admins of a hospital",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admins, err := opts.client().HospitalAdmins(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeAdmins(cmd.OutOrStdout(), admins)
		},
	}
}

func newAddAdminCmd(opts *globalOptions) *cobra.Command {
	var draft roster.DraftAdmin

	cmd := &cobra.Command{
		Use:   "add-admin <hospital-id>",
		Short: "Add an admin to a hospital",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.ID = time.Now().UnixMilli()
			d := client.NewDashboard(opts.client())
			defer d.Close()

			res, err := d.SaveAdmins(cmd.Context(), args[0], []roster.DraftAdmin{draft}, nil, nil)
			if err != nil {
				return explain(cmd, err)
			}
			return writeSave(cmd.OutOrStdout(), res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&draft.FirstName, "first-name", "", "first name")
	f.StringVar(&draft.LastName, "last-name", "", "last name")
	f.StringVar(&draft.Email, "email", "", "email")
	f.StringVar(&draft.Phone, "phone", "", "phone")
	f.StringVar(&draft.Password, "password", "", "password, generated by the server when empty")
	f.BoolVar(&draft.SendCredentials, "send-credentials", false, "send login credentials to the new admin")
	return cmd
}

func newRemoveAdminCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-admin <hospital-id> <admin-id>...",
		Short: "Remove admins from a hospital",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := client.NewDashboard(opts.client())
			defer d.Close()

			res, err := d.SaveAdmins(cmd.Context(), args[0], nil, args[1:], nil)
			if err != nil {
				return explain(cmd, err)
			}
			return writeSave(cmd.OutOrStdout(), res)
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <hospital-id> <status>",
		Short: "Change the status of a hospital",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := roster.ParseStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q", args[1])
			}
			if err := opts.client().ChangeStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hospital %s is now %s\n", args[0], status)
			return nil
		},
	}
}

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <hospital-id>",
		Short: "Delete a hospital",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().DeleteHospital(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hospital %s deleted\n", args[0])
			return nil
		},
	}
}
