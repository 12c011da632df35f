package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	trackAdmin "github.com/MrEthical07/trackAdmin"
	"github.com/MrEthical07/trackAdmin/metrics/export/prometheus"
	"github.com/spf13/cobra"
)

// run executes one command line and always releases the console, since
// cobra skips post-run hooks when a command fails.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	root, a := newRootCmd(in, out, errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(in io.Reader, out, errOut io.Writer) (*cobra.Command, *app) {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:               "trackadmin",
		Short:             "Manage users, events, tracks and face-to-face races",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.apiURL, "api-url", "", "admin API base URL")
	flags.StringVar(&a.storeDir, "store-dir", "", "directory of the on-disk session store")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.dashboardCmd(),
		resourceCmd(a, "users", func() trackAdmin.Resource[trackAdmin.User] { return a.console.Users() }, printUsers),
		resourceCmd(a, "events", func() trackAdmin.Resource[trackAdmin.Event] { return a.console.Events() }, printEvents),
		resourceCmd(a, "tracks", func() trackAdmin.Resource[trackAdmin.Track] { return a.console.Tracks() }, printTracks),
		resourceCmd(a, "face-to-face", func() trackAdmin.Resource[trackAdmin.FaceToFace] { return a.console.FaceToFace() }, printFaceToFace),
		a.carsCmd(),
		a.schedulesCmd(),
		a.shellCmd(),
		a.metricsCmd(),
	)
	return root, a
}

func (a *app) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				p, err := readLine(a.in)
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = p
			}
			op, err := a.console.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "signed in as %s (%s)\n", op.Username, op.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password; read from stdin when empty")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an operator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.console.Register(cmd.Context(), username, password)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.console.Logout(cmd.Context())
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the API URL and authorization state",
		RunE: func(*cobra.Command, []string) error {
			printStatus(a.out, a.console.Status())
			return nil
		},
	}
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show collection counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			counts, err := a.console.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			printDashboard(a.out, counts)
			return nil
		},
	}
}

// resourceCmd builds the list/get/delete group of one collection.
func resourceCmd[T any](a *app, name string, resource func() trackAdmin.Resource[T], print func(io.Writer, []T)) *cobra.Command {
	cmd := &cobra.Command{Use: name, Short: "Manage " + name}

	list := &cobra.Command{
		Use:   "list",
		Short: "List " + name,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := resource().List(cmd.Context())
			if err != nil {
				return err
			}
			print(a.out, items)
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := resource().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			print(a.out, []T{item})
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return resource().Delete(cmd.Context(), id)
		},
	}

	cmd.AddCommand(list, get, del)
	return cmd
}

func (a *app) carsCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{Use: "cars", Short: "Browse cars"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List cars, optionally of one user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cars []trackAdmin.Car
				err  error
			)
			if userID > 0 {
				cars, err = a.console.Cars().ListByUser(cmd.Context(), userID)
			} else {
				cars, err = a.console.Cars().List(cmd.Context())
			}
			if err != nil {
				return err
			}
			printCars(a.out, cars)
			return nil
		},
	}
	list.Flags().Int64Var(&userID, "user", 0, "only cars owned by this user id")
	cmd.AddCommand(list)
	return cmd
}

func (a *app) schedulesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "schedules", Short: "Browse schedules"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			schedules, err := a.console.Schedules(cmd.Context())
			if err != nil {
				return err
			}
			printSchedules(a.out, schedules)
			return nil
		},
	})
	return cmd
}

func (a *app) metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print this process's metrics in Prometheus text format",
		RunE: func(*cobra.Command, []string) error {
			return writeMetrics(a.out, prometheus.NewExporter(a.console))
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
