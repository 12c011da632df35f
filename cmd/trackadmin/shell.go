package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	trackAdmin "github.com/MrEthical07/trackAdmin"
	"github.com/MrEthical07/trackAdmin/nav"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shellHelp = `commands:
  go <section>        dashboard, users, events, face-to-face, tracks, config
  user <id>           open a user profile
  view <name>         switch the open profile to info, cars or schedules
  search <text>       filter users by name or email
  back | forward      move through history
  where               print the current location
  login <user> <pw>   sign in again
  logout              sign out
  quit`

// shellView prints navigation targets. It also implements nav.Loader so
// loads print what they fetched.
type shellView struct {
	ctx     context.Context
	out     io.Writer
	console *trackAdmin.Console
	logger  *zap.Logger
}

func (v *shellView) RenderSection(name string) {
	fmt.Fprintf(v.out, "== %s ==\n", name)
}

func (v *shellView) RenderProfile(userID int64) {
	fmt.Fprintf(v.out, "== user %d ==\n", userID)
}

func (v *shellView) RenderProfileView(userID int64, view string) {
	switch view {
	case "cars":
		cars, err := v.console.Cars().ListByUser(v.ctx, userID)
		if err != nil {
			v.logger.Debug("load profile cars", zap.Error(err))
			return
		}
		printCars(v.out, cars)
	case nav.DefaultView:
	default:
		fmt.Fprintf(v.out, "-- %s --\n", view)
	}
}

func (v *shellView) LoadSection(ctx context.Context, name string) error {
	data, err := v.console.LoadSection(ctx, name)
	if err != nil {
		return err
	}
	switch data.Section {
	case trackAdmin.SectionUsers:
		printUsers(v.out, data.Users)
	case trackAdmin.SectionEvents:
		printEvents(v.out, data.Events)
	case trackAdmin.SectionFaceToFace:
		printFaceToFace(v.out, data.FaceToFace)
	case trackAdmin.SectionTracks:
		printTracks(v.out, data.Tracks)
	case trackAdmin.SectionConfig:
		printStatus(v.out, data.Status)
	default:
		printDashboard(v.out, data.Dashboard)
	}
	return nil
}

func (v *shellView) LoadUser(ctx context.Context, userID int64) error {
	u, err := v.console.Users().Get(ctx, userID)
	if err != nil {
		return err
	}
	printUsers(v.out, []trackAdmin.User{u})
	return nil
}

func (a *app) shellCmd() *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Browse the console interactively with back and forward",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runShell(cmd.Context(), start)
		},
	}
	cmd.Flags().StringVar(&start, "at", "", "initial location, e.g. events or user/42/cars")
	return cmd
}

func (a *app) runShell(ctx context.Context, start string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.console.Resume(ctx); err != nil && !errors.Is(err, trackAdmin.ErrNoSession) {
		return err
	}

	view := &shellView{ctx: ctx, out: a.out, console: a.console, logger: a.logger}
	history := nav.NewMemoryHistory()
	ctrl, err := nav.NewController(nav.Config{
		History: history,
		View:    view,
		Loader:  view,
		KV:      a.console.KV(),
		Logger:  a.logger,
	})
	if err != nil {
		return err
	}

	a.console.SetLogoutHook(func() {
		fmt.Fprintln(a.out, "signed out, use: login <user> <password>")
	})

	if a.console.Status().Authorized {
		a.report(ctrl.Init(ctx, start))
	} else {
		fmt.Fprintln(a.out, "not signed in, use: login <user> <password>")
	}

	sc := bufio.NewScanner(a.in)
	for {
		fmt.Fprintf(a.out, "%s> ", ctrl.Current())
		if !sc.Scan() {
			fmt.Fprintln(a.out)
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if quit := a.shellStep(ctx, ctrl, history, fields); quit {
			return nil
		}
	}
}

func (a *app) shellStep(ctx context.Context, ctrl *nav.Controller, history *nav.MemoryHistory, fields []string) (quit bool) {
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	switch fields[0] {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(a.out, shellHelp)
	case "go":
		a.report(ctrl.GoToSection(ctx, arg))
	case "user":
		id, err := parseID(arg)
		if err != nil {
			a.report(err)
			break
		}
		a.report(ctrl.GoToUserProfile(ctx, id))
	case "view":
		cur := ctrl.Current()
		if !cur.IsProfile() {
			fmt.Fprintln(a.out, "open a user first")
			break
		}
		a.report(ctrl.SetProfileView(ctx, arg, cur.UserID))
	case "search":
		users, err := a.console.Users().List(ctx)
		if err != nil {
			a.report(err)
			break
		}
		printUsers(a.out, trackAdmin.FilterUsers(users, strings.Join(fields[1:], " ")))
	case "back":
		payload, ok := history.Back()
		if !ok {
			fmt.Fprintln(a.out, "no earlier entry")
			break
		}
		a.report(ctrl.PopState(ctx, payload))
	case "forward":
		payload, ok := history.Forward()
		if !ok {
			fmt.Fprintln(a.out, "no later entry")
			break
		}
		a.report(ctrl.PopState(ctx, payload))
	case "where":
		fmt.Fprintf(a.out, "#%s\n", history.Fragment())
	case "login":
		if len(fields) != 3 {
			fmt.Fprintln(a.out, "usage: login <user> <password>")
			break
		}
		if _, err := a.console.Login(ctx, fields[1], fields[2]); err != nil {
			a.report(err)
			break
		}
		a.report(ctrl.Init(ctx, history.Fragment()))
	case "logout":
		a.report(a.console.Logout(ctx))
	default:
		fmt.Fprintf(a.out, "unknown command %q, try help\n", fields[0])
	}
	return false
}

// report prints errors the notice sink has not already shown.
func (a *app) report(err error) {
	if err == nil {
		return
	}
	var verr *trackAdmin.ValidationError
	if errors.As(err, &verr) || trackAdmin.IsTransient(err) {
		return
	}
	fmt.Fprintln(a.errOut, "error:", err)
}
