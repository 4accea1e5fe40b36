package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/auth"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/output"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/session"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tokenstore"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tui"
)

// ErrLoginCancelled is returned when the user interrupts a login in progress.
var ErrLoginCancelled = errors.New("login cancelled")

type loginFlags struct {
	serverURL string
	clientID  string
	noBrowser bool
	force     bool
}

func newLoginCommand(rt *runtimeState) *cobra.Command {
	var flags loginFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with the device authorization flow",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			return rt.login(cmd.Context(), flags)
		}),
	}
	cmd.Flags().StringVar(&flags.serverURL, "server-url", "", "Authorization server URL (default from ECLIPSE_SERVER_URL or config)")
	cmd.Flags().StringVar(&flags.clientID, "client-id", "", "OAuth client ID (default from ECLIPSE_CLIENT_ID or config)")
	cmd.Flags().BoolVar(&flags.noBrowser, "no-browser", false, "Do not offer to open the verification URL")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Re-authenticate without asking when already logged in")
	return cmd
}

func (rt *runtimeState) login(ctx context.Context, flags loginFlags) error {
	authCfg := rt.cfg.Auth
	if flags.serverURL != "" {
		authCfg.ServerURL = flags.serverURL
	}
	if flags.clientID != "" {
		authCfg.ClientID = flags.clientID
	}
	if flags.noBrowser {
		authCfg.NoBrowser = true
	}
	authCfg.ServerURL = strings.TrimSpace(authCfg.ServerURL)
	authCfg.ClientID = strings.TrimSpace(authCfg.ClientID)
	if err := authCfg.Validate(); err != nil {
		return err
	}

	guard, ts, err := rt.guard()
	if err != nil {
		return err
	}
	w := rt.errOut()

	if !flags.force {
		st, err := guard.Status()
		if err != nil {
			rt.log.Debugw("ignoring unreadable stored token", "error", err)
		} else if st.State == session.StateValid {
			again, err := rt.confirm("You're already logged in. Do you want to re-authenticate?", false)
			if err != nil {
				return err
			}
			if !again {
				fmt.Fprintln(w, "Login cancelled.")
				return nil
			}
		}
	}

	flowOpts := []auth.Option{
		auth.WithTimeout(authCfg.HTTPTimeout()),
		auth.WithPaths(authCfg.DeviceCodePath, authCfg.TokenPath),
		auth.WithLogger(rt.log),
	}
	flow := auth.NewDeviceFlow(authCfg.ClientID, authCfg.ServerURL, append(flowOpts, rt.opts.FlowOptions...)...)

	fmt.Fprintln(w, tui.Title("Requesting device authorization..."))
	grant, err := flow.RequestDeviceCode(ctx, authCfg.Scope)
	if err != nil {
		return fmt.Errorf("requesting device code: %w", err)
	}

	fmt.Fprintf(w, "\nVisit:      %s\n", tui.URL(grant.BrowserURL()))
	fmt.Fprintf(w, "Enter code: %s\n\n", tui.Code(grant.UserCode))

	if !authCfg.NoBrowser {
		open, err := rt.confirm("Open the verification URL in your default browser?", true)
		if err != nil {
			return err
		}
		if open {
			if err := rt.opts.OpenBrowser(grant.BrowserURL()); err != nil {
				fmt.Fprintln(w, tui.Warn(fmt.Sprintf("Could not open a browser (%v). Open the URL above manually.", err)))
			}
		}
	}

	tok, err := rt.pollForToken(ctx, flow, grant)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return ErrLoginCancelled
		}
		return err
	}

	if _, err := guard.Store(tok, authCfg.ServerURL); err != nil {
		return fmt.Errorf("authorized, but the token could not be saved to %s (%w): you will need to login again next time", tokenstore.Location(ts), err)
	}
	fmt.Fprintln(w, tui.Success("Login successful!"))
	fmt.Fprintln(w, tui.Muted("Token saved to "+tokenstore.Location(ts)))
	return nil
}

func (rt *runtimeState) pollForToken(ctx context.Context, flow *auth.DeviceFlow, grant auth.DeviceGrant) (auth.TokenResponse, error) {
	if rt.opts.Interactive() {
		return tui.RunLogin(ctx, grant, rt.opts.In, rt.errOut(), func(ctx context.Context, progress auth.ProgressFunc) (auth.TokenResponse, error) {
			flow.OnProgress(progress)
			return flow.PollForToken(ctx, grant)
		})
	}
	flow.OnProgress(tui.TextProgress(rt.errOut()))
	return flow.PollForToken(ctx, grant)
}

func newLogoutCommand(rt *runtimeState) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credential",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			guard, _, err := rt.guard()
			if err != nil {
				return err
			}
			w := rt.errOut()
			st, err := guard.Status()
			if err == nil && st.State == session.StateAbsent {
				fmt.Fprintln(w, "You are not logged in.")
				return nil
			}
			if !yes {
				ok, err := rt.confirm("Are you sure you want to logout?", false)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(w, "Logout cancelled.")
					return nil
				}
			}
			if err := guard.Clear(); err != nil {
				return fmt.Errorf("logging out: %w", err)
			}
			fmt.Fprintln(w, tui.Success("Logged out successfully."))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newWhoamiCommand(rt *runtimeState) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the stored credential belongs to",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			a, err := rt.authenticator()
			if err != nil {
				return err
			}
			user, _, err := a.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if f == output.FormatTable {
				output.WriteFields(rt.out(), []output.Field{
					{Key: "User", Value: user.Name},
					{Key: "Email", Value: user.Email},
					{Key: "ID", Value: user.ID},
				})
				return nil
			}
			return output.WriteObject(rt.out(), f, user)
		}),
	}
	cmd.Flags().StringVarP(&format, "output", "o", "", "Output format: table, json, yaml")
	return cmd
}

type statusView struct {
	State     string     `json:"state" yaml:"state"`
	Storage   string     `json:"storage" yaml:"storage"`
	Server    string     `json:"server,omitempty" yaml:"server,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Remaining string     `json:"remaining,omitempty" yaml:"remaining,omitempty"`
	Scope     string     `json:"scope,omitempty" yaml:"scope,omitempty"`
	Identity  string     `json:"identity,omitempty" yaml:"identity,omitempty"`
}

func newStatusCommand(rt *runtimeState) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a usable credential is stored",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			guard, ts, err := rt.guard()
			if err != nil {
				return err
			}
			st, err := guard.Status()
			if err != nil {
				return &session.ReauthRequiredError{Reason: err}
			}

			view := statusView{State: st.State.String(), Storage: tokenstore.Location(ts)}
			if st.Token != nil {
				view.ExpiresAt = st.Token.ExpiresAt
				view.Scope = st.Token.Scope
				view.Server = st.Token.ServerURL
				if st.Token.ExpiresAt != nil {
					view.Remaining = output.FormatRemaining(st.Remaining)
				}
				if id, ok := session.PeekIdentity(st.Token.AccessToken); ok {
					view.Identity = id.Label()
				}
			}

			if f != output.FormatTable {
				return output.WriteObject(rt.out(), f, view)
			}
			fields := []output.Field{
				{Key: "Status", Value: view.State},
				{Key: "Storage", Value: view.Storage},
			}
			if st.Token != nil {
				fields = append(fields,
					output.Field{Key: "Expires", Value: output.FormatTime(st.Token.Expiry())},
					output.Field{Key: "Remaining", Value: view.Remaining},
					output.Field{Key: "Scope", Value: view.Scope},
					output.Field{Key: "Server", Value: view.Server},
				)
				if view.Identity != "" {
					fields = append(fields, output.Field{Key: "Identity", Value: view.Identity})
				}
			}
			output.WriteFields(rt.out(), fields)
			if st.State != session.StateValid {
				fmt.Fprintln(rt.errOut(), tui.Muted("Run 'eclipse login' to authenticate."))
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&format, "output", "o", "", "Output format: table, json, yaml")
	return cmd
}

func greet(user domain.User) string {
	name := user.Name
	if name == "" {
		name = user.Email
	}
	return fmt.Sprintf("Welcome back, %s!", name)
}
