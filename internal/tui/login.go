package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/auth"
)

// PollEventMsg forwards a polling progress event to the login model.
type PollEventMsg auth.PollEvent

// LoginDoneMsg reports the end of polling.
type LoginDoneMsg struct {
	Token auth.TokenResponse
	Err   error
}

type spinMsg struct{}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinInterval = 100 * time.Millisecond

// LoginModel shows the user code and a live wait indicator while the device flow polls.
// It never touches protocol state; quitting only cancels the polling context.
type LoginModel struct {
	grant     auth.DeviceGrant
	now       func() time.Time
	cancel    context.CancelFunc
	frame     int
	last      auth.PollEvent
	done      bool
	cancelled bool
	err       error
}

// NewLoginModel creates the progress model. cancel aborts polling when the user quits.
func NewLoginModel(grant auth.DeviceGrant, cancel context.CancelFunc, now func() time.Time) LoginModel {
	if now == nil {
		now = time.Now
	}
	return LoginModel{grant: grant, cancel: cancel, now: now}
}

func (m LoginModel) Init() tea.Cmd {
	return spin()
}

func spin() tea.Cmd {
	return tea.Tick(spinInterval, func(time.Time) tea.Msg { return spinMsg{} })
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, spin()
	case PollEventMsg:
		m.last = auth.PollEvent(msg)
		return m, nil
	case LoginDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			m.done = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

// Cancelled reports whether the user aborted the login.
func (m LoginModel) Cancelled() bool {
	return m.cancelled
}

// Remaining returns the time left before the device code expires.
func (m LoginModel) Remaining() time.Duration {
	d := m.grant.Deadline.Sub(m.now())
	if d < 0 {
		return 0
	}
	return d
}

func (m LoginModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n " + Title("Device authorization") + "\n\n")
	sb.WriteString(" Visit: " + URL(m.grant.VerificationURI) + "\n")
	sb.WriteString(" Enter code:\n")
	sb.WriteString(indent(Code(m.grant.UserCode), " ") + "\n\n")

	switch {
	case m.cancelled:
		sb.WriteString(" " + Warn("Login cancelled.") + "\n")
	case m.done && m.err == nil:
		sb.WriteString(" " + Success("Authorization successful!") + "\n")
	case m.done:
		sb.WriteString(" " + Error(m.err.Error()) + "\n")
	default:
		status := "Waiting for authorization"
		if m.last.Code == "slow_down" {
			status = "Server asked to slow down"
		}
		sb.WriteString(fmt.Sprintf(" %s %s... %s remaining\n",
			spinnerFrames[m.frame], status, formatClock(m.Remaining())))
		if m.last.Attempt > 1 {
			sb.WriteString(Muted(fmt.Sprintf(" attempt %d, polling every %s", m.last.Attempt, m.last.Interval)) + "\n")
		}
		sb.WriteString("\n " + Muted("ctrl+c: cancel") + "\n")
	}
	return sb.String()
}

// RunLogin runs poll behind the progress view and returns its result. poll receives a
// progress observer to forward events and a context the view cancels on ctrl+c.
func RunLogin(ctx context.Context, grant auth.DeviceGrant, in io.Reader, out io.Writer, poll func(context.Context, auth.ProgressFunc) (auth.TokenResponse, error)) (auth.TokenResponse, error) {
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewLoginModel(grant, cancel, nil), tea.WithInput(in), tea.WithOutput(out), tea.WithContext(ctx))

	type result struct {
		tok auth.TokenResponse
		err error
	}
	results := make(chan result, 1)
	go func() {
		tok, err := poll(pollCtx, func(ev auth.PollEvent) { p.Send(PollEventMsg(ev)) })
		results <- result{tok, err}
		p.Send(LoginDoneMsg{Token: tok, Err: err})
	}()

	final, runErr := p.Run()
	cancel()
	res := <-results

	if m, ok := final.(LoginModel); ok && m.Cancelled() {
		return auth.TokenResponse{}, context.Canceled
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) && res.err != nil {
		return auth.TokenResponse{}, fmt.Errorf("running login view: %w", runErr)
	}
	return res.tok, res.err
}

// TextProgress reports polling progress as plain lines, for output that is not a terminal.
func TextProgress(w io.Writer) auth.ProgressFunc {
	lastCode := ""
	return func(ev auth.PollEvent) {
		switch {
		case ev.State != auth.StatePending:
			return
		case ev.Attempt == 1:
			fmt.Fprintf(w, "Waiting for authorization (expires %s)...\n", ev.Deadline.Local().Format("15:04:05"))
		case ev.Code == "slow_down" && lastCode != "slow_down":
			fmt.Fprintf(w, "Server asked to slow down, polling every %s\n", ev.Interval)
		}
		lastCode = ev.Code
	}
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
