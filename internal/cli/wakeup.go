package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tui"
)

var modeMenu = []tui.MenuItem{
	{Value: string(domain.ModeChat), Label: "Chat", Hint: "Chat with the AI"},
	{Value: string(domain.ModeTool), Label: "Tool Calling", Hint: "Chat with Google Search grounding"},
	{Value: string(domain.ModeAgent), Label: "Agentic Mode", Hint: "Coming soon"},
}

func newWakeupCommand(rt *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "wakeup",
		Short: "Wake up the AI service and pick how to interact",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			a, err := rt.authenticator()
			if err != nil {
				return err
			}
			user, _, err := a.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.errOut(), tui.Success(greet(user)))

			if !rt.opts.Interactive() {
				return errors.New("wakeup needs an interactive terminal; use 'eclipse chat --mode chat|tool' instead")
			}
			item, ok, err := tui.RunMenu("Select an option:", modeMenu, rt.opts.In, rt.errOut())
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			return rt.startChat(cmd.Context(), user, domain.Mode(item.Value), "")
		}),
	}
}
