package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/ai"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/chat"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/domain"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tui"
)

const agentComingSoon = "Agentic mode is coming soon."

func newChatCommand(rt *runtimeState) *cobra.Command {
	var mode, conversationID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the AI",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			m := domain.Mode(strings.ToLower(mode))
			if !m.Valid() {
				return fmt.Errorf("unknown mode %q (want chat, tool or agent)", mode)
			}
			a, err := rt.authenticator()
			if err != nil {
				return err
			}
			user, _, err := a.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			return rt.startChat(cmd.Context(), user, m, conversationID)
		}),
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(domain.ModeChat), "Chat mode: chat, tool or agent")
	cmd.Flags().StringVar(&conversationID, "conversation", "", "Resume the conversation with this ID")
	return cmd
}

// startChat runs the interactive loop for an authenticated user.
func (rt *runtimeState) startChat(ctx context.Context, user domain.User, mode domain.Mode, conversationID string) error {
	w := rt.errOut()
	if mode == domain.ModeAgent {
		fmt.Fprintln(w, tui.Warn(agentComingSoon))
		return nil
	}

	gen, err := rt.opts.NewGenerator(rt.cfg.AI, rt.log)
	if err != nil {
		return err
	}
	if rt.cfg.Database.URL == "" {
		fmt.Fprintln(w, tui.Warn("No database configured: this conversation will not be saved."))
	}
	st, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	service := chat.NewService(st)
	conv, err := service.GetOrCreateConversation(ctx, user.ID, conversationID, mode)
	if err != nil {
		return err
	}
	if conversationID != "" && conv.ID != conversationID {
		fmt.Fprintln(w, tui.Warn("Conversation "+conversationID+" was not found; started a new one."))
	}

	sess := chat.NewSession(service, gen, conv, ai.ToolSetForMode(mode), rt.log)
	rt.printConversation(sess)
	return rt.chatLoop(ctx, sess)
}

func (rt *runtimeState) printConversation(sess *chat.Session) {
	w := rt.errOut()
	conv := sess.Conversation()
	fmt.Fprintf(w, "\n%s %s\n", tui.Title("Conversation:"), conv.Title)
	fmt.Fprintln(w, tui.Muted("ID: "+conv.ID))
	fmt.Fprintln(w, tui.Muted("Mode: "+string(conv.Mode)))
	if tools := sess.Tools(); !tools.Empty() {
		fmt.Fprintln(w, tui.Muted("Tools: "+tools.Names()))
	}
	for _, m := range conv.Messages {
		switch m.Role {
		case domain.RoleUser:
			fmt.Fprintf(w, "%s %s\n", tui.Title("you>"), m.Content)
		case domain.RoleAssistant:
			fmt.Fprintf(w, "%s %s\n", tui.Success("ai>"), m.Content)
		}
	}
	fmt.Fprintln(w, tui.Muted("Type 'exit' to end the conversation."))
}

func (rt *runtimeState) chatLoop(ctx context.Context, sess *chat.Session) error {
	lr := rt.opts.NewLineReader()
	defer lr.Close()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := lr.Prompt("you> ")
		if err != nil {
			if aborted(err) {
				break
			}
			return err
		}
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if isExit(text) {
			break
		}
		lr.AppendHistory(text)

		fmt.Fprint(rt.out(), tui.Success("ai> "))
		_, err = sess.Send(ctx, text, func(chunk string) {
			fmt.Fprint(rt.out(), chunk)
		})
		fmt.Fprintln(rt.out())
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintln(rt.errOut(), tui.Error("Error: "+err.Error()))
		}
	}
	fmt.Fprintln(rt.errOut(), tui.Success("Goodbye from Eclipse AI Chat!"))
	return nil
}

func isExit(s string) bool {
	switch strings.ToLower(s) {
	case "exit", "quit", "/exit", "/quit":
		return true
	}
	return false
}
