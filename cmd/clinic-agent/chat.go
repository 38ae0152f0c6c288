package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dima11235813/wellness-clinic-agent/internal/config"
	"github.com/Dima11235813/wellness-clinic-agent/internal/conversation"
	"github.com/Dima11235813/wellness-clinic-agent/internal/logging"
	"github.com/Dima11235813/wellness-clinic-agent/internal/presentation/tui"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the agent in an interactive terminal session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		// Keep the conversation surface clean; only real problems log.
		logger := logging.New(slog.LevelError, false)

		store, closeStore, err := buildStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		svc, err := buildService(store, cfg, logger)
		if err != nil {
			return err
		}

		session := &chatSession{
			svc:      svc,
			threadID: svc.NewThreadID(),
			render:   tui.NewRenderer(),
			in:       bufio.NewScanner(os.Stdin),
		}
		return session.run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

type chatSession struct {
	svc      *conversation.Service
	threadID string
	render   func(string) string
	in       *bufio.Scanner
	printed  int
}

func (c *chatSession) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	tui.PrintBanner()

	// Opening turn: no utterance yet, produces the greeting.
	res, err := c.svc.StartTurn(ctx, c.threadID, "")
	if err != nil {
		return err
	}
	c.show(res.State)

	for {
		for res.Interrupt != nil {
			res, err = c.resolveInterrupt(cmd, res.Interrupt)
			if err != nil {
				return err
			}
			c.show(res.State)
		}

		fmt.Print(tui.Prompt())
		if !c.in.Scan() {
			fmt.Println("\nTake care!")
			return c.in.Err()
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}

		res, err = c.svc.StartTurn(ctx, c.threadID, line)
		if err != nil {
			return err
		}
		c.show(res.State)
	}
}

// resolveInterrupt reads the user's decision for the pending interrupt
// and resumes the turn. Unparseable input re-asks instead of failing.
func (c *chatSession) resolveInterrupt(cmd *cobra.Command, in *domain.Interrupt) (*conversation.TurnResult, error) {
	ctx := cmd.Context()
	for {
		switch in.Kind {
		case domain.InterruptSelectTime:
			fmt.Print(tui.DecisionPrompt("pick a number, or \"none\""))
			if !c.in.Scan() {
				return nil, c.in.Err()
			}
			answer := strings.TrimSpace(strings.ToLower(c.in.Text()))

			slotID := ""
			if answer == domain.SlotNone {
				slotID = domain.SlotNone
			} else if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(in.Slots) {
				slotID = in.Slots[n-1].ID
			}
			if slotID == "" {
				fmt.Printf("Please answer with a number between 1 and %d, or \"none\".\n", len(in.Slots))
				continue
			}
			return c.svc.ResumeTurn(ctx, c.threadID, domain.ResumePayload{
				Kind:   domain.InterruptSelectTime,
				SlotID: slotID,
			})

		case domain.InterruptConfirmTime:
			fmt.Print(tui.DecisionPrompt("y/n"))
			if !c.in.Scan() {
				return nil, c.in.Err()
			}
			answer := strings.TrimSpace(strings.ToLower(c.in.Text()))

			var confirm *bool
			switch answer {
			case "y", "yes":
				confirm = domain.Ptr(true)
			case "n", "no":
				confirm = domain.Ptr(false)
			}
			if confirm == nil {
				fmt.Println("Please answer y or n.")
				continue
			}
			return c.svc.ResumeTurn(ctx, c.threadID, domain.ResumePayload{
				Kind:    domain.InterruptConfirmTime,
				Confirm: confirm,
			})

		default:
			return nil, fmt.Errorf("unsupported interrupt kind %q", in.Kind)
		}
	}
}

// show prints the assistant messages added since the last call.
func (c *chatSession) show(state *domain.State) {
	for ; c.printed < len(state.Messages); c.printed++ {
		msg := state.Messages[c.printed]
		if msg.Role != domain.RoleAssistant || msg.Text == "" {
			continue
		}
		fmt.Print(c.render(msg.Text))
	}
}
