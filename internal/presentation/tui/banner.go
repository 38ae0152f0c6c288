package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner prints the chat-mode welcome header.
func PrintBanner() {
	p := termenv.ColorProfile()
	title := termenv.String("  Wellness Clinic Assistant").Foreground(p.Color("#34d399")).Bold()
	sub := termenv.String("  policy questions + appointment scheduling").Foreground(p.Color("#6ee7b7"))
	hint := termenv.String("  type a message, or ctrl-d to leave").Foreground(p.Color("#9ca3af")).Italic()

	fmt.Println()
	fmt.Println(title)
	fmt.Println(sub)
	fmt.Println(hint)
	fmt.Println()
}

// Prompt renders the user input prompt.
func Prompt() string {
	p := termenv.ColorProfile()
	return termenv.String("you> ").Foreground(p.Color("#60a5fa")).Bold().String()
}

// DecisionPrompt renders the prompt shown while a turn is suspended on a
// slot selection or confirmation.
func DecisionPrompt(label string) string {
	p := termenv.ColorProfile()
	return termenv.String(label + "> ").Foreground(p.Color("#fbbf24")).Bold().String()
}
