package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBorder  = lipgloss.Color("#4B5563")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorDanger)

	activeButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(colorPrimary).
				Padding(0, 2)

	inactiveButtonStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)
)

// confirmDialog is a yes/no prompt; No is preselected.
type confirmDialog struct {
	title       string
	message     string
	yesSelected bool
	confirmed   bool
}

func (d confirmDialog) Init() tea.Cmd { return nil }

func (d confirmDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	switch key.String() {
	case "left", "h":
		d.yesSelected = true
	case "right", "l":
		d.yesSelected = false
	case "y":
		d.confirmed = true
		return d, tea.Quit
	case "n", "esc", "q", "ctrl+c":
		d.confirmed = false
		return d, tea.Quit
	case "enter":
		d.confirmed = d.yesSelected
		return d, tea.Quit
	}
	return d, nil
}

func (d confirmDialog) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.title))
	b.WriteString("\n\n")
	b.WriteString(d.message)
	b.WriteString("\n\n")

	yes := inactiveButtonStyle.Render("Yes")
	no := inactiveButtonStyle.Render("No")
	if d.yesSelected {
		yes = activeButtonStyle.Render("Yes")
	} else {
		no = activeButtonStyle.Render("No")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yes, "  ", no))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("←/→ choose • enter confirm • y/n • esc cancel"))
	return boxStyle.Render(b.String()) + "\n"
}

func yesFlag() cli.Flag {
	return &cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"}
}

var interactive = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// confirm asks before a destructive action. Without a terminal the command
// must carry --yes.
func confirm(c *cli.Command, title, message string) error {
	if c.Bool("yes") {
		return nil
	}
	if !interactive() {
		return usagef("%s: pass --yes to confirm when not running in a terminal", strings.ToLower(title))
	}
	final, err := tea.NewProgram(confirmDialog{title: title, message: message}).Run()
	if err != nil {
		return fmt.Errorf("confirmation dialog: %w", err)
	}
	if d, ok := final.(confirmDialog); ok && d.confirmed {
		return nil
	}
	return domain.ErrNotConfirmed
}
