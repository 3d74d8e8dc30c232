// Terminal rendering for the chat REPL and session commands.
//
// Information Hiding:
// - Colors and labels hidden behind render helpers
// - Mapping of error kinds to user-facing messages hidden

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/richinex/parley/model"
	"github.com/richinex/parley/storage"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	modelLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

func roleLabel(role model.Role) string {
	if role == model.RoleModel {
		return modelLabelStyle.Render("Model:")
	}
	return userLabelStyle.Render("You:")
}

func renderSessions(w io.Writer, sessions []model.SessionInfo) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, hintStyle.Render("No saved sessions"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Sessions (%d)", len(sessions))))
	for _, s := range sessions {
		fmt.Fprintf(w, "  %s %s\n", idStyle.Render(fmt.Sprintf("#%d", s.ID)), s.Name)
	}
}

func renderMatches(w io.Writer, query string, matches []storage.SearchMatch) {
	if len(matches) == 0 {
		fmt.Fprintln(w, hintStyle.Render(fmt.Sprintf("No turns contain %q", query)))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Matches (%d)", len(matches))))
	for _, m := range matches {
		fmt.Fprintf(w, "  %s %s %s %s\n",
			idStyle.Render(fmt.Sprintf("#%d", m.SessionID)),
			m.Name,
			roleLabel(m.Role),
			m.Context)
	}
}

func renderTranscript(w io.Writer, name string, transcript model.Transcript) {
	if name != "" {
		fmt.Fprintln(w, headerStyle.Render(name))
	}
	if len(transcript) == 0 {
		fmt.Fprintln(w, hintStyle.Render("(no messages yet)"))
		return
	}
	for _, turn := range transcript {
		fmt.Fprintf(w, "%s %s\n", roleLabel(turn.Role), turn.Text())
	}
}

func renderError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error:")+" "+describeError(err))
}

// describeError turns controller errors into short user-facing text.
func describeError(err error) string {
	var validation *model.ValidationError
	var storeErr *model.StoreError
	var modelErr *model.ModelError

	switch {
	case errors.As(err, &validation):
		return validation.Error()
	case errors.Is(err, model.ErrSessionNotFound):
		return "session not found"
	case errors.As(err, &storeErr):
		return fmt.Sprintf("could not %s session: %v", storeErr.Op, storeErr.Err)
	case errors.As(err, &modelErr):
		if modelErr.Op == "title" {
			return fmt.Sprintf("could not name the session: %v", modelErr.Err)
		}
		return fmt.Sprintf("model request failed: %v", modelErr.Err)
	default:
		return err.Error()
	}
}

const helpText = `Commands:
  /new            start a new conversation
  /list           list saved sessions
  /select <name>  open the first session with this name
  /open <id>      open a session by id
  /rename <name>  rename the current session
  /delete         delete the current session
  /search <text>  find saved turns containing text
  /history        show the current conversation
  /help           show this help
  /quit           leave (also: exit, quit)`

func renderHelp(w io.Writer) {
	for _, line := range strings.Split(helpText, "\n") {
		fmt.Fprintln(w, hintStyle.Render(line))
	}
}
