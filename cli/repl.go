package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/richinex/parley/chat"
	"github.com/richinex/parley/model"
)

// maxSearchResults caps /search output.
const maxSearchResults = 20

// REPL is the line-oriented presentation layer over a chat.Controller.
// It owns the single conversation State and redraws from it after each
// command.
type REPL struct {
	ctrl  *chat.Controller
	state chat.State
	out   io.Writer
}

// NewREPL starts a REPL on a new conversation.
func NewREPL(ctrl *chat.Controller, out io.Writer) *REPL {
	return &REPL{ctrl: ctrl, state: ctrl.StartNew(), out: out}
}

// State returns the current conversation snapshot.
func (r *REPL) State() chat.State {
	return r.state
}

// Run reads commands and messages from in until EOF, a quit command or
// ctx is cancelled. Cancellation is noticed while waiting for input.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	done := make(chan struct{})
	defer close(done)
	lines, errc := scanLines(in, done)

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.out, r.prompt())

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(r.out)
			return <-errc
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		if strings.HasPrefix(input, "/") {
			if quit := r.command(ctx, input); quit {
				return nil
			}
			continue
		}
		r.send(ctx, input)
	}
}

// scanLines feeds lines from in to the returned channel until EOF or done
// is closed. The scanner error is sent on errc before lines is closed.
func scanLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

func (r *REPL) prompt() string {
	if r.state.IsNew() {
		return "> "
	}
	return fmt.Sprintf("[%s] > ", r.state.SessionName)
}

func (r *REPL) send(ctx context.Context, text string) {
	wasNew := r.state.IsNew()

	fmt.Fprintf(r.out, "\n%s ", modelLabelStyle.Render("Model:"))
	next, err := r.ctrl.Send(ctx, r.state, text, func(fragment string) {
		fmt.Fprint(r.out, fragment)
	})
	fmt.Fprint(r.out, "\n\n")
	if err != nil {
		renderError(r.out, err)
		return
	}

	r.state = next
	if wasNew {
		fmt.Fprintf(r.out, "%s %s %s\n\n",
			hintStyle.Render("Saved as"),
			headerStyle.Render(next.SessionName),
			idStyle.Render(fmt.Sprintf("#%d", next.SessionID)))
	}
}

// suggest prints sessions whose names start with the first word of name.
func (r *REPL) suggest(ctx context.Context, name string) {
	prefix, _, _ := strings.Cut(strings.TrimSpace(name), " ")
	if prefix == "" {
		return
	}
	suggestions, err := r.ctrl.Suggest(ctx, prefix)
	if err != nil || len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(r.out, hintStyle.Render("Did you mean:"))
	for _, s := range suggestions {
		fmt.Fprintf(r.out, "  %s %s\n", idStyle.Render(fmt.Sprintf("#%d", s.ID)), s.Name)
	}
}

// command runs a slash command and reports whether the REPL should exit.
func (r *REPL) command(ctx context.Context, input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true

	case "/help":
		renderHelp(r.out)

	case "/new":
		r.state = r.ctrl.StartNew()
		fmt.Fprintln(r.out, hintStyle.Render("Started a new conversation"))

	case "/list":
		sessions, err := r.ctrl.Sessions(ctx)
		if err != nil {
			renderError(r.out, err)
			return false
		}
		renderSessions(r.out, sessions)

	case "/select":
		next, err := r.ctrl.Select(ctx, arg)
		if err != nil {
			renderError(r.out, err)
			if errors.Is(err, model.ErrSessionNotFound) {
				r.suggest(ctx, arg)
			}
			return false
		}
		r.state = next
		renderTranscript(r.out, next.SessionName, next.History)

	case "/open":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			renderError(r.out, fmt.Errorf("invalid session id: %q", arg))
			return false
		}
		next, err := r.ctrl.SelectID(ctx, id)
		if err != nil {
			renderError(r.out, err)
			return false
		}
		r.state = next
		renderTranscript(r.out, next.SessionName, next.History)

	case "/rename":
		next, err := r.ctrl.Rename(ctx, r.state, arg)
		if err != nil {
			renderError(r.out, err)
			return false
		}
		r.state = next
		fmt.Fprintf(r.out, "%s %s\n", hintStyle.Render("Renamed to"), headerStyle.Render(next.SessionName))

	case "/delete":
		deleted := r.state.SessionName
		next, err := r.ctrl.Delete(ctx, r.state)
		if err != nil {
			renderError(r.out, err)
			return false
		}
		r.state = next
		fmt.Fprintf(r.out, "%s %s\n", hintStyle.Render("Deleted"), deleted)

	case "/search":
		matches, err := r.ctrl.Search(ctx, arg, maxSearchResults)
		if err != nil {
			renderError(r.out, err)
			return false
		}
		renderMatches(r.out, arg, matches)

	case "/history":
		renderTranscript(r.out, r.state.SessionName, r.state.History)

	default:
		renderError(r.out, fmt.Errorf("unknown command %s (try /help)", name))
	}
	return false
}
