// Session management commands that work on the store without a model.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/richinex/parley/chat"
	"github.com/richinex/parley/export"
	"github.com/richinex/parley/model"
)

// ListSessions prints saved sessions in insertion order.
func ListSessions(ctx context.Context, opts Options, out io.Writer) error {
	ctrl, closeStore, err := openController(opts)
	if err != nil {
		return err
	}
	defer closeStore()
	return listSessions(ctx, ctrl, out)
}

// ShowSession prints the transcript of the session ref names.
// ref is a numeric id or a session name.
func ShowSession(ctx context.Context, opts Options, ref string, out io.Writer) error {
	ctrl, closeStore, err := openController(opts)
	if err != nil {
		return err
	}
	defer closeStore()
	return showSession(ctx, ctrl, ref, out)
}

// RenameSession renames the session ref names.
func RenameSession(ctx context.Context, opts Options, ref, name string, out io.Writer) error {
	ctrl, closeStore, err := openController(opts)
	if err != nil {
		return err
	}
	defer closeStore()
	return renameSession(ctx, ctrl, ref, name, out)
}

// DeleteSession deletes the session ref names.
func DeleteSession(ctx context.Context, opts Options, ref string, out io.Writer) error {
	ctrl, closeStore, err := openController(opts)
	if err != nil {
		return err
	}
	defer closeStore()
	return deleteSession(ctx, ctrl, ref, out)
}

// ExportSession writes the session ref names in format to path.
// An empty path derives a file name from the session; "-" writes to out.
func ExportSession(ctx context.Context, opts Options, ref, format, path string, out io.Writer) error {
	ctrl, closeStore, err := openController(opts)
	if err != nil {
		return err
	}
	defer closeStore()
	return exportSession(ctx, ctrl, ref, format, path, out)
}

// SearchSessions prints up to limit saved turns containing query.
func SearchSessions(ctx context.Context, opts Options, query string, limit int, out io.Writer) error {
	ctrl, closeStore, err := openController(opts)
	if err != nil {
		return err
	}
	defer closeStore()
	return searchSessions(ctx, ctrl, query, limit, out)
}

func searchSessions(ctx context.Context, ctrl *chat.Controller, query string, limit int, out io.Writer) error {
	matches, err := ctrl.Search(ctx, query, limit)
	if err != nil {
		return err
	}
	renderMatches(out, query, matches)
	return nil
}

func listSessions(ctx context.Context, ctrl *chat.Controller, out io.Writer) error {
	sessions, err := ctrl.Sessions(ctx)
	if err != nil {
		return err
	}
	renderSessions(out, sessions)
	return nil
}

func showSession(ctx context.Context, ctrl *chat.Controller, ref string, out io.Writer) error {
	st, err := resolve(ctx, ctrl, ref)
	if err != nil {
		return err
	}
	renderTranscript(out, st.SessionName, st.History)
	return nil
}

func renameSession(ctx context.Context, ctrl *chat.Controller, ref, name string, out io.Writer) error {
	st, err := resolve(ctx, ctrl, ref)
	if err != nil {
		return err
	}
	next, err := ctrl.Rename(ctx, st, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Renamed #%d to %s\n", next.SessionID, next.SessionName)
	return nil
}

func deleteSession(ctx context.Context, ctrl *chat.Controller, ref string, out io.Writer) error {
	st, err := resolve(ctx, ctrl, ref)
	if err != nil {
		return err
	}
	if _, err := ctrl.Delete(ctx, st); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted #%d %s\n", st.SessionID, st.SessionName)
	return nil
}

func exportSession(ctx context.Context, ctrl *chat.Controller, ref, format, path string, out io.Writer) error {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}

	st, err := resolve(ctx, ctrl, ref)
	if err != nil {
		return err
	}
	session := &model.Session{ID: st.SessionID, Name: st.SessionName, Transcript: st.History}

	if path == "-" {
		return exporter.Export(session, out)
	}
	if path == "" {
		path = export.FileName(session, exporter)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := exporter.Export(session, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	fmt.Fprintf(out, "Exported #%d to %s\n", session.ID, path)
	return nil
}

// resolve loads a session by id when ref is numeric and exists, and by
// name otherwise.
func resolve(ctx context.Context, ctrl *chat.Controller, ref string) (chat.State, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		st, err := ctrl.SelectID(ctx, id)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, model.ErrSessionNotFound) {
			return chat.State{}, err
		}
	}
	return ctrl.Select(ctx, ref)
}
