package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/calumari/jform/internal/fileio"
	"github.com/calumari/jform/internal/highlight"
	"github.com/calumari/jform/internal/session"
	"github.com/calumari/jform/internal/store"
	"github.com/calumari/jform/internal/tui"
	"github.com/calumari/jform/internal/watch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// editCmd opens the interactive editor
var editCmd = &cobra.Command{
	Use:         "edit [file]",
	Short:       "Open a file in the interactive editor",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationUI: uiTerminal},
	RunE:        runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("the editor needs a terminal; use fmt, table, get or set in scripts")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(cfg.StorePath, store.WithLogger(logger), store.WithHistoryLimit(cfg.HistoryLimit))
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := openSession(ctx, st, args)
	if err != nil {
		return err
	}

	opts := []tui.Option{
		tui.WithHighlighter(highlight.New(cfg.HighlightStyle)),
		tui.WithSaver(&fileio.Saver{DownloadsDir: cfg.DownloadsDir, Logger: logger}),
		tui.WithHistory(st),
		tui.WithDebounce(cfg.GetPreviewDebounce()),
		tui.WithLogger(logger),
	}

	var w *watch.Watcher
	if cfg.Watch && sess.FileName() != "" {
		w, err = watch.New(sess.FileName(), watch.WithLogger(logger))
		if err != nil {
			logger.Warn("file watching disabled", zap.Error(err))
			w = nil
		} else {
			opts = append(opts, tui.WithWatcher(w))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	if w != nil {
		if err := w.Start(runCtx); err != nil {
			return err
		}
		g.Go(func() error {
			w.Wait()
			return nil
		})
	}

	g.Go(func() error {
		// Ending the program ends the watcher.
		defer stop()
		p := tea.NewProgram(tui.New(runCtx, sess, opts...), tea.WithAltScreen(), tea.WithContext(runCtx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	err = g.Wait()
	if w != nil {
		w.Stop()
	}
	return err
}

// openSession picks the document to edit: the file on the command line,
// the mirrored session from the last run, or the sample.
func openSession(ctx context.Context, st *store.Store, args []string) (*session.Session, error) {
	opts := []session.Option{session.WithMirror(st), session.WithLogger(logger)}

	if len(args) == 1 {
		doc, err := fileio.Load(args[0])
		if err != nil {
			return nil, err
		}
		sess := session.New(doc, args[0], opts...)
		recordOpen(ctx, st, sess)
		return sess, nil
	}

	state, ok, err := st.LoadState(ctx)
	if err != nil {
		logger.Warn("could not read the last session", zap.Error(err))
	}
	if ok {
		sess := session.New(nil, "", opts...)
		err := sess.Restore(ctx, state)
		if err == nil {
			return sess, nil
		}
		logger.Warn("could not restore the last session", zap.Error(err))
	}

	doc, name := fileio.LoadSample(cfg.SampleFile, logger)
	sess := session.New(doc, name, opts...)
	if name != "" {
		recordOpen(ctx, st, sess)
	}
	return sess, nil
}

func recordOpen(ctx context.Context, st *store.Store, sess *session.Session) {
	data, err := sess.Document().Marshal()
	if err != nil {
		return
	}
	if _, err := st.AddSnapshot(ctx, sess.FileName(), "open", data); err != nil {
		logger.Warn("record snapshot", zap.Error(err))
	}
}
