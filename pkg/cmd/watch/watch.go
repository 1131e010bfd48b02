package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/racedb/log"
	"github.com/mpapenbr/racedb/pkg/config"
	"github.com/mpapenbr/racedb/pkg/repository/race"
	"github.com/mpapenbr/racedb/pkg/render"
	"github.com/mpapenbr/racedb/pkg/utils"
)

var search string

func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "List the races again whenever the data file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()
			path := config.Filename
			if path == "" {
				var err error
				if path, err = race.DefaultPath(); err != nil {
					return err
				}
			}
			l := log.GetFromContext(ctx).Named("watch")
			return newWatcher(path, search, cmd.OutOrStdout(), l).run(ctx)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "",
		"only show races containing this text (case insensitive)")
	return cmd
}

type watcher struct {
	path   string
	search string
	out    io.Writer
	log    *log.Logger
	digest string
}

func newWatcher(path, search string, out io.Writer, l *log.Logger) *watcher {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return &watcher{
		path:   abs,
		search: search,
		out:    out,
		log:    l,
	}
}

// run renders the list once and then after every change of the data file
// until ctx is done. The directory is watched since saves replace the file.
func (w *watcher) run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create fsnotify watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("could not watch %s: %w", filepath.Dir(w.path), err)
	}
	if err := w.render(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			w.log.Info("context done, stopping watch")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				w.log.Info("watcher events channel closed, stopping watch")
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.log.Debug("change detected",
				log.String("file", event.Name), log.String("op", event.Op.String()))
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.render(); err != nil {
				w.log.Warn("could not reload races", log.ErrorField(err))
			}
		case err, ok := <-fw.Errors:
			if !ok {
				w.log.Info("watcher errors channel closed, stopping watch")
				return nil
			}
			w.log.Error("watcher error", log.ErrorField(err))
		}
	}
}

// render prints the list unless the file content is the same as last time.
func (w *watcher) render() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", w.path, err)
	}
	digest := utils.Digest(data)
	if digest == w.digest {
		w.log.Debug("content unchanged", log.String("file", w.path))
		return nil
	}
	store, err := race.New(w.path, race.WithReadOnly(), race.WithLogger(w.log))
	if err != nil {
		return err
	}
	if w.digest != "" {
		fmt.Fprintln(w.out)
	}
	w.digest = digest
	return render.Table(w.out, store.List(w.search))
}
