package mpv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofrs/flock"

	"tracksel/internal/logging"
	"tracksel/internal/selection"
	"tracksel/internal/track"
)

const trackListObserverID = 1

// ErrWatcherActive means another watcher holds the lock for the socket.
var ErrWatcherActive = errors.New("another watcher is attached to this mpv socket")

// LockPath returns the lock file guarding watchers of socketPath.
func LockPath(socketPath string) string {
	return socketPath + ".tracksel.lock"
}

// Watcher applies selection preferences whenever mpv loads a new set of
// tracks. Changes that only move the selection, such as the user switching
// audio in the player, are left alone.
type Watcher struct {
	client *Client
	prefs  selection.Preferences
	logger *slog.Logger
	lock   *flock.Flock

	// inventory of the last planned track-list; selection flags excluded.
	inventory string

	// OnApply, when set, is called after each track-list change with the
	// decisions that were sent to the player.
	OnApply func([]selection.Decision)
}

// NewWatcher builds a watcher for the connected client.
func NewWatcher(client *Client, prefs selection.Preferences, logger *slog.Logger) *Watcher {
	return &Watcher{
		client: client,
		prefs:  prefs,
		logger: logging.NewComponentLogger(logger, "mpv-watcher"),
		lock:   flock.New(LockPath(client.Socket())),
	}
}

// Run blocks until ctx is cancelled, mpv shuts down, or the connection ends.
func (w *Watcher) Run(ctx context.Context) error {
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire watcher lock: %w", err)
	}
	if !ok {
		return ErrWatcherActive
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("failed to release watcher lock", logging.Error(err))
		}
	}()

	if err := w.client.ObserveProperty(ctx, trackListObserverID, "track-list"); err != nil {
		return err
	}
	w.logger.Info("watching track-list", logging.String(logging.FieldSocket, w.client.Socket()))

	events := w.client.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, open := <-events:
			if !open {
				return nil
			}
			switch {
			case ev.Name == "start-file":
				w.inventory = ""
			case ev.Name == "shutdown":
				w.logger.Info("mpv shut down")
				return nil
			case ev.Name == "property-change" && ev.Property == "track-list":
				w.handleTrackList(ctx, ev)
			}
		}
	}
}

func (w *Watcher) handleTrackList(ctx context.Context, ev Event) {
	if len(ev.Data) == 0 || string(ev.Data) == "null" {
		return
	}
	list, err := track.ParseMPVTrackList(ev.Data)
	if err != nil {
		logging.WarnWithContext(w.logger, "track-list rejected", "track_list_invalid",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "update mpv or report the unexpected track type"),
			logging.String(logging.FieldImpact, "selection skipped for this file"),
		)
		return
	}
	if len(list) == 0 {
		w.inventory = ""
		return
	}
	key := inventoryKey(list)
	if key == w.inventory {
		w.logger.Debug("track selection changed; preferences not reapplied")
		return
	}
	w.inventory = key

	plan := selection.Plan(list, w.prefs)
	applied, err := w.client.apply(ctx, list, plan)
	if err != nil {
		logging.ErrorWithContext(w.logger, "apply selection failed", "selection_apply_failed", logging.Error(err))
	}
	if w.OnApply != nil {
		w.OnApply(applied)
	}
}

// inventoryKey identifies the tracks of a list independent of which ones are
// selected.
func inventoryKey(list track.List) string {
	var b strings.Builder
	for _, t := range list {
		fmt.Fprintf(&b, "%s/%d/%s/%s/%t/%s\n", t.Kind, t.ID, t.Lang, t.Codec, t.External, t.ExternalFilename)
	}
	return b.String()
}
