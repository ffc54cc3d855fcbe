// Package controlfile lets an operator steer a session by writing a command
// word into a file: pause, resume, toggle, skip or stop.
package controlfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"trade_pilot/pkg/contextx"
	"trade_pilot/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault

type Command string

const (
	CommandPause  Command = "pause"
	CommandResume Command = "resume"
	CommandToggle Command = "toggle"
	CommandSkip   Command = "skip"
	CommandStop   Command = "stop"
)

var ErrUnknownCommand = errors.New("unknown command")

type Controller interface {
	Pause()
	Resume()
	TogglePause() bool
	SkipCurrentItem()
	RequestStop()
}

// ParseCommand reads the first word of the file content. Empty content is not
// a command.
func ParseCommand(text string) (Command, bool, error) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return "", false, nil
	}

	switch c := Command(fields[0]); c {
	case CommandPause, CommandResume, CommandToggle, CommandSkip, CommandStop:
		return c, true, nil
	default:
		return "", false, fmt.Errorf("%w %q", ErrUnknownCommand, fields[0])
	}
}

func Apply(ctl Controller, c Command) {
	switch c {
	case CommandPause:
		ctl.Pause()
	case CommandResume:
		ctl.Resume()
	case CommandToggle:
		ctl.TogglePause()
	case CommandSkip:
		ctl.SkipCurrentItem()
	case CommandStop:
		ctl.RequestStop()
	}
}

// Watcher applies commands written to a file. The file is truncated after
// every command so the same word can be written again.
type Watcher struct {
	path string
	ctl  Controller
}

func New(path string, ctl Controller) *Watcher {
	return &Watcher{path: path, ctl: ctl}
}

func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create control dir: %w", err)
	}
	if err := os.WriteFile(w.path, nil, 0o644); err != nil {
		return fmt.Errorf("reset control file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so the directory is watched.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	logger(ctx).Info("control file watched", slog.String(logx.FieldPath, w.path))

	target := filepath.Clean(w.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
				continue
			}
			w.consume(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger(ctx).Warn("control file watch error", logx.Error(err))
		}
	}
}

func (w *Watcher) consume(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		logger(ctx).Warn("read control file", logx.Error(err))
		return
	}

	c, ok, err := ParseCommand(string(data))
	if err != nil {
		logger(ctx).Warn("ignored control file content", logx.Error(err))
	} else if ok {
		logger(ctx).Info("control command", slog.String(logx.FieldCommand, string(c)))
		Apply(w.ctl, c)
	}

	if len(data) > 0 {
		if err := os.Truncate(w.path, 0); err != nil {
			logger(ctx).Warn("truncate control file", logx.Error(err))
		}
	}
}
