// Package fileio loads documents from disk and saves them through a fallback
// chain: the original file, then a save-as prompt, then the downloads folder.
package fileio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/calumari/jform"
	"github.com/calumari/jform/internal/logging"
	"go.uber.org/zap"
)

// ErrCancelled is returned by a SaveAsFunc when the user dismissed the
// prompt. A cancelled save-as ends the chain without writing anything.
var ErrCancelled = errors.New("save cancelled")

// Load reads and validates the document at path.
func Load(path string) (*jform.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := jform.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, nil
}

// LoadSample returns the document at path when it exists and is valid, and
// the built-in sample otherwise. The returned name is empty for the built-in
// sample.
func LoadSample(path string, logger *zap.Logger) (doc *jform.Document, name string) {
	if path != "" {
		d, err := Load(path)
		if err == nil {
			return d, path
		}
		if !errors.Is(err, os.ErrNotExist) {
			logging.OrNop(logger).Warn("sample file unusable, using built-in sample", zap.String("path", path), zap.Error(err))
		}
	}
	return jform.Sample(), ""
}

// WriteAtomic writes data to a temporary file next to path and renames it
// into place, keeping the mode of an existing file.
func WriteAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// Sink names where a save ended up.
type Sink int

const (
	SinkNone Sink = iota
	SinkDirect
	SinkSaveAs
	SinkDownload
)

func (s Sink) String() string {
	switch s {
	case SinkDirect:
		return "direct"
	case SinkSaveAs:
		return "save-as"
	case SinkDownload:
		return "download"
	default:
		return "none"
	}
}

// Result reports the outcome of Saver.Save.
type Result struct {
	Sink Sink
	Path string
}

// SaveAsFunc asks the user for a destination. suggested is the current file
// name or "data.json".
type SaveAsFunc func(ctx context.Context, suggested string) (string, error)

// Saver runs the save chain.
type Saver struct {
	// DownloadsDir is the last resort destination.
	DownloadsDir string
	// SaveAs prompts for a path; nil skips straight to the download.
	SaveAs SaveAsFunc
	Logger *zap.Logger
}

// Save writes data to path, falling back to the save-as prompt when path is
// empty or the write fails, and to a download when the prompt fails. A
// cancelled prompt returns SinkNone and ErrCancelled.
func (s *Saver) Save(ctx context.Context, path string, data []byte) (Result, error) {
	logger := logging.OrNop(s.Logger)

	if path != "" {
		err := WriteAtomic(path, data)
		if err == nil {
			logger.Info("saved", zap.String("sink", SinkDirect.String()), zap.String("path", path))
			return Result{Sink: SinkDirect, Path: path}, nil
		}
		logger.Warn("direct save failed", zap.String("path", path), zap.Error(err))
	}

	if s.SaveAs != nil {
		suggested := "data.json"
		if path != "" {
			suggested = filepath.Base(path)
		}
		target, err := s.SaveAs(ctx, suggested)
		switch {
		case errors.Is(err, ErrCancelled):
			return Result{Sink: SinkNone}, err
		case err == nil:
			if err = WriteAtomic(target, data); err == nil {
				logger.Info("saved", zap.String("sink", SinkSaveAs.String()), zap.String("path", target))
				return Result{Sink: SinkSaveAs, Path: target}, nil
			}
		}
		logger.Warn("save-as failed, falling back to download", zap.Error(err))
	}

	return s.Download(path, data)
}

// Download writes data into the downloads folder under the base name of
// path, or "edited.json" when path is empty. Existing files are never
// replaced; a numbered name is used instead.
func (s *Saver) Download(path string, data []byte) (Result, error) {
	name := "edited.json"
	if path != "" {
		name = filepath.Base(path)
	}
	target, err := s.download(name, data)
	if err != nil {
		return Result{Sink: SinkNone}, err
	}
	logging.OrNop(s.Logger).Info("saved", zap.String("sink", SinkDownload.String()), zap.String("path", target))
	return Result{Sink: SinkDownload, Path: target}, nil
}

func (s *Saver) download(name string, data []byte) (string, error) {
	dir := s.DownloadsDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create downloads dir: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 0; ; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		target := filepath.Join(dir, candidate)
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("download %s: %w", target, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("download %s: %w", target, err)
		}
		return target, f.Close()
	}
}
