package session

import (
	"context"

	"github.com/calumari/jform"
)

type preview struct {
	text   string
	gen    uint64
	active bool
	err    error
}

// resetPreview drops an uncommitted edit. The generation keeps counting so
// a commit scheduled for the dropped edit cannot match a later one.
func (s *Session) resetPreview() {
	s.preview = preview{gen: s.preview.gen}
}

// PreviewText returns the raw JSON of the current object, or the pending
// edit when there is one.
func (s *Session) PreviewText() string {
	if s.preview.active {
		return s.preview.text
	}
	text, err := s.doc.ObjectText(s.index)
	if err != nil {
		return ""
	}
	return text
}

// EditPreview records raw text typed into the preview. It returns the
// generation to commit with and the parse error, if any, so the caller can
// flag invalid JSON immediately.
func (s *Session) EditPreview(text string) (uint64, error) {
	s.preview.gen++
	s.preview.text = text
	s.preview.active = true
	_, s.preview.err = jform.ParseObject([]byte(text))
	return s.preview.gen, s.preview.err
}

// PreviewPending reports whether an edit is waiting to be committed, and
// its parse error.
func (s *Session) PreviewPending() (bool, error) {
	return s.preview.active, s.preview.err
}

// CommitPreview applies the pending edit if gen is still the latest one and
// the text is a JSON object. It reports whether the document changed.
func (s *Session) CommitPreview(ctx context.Context, gen uint64) (bool, error) {
	if !s.preview.active || gen != s.preview.gen {
		return false, nil
	}
	if s.preview.err != nil {
		return false, s.preview.err
	}
	if err := s.doc.ReplaceObject(s.index, s.preview.text); err != nil {
		return false, err
	}
	s.changed(ctx)
	return true, nil
}

// DiscardPreview drops an uncommitted edit.
func (s *Session) DiscardPreview() {
	s.resetPreview()
}
