package editor

import (
	"github.com/example/annotator/internal/annotation"
)

// AddComment attaches text to the annotation id.
func (e *Editor) AddComment(id, text string) (annotation.Comment, error) {
	if e.readOnly {
		return annotation.Comment{}, ErrReadOnly
	}
	if annotation.Find(e.annotations, id) < 0 {
		return annotation.Comment{}, annotation.ErrNotFound
	}
	c, err := annotation.NewComment(text)
	if err != nil {
		return annotation.Comment{}, err
	}
	var addErr error
	e.update(func(list []annotation.Annotation) []annotation.Annotation {
		addErr = annotation.AddComment(list, id, c)
		return list
	})
	return c, addErr
}

// DeleteComment removes a comment from the annotation id.
func (e *Editor) DeleteComment(id, commentID string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	i := annotation.Find(e.annotations, id)
	if i < 0 {
		return annotation.ErrNotFound
	}
	found := false
	for _, c := range e.annotations[i].Comments {
		if c.ID == commentID {
			found = true
		}
	}
	if !found {
		return annotation.ErrNotFound
	}
	var delErr error
	e.update(func(list []annotation.Annotation) []annotation.Annotation {
		delErr = annotation.DeleteComment(list, id, commentID)
		return list
	})
	return delErr
}

// SetCommentsMinimized collapses or expands the comment panel of id. The
// flag is presentation state: it is allowed on shared views and is never
// recorded in the undo history.
func (e *Editor) SetCommentsMinimized(id string, minimized bool) error {
	i := annotation.Find(e.annotations, id)
	if i < 0 {
		return annotation.ErrNotFound
	}
	e.annotations[i].MinimizedComments = minimized
	return nil
}
