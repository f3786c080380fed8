package annotation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyComment is returned when a comment has no text after trimming.
	ErrEmptyComment = errors.New("comment text is empty")
	// ErrNotFound is returned when an annotation or comment id is unknown.
	ErrNotFound = errors.New("not found")
)

var now = time.Now

// NewComment builds a comment with a fresh id and the current time.
func NewComment(text string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, ErrEmptyComment
	}
	return Comment{ID: NewID(), Text: text, CreatedAt: now()}, nil
}

// AddComment appends c to the annotation identified by id.
func AddComment(list []Annotation, id string, c Comment) error {
	i := Find(list, id)
	if i < 0 {
		return fmt.Errorf("annotation %s: %w", id, ErrNotFound)
	}
	list[i].Comments = append(list[i].Comments, c)
	return nil
}

// DeleteComment removes the comment commentID from annotation id.
func DeleteComment(list []Annotation, id, commentID string) error {
	i := Find(list, id)
	if i < 0 {
		return fmt.Errorf("annotation %s: %w", id, ErrNotFound)
	}
	comments := list[i].Comments
	for j := range comments {
		if comments[j].ID == commentID {
			kept := make([]Comment, 0, len(comments)-1)
			kept = append(kept, comments[:j]...)
			list[i].Comments = append(kept, comments[j+1:]...)
			return nil
		}
	}
	return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
}
