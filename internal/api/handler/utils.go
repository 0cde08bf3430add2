package handler

import (
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"
)

func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}

// parseTodoFilter reads the optional title, status and dueDate query
// parameters. Empty values are treated as absent.
func parseTodoFilter(q url.Values) (model.TodoFilter, error) {
	var f model.TodoFilter
	if title := q.Get("title"); title != "" {
		f.Title = &title
	}
	if status := q.Get("status"); status != "" {
		s := model.TodoStatus(status)
		if !s.Valid() {
			return model.TodoFilter{}, fmt.Errorf("unknown status %q: %w", status, common.ErrValidation)
		}
		f.Status = &s
	}
	if due := q.Get("dueDate"); due != "" {
		d, err := model.ParseDate(due)
		if err != nil {
			return model.TodoFilter{}, fmt.Errorf("%v: %w", err, common.ErrValidation)
		}
		f.DueDate = &d
	}
	return f, nil
}
