package handler

import (
	"errors"
	"net/url"
	"testing"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"
)

func TestParseTodoFilter(t *testing.T) {
	f, err := parseTodoFilter(url.Values{
		"title":   {"groceries"},
		"status":  {"completed"},
		"dueDate": {"2024-05-01"},
		"other":   {"ignored"},
	})
	if err != nil {
		t.Fatalf("parseTodoFilter: %v", err)
	}
	if f.Title == nil || *f.Title != "groceries" {
		t.Fatalf("Title = %v, want groceries", f.Title)
	}
	if f.Status == nil || *f.Status != model.StatusCompleted {
		t.Fatalf("Status = %v, want completed", f.Status)
	}
	want, _ := model.ParseDate("2024-05-01")
	if f.DueDate == nil || !f.DueDate.Equal(want) {
		t.Fatalf("DueDate = %v, want %v", f.DueDate, want)
	}
}

func TestParseTodoFilterEmptyValuesAreAbsent(t *testing.T) {
	f, err := parseTodoFilter(url.Values{"title": {""}, "status": {""}})
	if err != nil {
		t.Fatalf("parseTodoFilter: %v", err)
	}
	if !f.IsEmpty() {
		t.Fatalf("filter = %+v, want empty", f)
	}
}

func TestParseTodoFilterRejectsBadValues(t *testing.T) {
	for _, q := range []url.Values{
		{"status": {"done"}},
		{"dueDate": {"next week"}},
	} {
		if _, err := parseTodoFilter(q); !errors.Is(err, common.ErrValidation) {
			t.Fatalf("parseTodoFilter(%v) error = %v, want ErrValidation", q, err)
		}
	}
}
