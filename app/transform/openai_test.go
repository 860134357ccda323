package transform

import (
	"testing"
)

func TestParseDraft(t *testing.T) {
	reply := `{"title":"How To Buy A Business","excerpt":"A short intro.","content":"# Heading\n\nBody text.","category":"Buying a Business","tags":["acquisition","sba"]}`

	draft, err := ParseDraft(reply)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if draft.Title != "How To Buy A Business" {
		t.Errorf("Unexpected title: %s", draft.Title)
	}
	if draft.Category != "Buying a Business" {
		t.Errorf("Unexpected category: %s", draft.Category)
	}
	if len(draft.Tags) != 2 {
		t.Errorf("Expected 2 tags, got: %d", len(draft.Tags))
	}
}

func TestParseDraftFencedReply(t *testing.T) {
	reply := "```json\n{\"title\":\"T\",\"excerpt\":\"E\",\"content\":\"C\",\"category\":\"Valuation\",\"tags\":[]}\n```"

	draft, err := ParseDraft(reply)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if draft.Title != "T" || draft.Content != "C" {
		t.Errorf("Unexpected draft: %+v", draft)
	}
}

func TestParseDraftUnknownCategory(t *testing.T) {
	reply := `{"title":"T","excerpt":"E","content":"C","category":"Cryptocurrency","tags":[]}`

	draft, err := ParseDraft(reply)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if draft.Category != "General" {
		t.Errorf("Expected unknown category to default to General, got: %s", draft.Category)
	}
}

func TestParseDraftMissingFields(t *testing.T) {
	if _, err := ParseDraft(`{"excerpt":"E"}`); err == nil {
		t.Error("Expected error for reply without title and content")
	}
	if _, err := ParseDraft("not json at all"); err == nil {
		t.Error("Expected error for non-JSON reply")
	}
}
