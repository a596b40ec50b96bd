package pubsite

import (
	"errors"
	"testing"
)

func TestNewAuthorDirectory(t *testing.T) {
	dir, err := NewAuthorDirectory([]Author{
		{User: "b", Name: "Bee"},
		{User: "a", Name: "Ay"},
	})
	if err != nil {
		t.Fatalf("NewAuthorDirectory failed: %v", err)
	}
	if dir.Len() != 2 {
		t.Errorf("Len = %d, want 2", dir.Len())
	}
	authors := dir.Authors()
	if authors[0].User != "a" || authors[1].User != "b" {
		t.Errorf("Authors should be sorted by user id, got %+v", authors)
	}
}

func TestNewAuthorDirectoryRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name    string
		authors []Author
	}{
		{"empty id", []Author{{Name: "Anonymous"}}},
		{"duplicate id", []Author{{User: "a", Name: "One"}, {User: "a", Name: "Two"}}},
	}
	for _, tt := range tests {
		if _, err := NewAuthorDirectory(tt.authors); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestAuthorDirectoryLookup(t *testing.T) {
	dir, err := NewAuthorDirectory([]Author{{User: "rayriffy", Name: "Phumrapee"}})
	if err != nil {
		t.Fatal(err)
	}

	a, err := dir.Lookup("rayriffy")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if a.Name != "Phumrapee" {
		t.Errorf("Name = %q, want Phumrapee", a.Name)
	}

	_, err = dir.Lookup("ghost")
	if !errors.Is(err, ErrAuthorNotFound) {
		t.Errorf("expected ErrAuthorNotFound, got %v", err)
	}
	if err.Error() != `author "ghost" not found` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestAuthorDirectoryResolveNamesPost(t *testing.T) {
	dir, err := NewAuthorDirectory(nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = dir.Resolve(Post{Slug: "hello", Author: "ghost"})
	var anf *AuthorNotFoundError
	if !errors.As(err, &anf) {
		t.Fatalf("expected AuthorNotFoundError, got %v", err)
	}
	if anf.Post != "hello" || anf.User != "ghost" {
		t.Errorf("error = %+v", anf)
	}
}
