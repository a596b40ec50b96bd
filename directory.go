package pubsite

import (
	"fmt"
	"sort"
)

// AuthorDirectory resolves author records by user id.
type AuthorDirectory struct {
	byUser map[string]Author
}

// NewAuthorDirectory indexes authors by user id. Empty or duplicate ids are
// rejected since a post must resolve to exactly one author.
func NewAuthorDirectory(authors []Author) (*AuthorDirectory, error) {
	d := &AuthorDirectory{byUser: make(map[string]Author, len(authors))}
	for _, a := range authors {
		if a.User == "" {
			return nil, fmt.Errorf("author %q has no user id", a.Name)
		}
		if _, dup := d.byUser[a.User]; dup {
			return nil, fmt.Errorf("duplicate author user id %q", a.User)
		}
		d.byUser[a.User] = a
	}
	return d, nil
}

// Lookup returns the author for user.
func (d *AuthorDirectory) Lookup(user string) (Author, error) {
	a, ok := d.byUser[user]
	if !ok {
		return Author{}, &AuthorNotFoundError{User: user}
	}
	return a, nil
}

// Resolve returns the author of p, or an AuthorNotFoundError naming the post.
func (d *AuthorDirectory) Resolve(p Post) (Author, error) {
	a, ok := d.byUser[p.Author]
	if !ok {
		return Author{}, &AuthorNotFoundError{Post: p.Slug, User: p.Author}
	}
	return a, nil
}

// Authors returns every author sorted by user id.
func (d *AuthorDirectory) Authors() []Author {
	out := make([]Author, 0, len(d.byUser))
	for _, a := range d.byUser {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User < out[j].User })
	return out
}

// Len is the number of authors in the directory.
func (d *AuthorDirectory) Len() int {
	return len(d.byUser)
}
