package pubsite

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPostCacheServesPublishedPosts(t *testing.T) {
	s := setupTestStore(t)
	indexSample(t, s)
	c := NewPostCache(s, time.Minute)
	ctx := context.Background()

	posts, err := c.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if got := slugs(posts); len(got) != 3 || got[0] != "newest" || got[2] != "oldest" {
		t.Errorf("ListPosts = %v", got)
	}

	cats, err := c.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(cats) != 2 || cats[0].Key != "music" {
		t.Errorf("ListCategories = %+v", cats)
	}

	p, err := c.GetPost(ctx, "middle")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if p.Title != "Middle" {
		t.Errorf("Title = %q", p.Title)
	}
	if _, err := c.GetPost(ctx, "wip"); !errors.Is(err, ErrNotFound) {
		t.Errorf("drafts are not cached, got %v", err)
	}
}

func TestPostCacheSiblings(t *testing.T) {
	s := setupTestStore(t)
	indexSample(t, s)
	c := NewPostCache(s, time.Minute)

	older, newer, err := c.Siblings(context.Background(), "middle")
	if err != nil {
		t.Fatalf("Siblings failed: %v", err)
	}
	if slugOf(older) != "oldest" || slugOf(newer) != "newest" {
		t.Errorf("Siblings(middle) = %q, %q", slugOf(older), slugOf(newer))
	}
	if _, _, err := c.Siblings(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostCacheInvalidate(t *testing.T) {
	s := setupTestStore(t)
	indexSample(t, s)
	c := NewPostCache(s, time.Hour)
	ctx := context.Background()

	if _, err := c.ListPosts(ctx); err != nil {
		t.Fatal(err)
	}
	indexContent(t, s, &Content{Posts: append(samplePosts(),
		Post{Slug: "latest", Title: "Latest", Author: "rayriffy", Date: day("2021-01-01"), Status: StatusPublished})})

	posts, _ := c.ListPosts(ctx)
	if len(posts) != 3 {
		t.Errorf("cache should still hold 3 posts before invalidation, got %d", len(posts))
	}

	c.Invalidate()
	posts, _ = c.ListPosts(ctx)
	if len(posts) != 4 || posts[0].Slug != "latest" {
		t.Errorf("after Invalidate got %v", slugs(posts))
	}
}

func TestPostCacheExpires(t *testing.T) {
	s := setupTestStore(t)
	c := NewPostCache(s, time.Nanosecond)
	ctx := context.Background()

	posts, err := c.ListPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("empty store should yield an empty, non-nil list, got %v", posts)
	}

	indexSample(t, s)
	time.Sleep(time.Millisecond)
	posts, _ = c.ListPosts(ctx)
	if len(posts) != 3 {
		t.Errorf("expired cache should reload, got %d posts", len(posts))
	}
}

func TestSiblingsOf(t *testing.T) {
	posts := samplePosts()[:3]
	older, newer, ok := siblingsOf(posts, "newest")
	if !ok || slugOf(older) != "middle" || newer != nil {
		t.Errorf("siblingsOf(newest) = %q, %q, %v", slugOf(older), slugOf(newer), ok)
	}
	if _, _, ok := siblingsOf(posts, "nope"); ok {
		t.Error("siblingsOf should report a missing slug")
	}
}
