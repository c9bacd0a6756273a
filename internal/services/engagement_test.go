package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"toplists/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestToggleLike(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewEngagementService(gdb, zap.NewNop())
	ctx := context.Background()
	owner := createUser(t, gdb, "owner", true)
	me := createUser(t, gdb, "me", true)
	list := createList(t, gdb, owner, "l", time.Now())

	st, err := svc.ToggleLike(ctx, me.ID, list.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !st.IsLiked || st.Count != 1 {
		t.Errorf("Expected liked with count 1, got %+v", st)
	}
	st, _ = svc.LikeStatus(ctx, list.ID, me.ID)
	if !st.IsLiked || st.Count != 1 {
		t.Errorf("Unexpected status %+v", st)
	}
	st, _ = svc.LikeStatus(ctx, list.ID, uuid.Nil)
	if st.IsLiked {
		t.Error("Anonymous viewer cannot have liked")
	}

	st, _ = svc.ToggleLike(ctx, me.ID, list.ID)
	if st.IsLiked || st.Count != 0 {
		t.Errorf("Expected unliked with count 0, got %+v", st)
	}

	if _, err := svc.ToggleLike(ctx, me.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing list, got %v", err)
	}
}

func TestToggleFavorite(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewEngagementService(gdb, zap.NewNop())
	ctx := context.Background()
	owner := createUser(t, gdb, "owner", true)
	me := createUser(t, gdb, "me", true)
	list := createList(t, gdb, owner, "l", time.Now())

	on, err := svc.ToggleFavorite(ctx, me.ID, list.ID)
	if err != nil || !on {
		t.Fatalf("Expected favorited, got %v, %v", on, err)
	}
	if fav, _ := svc.IsFavorited(ctx, list.ID, me.ID); !fav {
		t.Error("Expected IsFavorited to be true")
	}
	on, _ = svc.ToggleFavorite(ctx, me.ID, list.ID)
	if on {
		t.Error("Expected second toggle to remove favorite")
	}
}

func TestComments(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewEngagementService(gdb, zap.NewNop())
	ctx := context.Background()
	owner := createUser(t, gdb, "owner", true)
	me := createUser(t, gdb, "me", true)
	list := createList(t, gdb, owner, "l", time.Now())

	if _, err := svc.AddComment(ctx, me.ID, list.ID, "  <b></b> "); !errors.Is(err, ErrEmptyComment) {
		t.Errorf("Expected ErrEmptyComment, got %v", err)
	}
	c, err := svc.AddComment(ctx, me.ID, list.ID, "<script>x</script>Gran lista")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if c.Content != "Gran lista" || c.Author.Username != "me" {
		t.Errorf("Unexpected comment %+v", c)
	}

	comments, err := svc.Comments(ctx, list.ID, me.ID)
	if err != nil || len(comments) != 1 {
		t.Fatalf("Expected one comment, got %d, %v", len(comments), err)
	}

	if err := svc.DeleteComment(ctx, owner.ID, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting another user's comment, got %v", err)
	}
	if err := svc.DeleteComment(ctx, me.ID, c.ID); err != nil {
		t.Errorf("DeleteComment: %v", err)
	}
}

func TestEngagementRequiresVisibleList(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewEngagementService(gdb, zap.NewNop())
	ctx := context.Background()
	priv := createUser(t, gdb, "priv", false)
	stranger := createUser(t, gdb, "stranger", true)
	fan := createUser(t, gdb, "fan", true)
	createFollow(t, gdb, fan, priv, models.FollowStatusAccepted)
	list := createList(t, gdb, priv, "secret", time.Now())

	if _, err := svc.ToggleLike(ctx, stranger.ID, list.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("ToggleLike: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.LikeStatus(ctx, list.ID, uuid.Nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("LikeStatus: expected ErrNotFound for anonymous, got %v", err)
	}
	if _, err := svc.AddComment(ctx, stranger.ID, list.ID, "hola"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddComment: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Comments(ctx, list.ID, stranger.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Comments: expected ErrNotFound, got %v", err)
	}

	for _, id := range []uuid.UUID{priv.ID, fan.ID} {
		if _, err := svc.ToggleLike(ctx, id, list.ID); err != nil {
			t.Errorf("ToggleLike by %s: %v", id, err)
		}
		if _, err := svc.AddComment(ctx, id, list.ID, "bien"); err != nil {
			t.Errorf("AddComment by %s: %v", id, err)
		}
	}
	st, err := svc.LikeStatus(ctx, list.ID, fan.ID)
	if err != nil || st.Count != 2 || !st.IsLiked {
		t.Errorf("Expected 2 likes incl. fan, got %+v, %v", st, err)
	}
	comments, err := svc.Comments(ctx, list.ID, priv.ID)
	if err != nil || len(comments) != 2 {
		t.Errorf("Expected 2 comments for owner, got %d, %v", len(comments), err)
	}
}
