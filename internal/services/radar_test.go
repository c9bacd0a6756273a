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

func TestAggregateTrendingRadar(t *testing.T) {
	now := time.Now()
	since := now.AddDate(0, -3, 0)
	entries := []models.RadarEntry{
		{ItemTitle: "Dune", Category: "Libros", CreatedAt: now.Add(-time.Hour)},
		{ItemTitle: "Dune", Category: "Libros", CreatedAt: now.Add(-2 * time.Hour), ItemImage: "https://img/dune.jpg"},
		{ItemTitle: "Dune", Category: "Películas", CreatedAt: now.Add(-time.Hour)},
		{ItemTitle: "Alien", Category: "Películas", CreatedAt: now.Add(-30 * time.Minute)},
		{ItemTitle: "Old", Category: "Libros", CreatedAt: now.AddDate(0, -4, 0)},
		{ItemTitle: "Old", Category: "Libros", CreatedAt: now.AddDate(0, -4, 0)},
	}
	got := AggregateTrendingRadar(entries, since)
	want := []TrendingRadarItem{
		{Title: "Dune", Category: "Libros", Count: 2, Image: "https://img/dune.jpg"},
		{Title: "Alien", Category: "Películas", Count: 1},
		{Title: "Dune", Category: "Películas", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("at %d got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRadarLifecycle(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewRadarService(gdb, zap.NewNop())
	ctx := context.Background()
	me := createUser(t, gdb, "me", true)
	other := createUser(t, gdb, "other", true)

	entry, err := svc.Add(ctx, me.ID, RadarInput{ItemTitle: "Dune", Category: "Libros"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	// 重复加入不报错，每次加入都计入趋势
	again, err := svc.Add(ctx, me.ID, RadarInput{ItemTitle: "Dune", Category: "Libros"})
	if err != nil {
		t.Fatalf("Expected duplicate add to succeed, got %v", err)
	}
	if again.ID == entry.ID {
		t.Error("Expected a second entry to be stored")
	}
	if _, err := svc.Add(ctx, me.ID, RadarInput{ItemTitle: "", Category: "Libros"}); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Expected missing title to be rejected, got %v", err)
	}
	if _, err := svc.Add(ctx, other.ID, RadarInput{ItemTitle: "Dune", Category: "Libros"}); err != nil {
		t.Fatalf("Add for other: %v", err)
	}

	found, err := svc.Check(ctx, me.ID, "Dune", "Libros")
	if err != nil || found == nil || (found.ID != entry.ID && found.ID != again.ID) {
		t.Errorf("Expected Check to find entry, got %+v, %v", found, err)
	}
	if err := svc.UpdateNotes(ctx, other.ID, entry.ID, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound updating another user's entry, got %v", err)
	}
	if err := svc.UpdateNotes(ctx, me.ID, entry.ID, "leer en verano"); err != nil {
		t.Errorf("UpdateNotes: %v", err)
	}

	trending, err := svc.Trending(ctx, 0)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(trending) != 1 || trending[0].Count != 3 {
		t.Errorf("Expected Dune counted three times, got %+v", trending)
	}

	for _, id := range []uuid.UUID{entry.ID, again.ID} {
		if err := svc.Remove(ctx, me.ID, id); err != nil {
			t.Errorf("Remove: %v", err)
		}
	}
	if err := svc.Remove(ctx, me.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound removing missing entry, got %v", err)
	}
	entries, _ := svc.List(ctx, me.ID)
	if len(entries) != 0 {
		t.Errorf("Expected empty radar, got %d", len(entries))
	}
}
