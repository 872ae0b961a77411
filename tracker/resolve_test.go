package tracker

import (
	"context"
	"net/http"
	"testing"

	"github.com/gcharanteja/unilogger/internal/trackertest"
)

func TestResolveTeamCreatesOnce(t *testing.T) {
	s := trackertest.New(t)
	client := New(s.APIKey(), s.URL(), 0)
	ctx := context.Background()

	first, err := client.ResolveTeam(ctx, "ML Research", "our experiments")
	if err != nil {
		t.Fatalf("first ResolveTeam failed: %v", err)
	}
	second, err := client.ResolveTeam(ctx, "ML Research", "our experiments")
	if err != nil {
		t.Fatalf("second ResolveTeam failed: %v", err)
	}

	if first != second {
		t.Fatalf("expected stable id, got %d then %d", first, second)
	}
	if n := s.RequestCount(http.MethodPost, "/teams"); n != 1 {
		t.Fatalf("expected exactly 1 create, got %d", n)
	}
	if n := s.RequestCount(http.MethodGet, "/teams"); n != 2 {
		t.Fatalf("expected 2 list calls, got %d", n)
	}
}

func TestResolveTeamReusesExisting(t *testing.T) {
	s := trackertest.New(t)
	client := New(s.APIKey(), s.URL(), 0)
	ctx := context.Background()

	seeded, err := s.Store().CreateTeam(ctx, "Platform", "")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	id, err := client.ResolveTeam(ctx, "Platform", "ignored description")
	if err != nil {
		t.Fatalf("ResolveTeam failed: %v", err)
	}
	if id != seeded.ID {
		t.Fatalf("expected id %d, got %d", seeded.ID, id)
	}
	if n := s.RequestCount(http.MethodPost, "/teams"); n != 0 {
		t.Fatalf("expected no create, got %d", n)
	}
}

func TestResolveTeamFirstMatchWins(t *testing.T) {
	s := trackertest.New(t)
	client := New(s.APIKey(), s.URL(), 0)
	ctx := context.Background()

	first, err := s.Store().CreateTeam(ctx, "Dup", "")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := s.Store().CreateTeam(ctx, "Dup", ""); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	id, err := client.ResolveTeam(ctx, "Dup", "")
	if err != nil {
		t.Fatalf("ResolveTeam failed: %v", err)
	}
	if id != first.ID {
		t.Fatalf("expected first match %d, got %d", first.ID, id)
	}
}

func TestResolveProjectScopedToTeam(t *testing.T) {
	s := trackertest.New(t)
	client := New(s.APIKey(), s.URL(), 0)
	ctx := context.Background()

	teamA, err := client.ResolveTeam(ctx, "Team A", "")
	if err != nil {
		t.Fatalf("ResolveTeam failed: %v", err)
	}
	teamB, err := client.ResolveTeam(ctx, "Team B", "")
	if err != nil {
		t.Fatalf("ResolveTeam failed: %v", err)
	}

	// Same project name under different teams resolves to different projects.
	projA, err := client.ResolveProject(ctx, teamA, "vision", "")
	if err != nil {
		t.Fatalf("ResolveProject failed: %v", err)
	}
	projB, err := client.ResolveProject(ctx, teamB, "vision", "")
	if err != nil {
		t.Fatalf("ResolveProject failed: %v", err)
	}
	if projA == projB {
		t.Fatalf("projects in different teams should differ, both %d", projA)
	}

	// Re-resolving within the same team is a lookup, not a create.
	again, err := client.ResolveProject(ctx, teamA, "vision", "")
	if err != nil {
		t.Fatalf("ResolveProject failed: %v", err)
	}
	if again != projA {
		t.Fatalf("expected %d, got %d", projA, again)
	}
	if n := s.RequestCount(http.MethodPost, "/teams/:id/projects"); n != 2 {
		t.Fatalf("expected 2 creates, got %d", n)
	}
}
