package trackAdmin

import (
	"context"
	"errors"
	"testing"
)

func seedDashboard(h *consoleHarness) {
	h.backend.Seed("users",
		map[string]any{"name": "Ana Diaz", "email": "ana@example.com"},
		map[string]any{"name": "Bo Lind", "email": "BO@track.example"},
		map[string]any{"name": "Cy Moss", "email": "cy@example.com"},
	)
	h.backend.Seed("events", map[string]any{"date": "2026-05-01", "eventType": "drift"})
	h.backend.Seed("tracks",
		map[string]any{"state": "open", "address": "1 Ring Rd"},
		map[string]any{"state": "closed", "address": "2 Loop Ln"},
	)
	h.backend.Seed("schedules", map[string]any{"name": "Summer"})
	h.backend.Seed("cars", map[string]any{"brand": "Mazda", "model": "MX-5", "userId": 1})
}

func TestDashboardCountsCollections(t *testing.T) {
	h := newHarness(t)
	seedDashboard(h)
	h.login(t)

	counts, err := h.console.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	want := DashboardCounts{Users: 3, Events: 1, FaceToFace: 0, Tracks: 2}
	if counts != want {
		t.Fatalf("counts = %+v want %+v", counts, want)
	}
}

func TestDashboardWithoutSessionFails(t *testing.T) {
	h := newHarness(t)
	if _, err := h.console.Dashboard(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestFormOptionsLoadConcurrently(t *testing.T) {
	h := newHarness(t)
	seedDashboard(h)
	h.login(t)

	ev, err := h.console.EventFormOptions(context.Background())
	if err != nil {
		t.Fatalf("EventFormOptions failed: %v", err)
	}
	if len(ev.Tracks) != 2 || len(ev.Schedules) != 1 || ev.Schedules[0].Name != "Summer" {
		t.Fatalf("unexpected event options %+v", ev)
	}

	ff, err := h.console.FaceToFaceFormOptions(context.Background())
	if err != nil {
		t.Fatalf("FaceToFaceFormOptions failed: %v", err)
	}
	if len(ff.Events) != 1 || len(ff.Users) != 3 || len(ff.Cars) != 1 {
		t.Fatalf("unexpected face-to-face options %+v", ff)
	}
}

func TestFilterUsers(t *testing.T) {
	users := []User{
		{ID: 1, Name: "Ana Diaz", Email: "ana@example.com"},
		{ID: 2, Name: "Bo Lind", Email: "BO@track.example"},
	}
	tests := []struct {
		query string
		want  []int64
	}{
		{"", []int64{1, 2}},
		{"  ", []int64{1, 2}},
		{"diaz", []int64{1}},
		{"track.EXAMPLE", []int64{2}},
		{"example", []int64{1, 2}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		got := FilterUsers(users, tt.query)
		if len(got) != len(tt.want) {
			t.Fatalf("FilterUsers(%q) = %+v", tt.query, got)
		}
		for i, u := range got {
			if u.ID != tt.want[i] {
				t.Fatalf("FilterUsers(%q) = %+v", tt.query, got)
			}
		}
	}
}

func TestLoadSection(t *testing.T) {
	h := newHarness(t)
	seedDashboard(h)
	h.login(t)
	ctx := context.Background()

	data, err := h.console.LoadSection(ctx, SectionTracks)
	if err != nil || data.Section != SectionTracks || len(data.Tracks) != 2 {
		t.Fatalf("tracks section = %+v, %v", data, err)
	}

	data, err = h.console.LoadSection(ctx, SectionConfig)
	if err != nil || !data.Status.Authorized || data.Status.APIBaseURL != h.server.URL {
		t.Fatalf("config section = %+v, %v", data, err)
	}

	data, err = h.console.LoadSection(ctx, "no-such-section")
	if err != nil || data.Section != SectionDashboard || data.Dashboard.Users != 3 {
		t.Fatalf("unknown section = %+v, %v", data, err)
	}
}
