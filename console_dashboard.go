package trackAdmin

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Section names shared with the navigation layer.
const (
	SectionDashboard  = "dashboard"
	SectionUsers      = "users"
	SectionEvents     = "events"
	SectionFaceToFace = "face-to-face"
	SectionTracks     = "tracks"
	SectionConfig     = "config"
)

// Dashboard loads the four collections concurrently and returns their sizes.
func (c *Console) Dashboard(ctx context.Context) (DashboardCounts, error) {
	var (
		users      []User
		events     []Event
		faceToFace []FaceToFace
		tracks     []Track
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { users, err = c.Users().List(gctx); return err })
	g.Go(func() (err error) { events, err = c.Events().List(gctx); return err })
	g.Go(func() (err error) { faceToFace, err = c.FaceToFace().List(gctx); return err })
	g.Go(func() (err error) { tracks, err = c.Tracks().List(gctx); return err })
	if err := g.Wait(); err != nil {
		return DashboardCounts{}, err
	}
	return DashboardCounts{
		Users:      len(users),
		Events:     len(events),
		FaceToFace: len(faceToFace),
		Tracks:     len(tracks),
	}, nil
}

// EventFormOptions loads tracks and schedules for the event form.
func (c *Console) EventFormOptions(ctx context.Context) (EventFormOptions, error) {
	var out EventFormOptions
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Tracks, err = c.Tracks().List(gctx); return err })
	g.Go(func() (err error) { out.Schedules, err = c.Schedules(gctx); return err })
	if err := g.Wait(); err != nil {
		return EventFormOptions{}, err
	}
	return out, nil
}

// FaceToFaceFormOptions loads events, users and cars for the competition form.
func (c *Console) FaceToFaceFormOptions(ctx context.Context) (FaceToFaceFormOptions, error) {
	var out FaceToFaceFormOptions
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Events, err = c.Events().List(gctx); return err })
	g.Go(func() (err error) { out.Users, err = c.Users().List(gctx); return err })
	g.Go(func() (err error) { out.Cars, err = c.Cars().List(gctx); return err })
	if err := g.Wait(); err != nil {
		return FaceToFaceFormOptions{}, err
	}
	return out, nil
}

// FilterUsers keeps users whose name or email contains query, ignoring case.
// An empty query returns users unchanged.
func FilterUsers(users []User, query string) []User {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return users
	}
	out := make([]User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}

// SectionData is what LoadSection fetched; exactly one field group is set.
type SectionData struct {
	Section    string
	Dashboard  DashboardCounts
	Users      []User
	Events     []Event
	FaceToFace []FaceToFace
	Tracks     []Track
	Status     Status
}

// LoadSection fetches the data behind a navigation section. Unknown names
// load the dashboard.
func (c *Console) LoadSection(ctx context.Context, name string) (SectionData, error) {
	var (
		data = SectionData{Section: name}
		err  error
	)
	switch name {
	case SectionUsers:
		data.Users, err = c.Users().List(ctx)
	case SectionEvents:
		data.Events, err = c.Events().List(ctx)
	case SectionFaceToFace:
		data.FaceToFace, err = c.FaceToFace().List(ctx)
	case SectionTracks:
		data.Tracks, err = c.Tracks().List(ctx)
	case SectionConfig:
		data.Status = c.Status()
	default:
		data.Section = SectionDashboard
		data.Dashboard, err = c.Dashboard(ctx)
	}
	if err != nil {
		return SectionData{Section: data.Section}, err
	}
	return data, nil
}
