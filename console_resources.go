package trackAdmin

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// Resource is a typed CRUD client for one collection endpoint.
type Resource[T any] struct {
	c            *Console
	path         string
	label        string
	updateMethod string
}

func newResource[T any](c *Console, path, label, updateMethod string) Resource[T] {
	return Resource[T]{c: c, path: path, label: label, updateMethod: updateMethod}
}

func (r Resource[T]) item(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

func (r Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.Do(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.c.Do(ctx, http.MethodGet, r.item(id), nil, &out)
	return out, err
}

func (r Resource[T]) Create(ctx context.Context, v T) (T, error) {
	var out T
	if err := r.c.Do(ctx, http.MethodPost, r.path, v, &out); err != nil {
		return out, err
	}
	r.c.notify(ctx, NoticeSuccess, "create "+r.label, capitalize(r.label)+" created", nil)
	return out, nil
}

// Update replaces the record with the collection's update verb (PUT for
// users, PATCH elsewhere).
func (r Resource[T]) Update(ctx context.Context, id int64, v T) (T, error) {
	var out T
	if err := r.c.Do(ctx, r.updateMethod, r.item(id), v, &out); err != nil {
		return out, err
	}
	r.c.notify(ctx, NoticeSuccess, "update "+r.label, capitalize(r.label)+" updated", nil)
	return out, nil
}

// Patch sends a partial update.
func (r Resource[T]) Patch(ctx context.Context, id int64, fields map[string]any) (T, error) {
	var out T
	if err := r.c.Do(ctx, http.MethodPatch, r.item(id), fields, &out); err != nil {
		return out, err
	}
	r.c.notify(ctx, NoticeSuccess, "update "+r.label, capitalize(r.label)+" updated", nil)
	return out, nil
}

func (r Resource[T]) Delete(ctx context.Context, id int64) error {
	if err := r.c.Do(ctx, http.MethodDelete, r.item(id), nil, nil); err != nil {
		return err
	}
	r.c.notify(ctx, NoticeSuccess, "delete "+r.label, capitalize(r.label)+" deleted", nil)
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (c *Console) Users() Resource[User] {
	return newResource[User](c, "/api/users", "user", http.MethodPut)
}

func (c *Console) Events() Resource[Event] {
	return newResource[Event](c, "/api/events", "event", http.MethodPatch)
}

func (c *Console) Tracks() Resource[Track] {
	return newResource[Track](c, "/api/tracks", "track", http.MethodPatch)
}

func (c *Console) FaceToFace() Resource[FaceToFace] {
	return newResource[FaceToFace](c, "/api/face-to-face", "competition", http.MethodPatch)
}

// CarsClient covers the car endpoints, which are list and create only.
type CarsClient struct {
	c *Console
}

func (c *Console) Cars() CarsClient {
	return CarsClient{c: c}
}

func (cc CarsClient) List(ctx context.Context) ([]Car, error) {
	var out []Car
	if err := cc.c.Do(ctx, http.MethodGet, "/api/cars", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (cc CarsClient) ListByUser(ctx context.Context, userID int64) ([]Car, error) {
	var out []Car
	if err := cc.c.Do(ctx, http.MethodGet, "/api/cars/user/"+strconv.FormatInt(userID, 10), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (cc CarsClient) Create(ctx context.Context, car Car) (Car, error) {
	var out Car
	if err := cc.c.Do(ctx, http.MethodPost, "/api/cars", car, &out); err != nil {
		return out, err
	}
	cc.c.notify(ctx, NoticeSuccess, "create car", "Car created", nil)
	return out, nil
}

func (c *Console) Schedules(ctx context.Context) ([]Schedule, error) {
	var out []Schedule
	if err := c.Do(ctx, http.MethodGet, "/api/schedules", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
