package trackAdmin

import "time"

// Operator is the authenticated account as reported by the login response.
type Operator struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// User is a participant record.
type User struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Motto     string `json:"motto,omitempty"`
	Sponsors  string `json:"sponsors,omitempty"`
}

// TrackConfig is one layout of a track.
type TrackConfig struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Track struct {
	ID             int64         `json:"id,omitempty"`
	State          string        `json:"state"`
	Address        string        `json:"address"`
	ThumbnailURL   string        `json:"thumbnailUrl,omitempty"`
	InstructionURL string        `json:"instructionUrl,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	TrackConfigs   []TrackConfig `json:"trackConfigs,omitempty"`
}

type Event struct {
	ID             int64   `json:"id,omitempty"`
	Date           string  `json:"date"`
	EventType      string  `json:"eventType"`
	TrackID        int64   `json:"trackId,omitempty"`
	ScheduleID     int64   `json:"scheduleId,omitempty"`
	DriverLimit    int     `json:"driverLimit,omitempty"`
	SpectatorLimit int     `json:"spectatorLimit,omitempty"`
	DriverPrice    float64 `json:"driverPrice"`
	SpectatorPrice float64 `json:"spectatorPrice"`
	Track          *Track  `json:"track,omitempty"`
}

// FaceToFace is a head-to-head competition between two users and their cars.
type FaceToFace struct {
	ID          int64  `json:"id,omitempty"`
	StartTime   string `json:"startTime"`
	EventID     int64  `json:"eventId"`
	User1ID     int64  `json:"user1Id"`
	User2ID     int64  `json:"user2Id"`
	AutoUser1ID int64  `json:"autoUser1Id,omitempty"`
	AutoUser2ID int64  `json:"autoUser2Id,omitempty"`
	UserPhoto1  string `json:"userPhoto1,omitempty"`
	UserPhoto2  string `json:"userPhoto2,omitempty"`
	AutoPhoto1  string `json:"autoPhoto1,omitempty"`
	AutoPhoto2  string `json:"autoPhoto2,omitempty"`
}

type Car struct {
	ID         int64  `json:"id,omitempty"`
	UserID     int64  `json:"userId,omitempty"`
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	Horsepower int    `json:"horsepower,omitempty"`
}

type Schedule struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DashboardCounts holds the four dashboard tiles.
type DashboardCounts struct {
	Users      int `json:"users"`
	Events     int `json:"events"`
	FaceToFace int `json:"faceToFace"`
	Tracks     int `json:"tracks"`
}

// EventFormOptions feeds the track and schedule pickers of the event form.
type EventFormOptions struct {
	Tracks    []Track
	Schedules []Schedule
}

// FaceToFaceFormOptions feeds the event, participant and car pickers.
type FaceToFaceFormOptions struct {
	Events []Event
	Users  []User
	Cars   []Car
}

// Status is the configuration view. It never carries the token itself.
type Status struct {
	APIBaseURL   string    `json:"apiBaseUrl"`
	Authorized   bool      `json:"authorized"`
	AccessExpiry time.Time `json:"accessExpiry,omitempty"`
	MonitorArmed bool      `json:"monitorArmed"`
}

// AuthLabel renders the authorization state the way the config view shows it.
func (s Status) AuthLabel() string {
	if s.Authorized {
		return "authorized"
	}
	return "not authorized"
}
