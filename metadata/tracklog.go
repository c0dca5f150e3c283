package metadata

import (
	"math/rand"
	"os"
	"os/user"
	"runtime"
	"time"

	"github.com/oklog/ulid"

	"github.com/fmuio/fmu-go/version"
)

// TracklogEventType is the kind of event recorded on a document.
type TracklogEventType string

const (
	EventCreated TracklogEventType = "created"
	EventUpdated TracklogEventType = "updated"
	EventMerged  TracklogEventType = "merged"
)

// SystemInformation describes the system the event happened on.
type SystemInformation struct {
	FmuGo           string `json:"fmu-go,omitempty"`
	Hostname        string `json:"hostname,omitempty"`
	OperatingSystem string `json:"operating_system,omitempty"`
}

// TracklogEvent is one record in the append-only audit trail.
type TracklogEvent struct {
	ID       string            `json:"id"`
	Datetime time.Time         `json:"datetime"`
	User     User              `json:"user"`
	Event    TracklogEventType `json:"event"`
	Sysinfo  SystemInformation `json:"sysinfo"`
}

// Tracklog is the ordered, append-only audit trail embedded in a document.
type Tracklog []TracklogEvent

// NewTracklog returns a tracklog holding one event of the given type.
func NewTracklog(event TracklogEventType) Tracklog {
	return Tracklog{newTracklogEvent(event)}
}

// Extend appends one event of the given type.
func (t Tracklog) Extend(event TracklogEventType) Tracklog {
	return append(t, newTracklogEvent(event))
}

func newTracklogEvent(event TracklogEventType) TracklogEvent {
	hostname, _ := os.Hostname()
	return TracklogEvent{
		ID:       ULID(),
		Datetime: time.Now().UTC(),
		User:     User{ID: currentUser()},
		Event:    event,
		Sysinfo: SystemInformation{
			FmuGo:           version.Version,
			Hostname:        hostname,
			OperatingSystem: runtime.GOOS,
		},
	}
}

// ULID generates a string representation of a ULID.
func ULID() string {
	now := time.Now()
	entropy := rand.New(rand.NewSource(now.UnixNano()))
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
