package metadata

import (
	"testing"
	"time"

	"github.com/oklog/ulid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracklog(t *testing.T) {
	tl := NewTracklog(EventCreated)
	require.Len(t, tl, 1)

	ev := tl[0]
	assert.Equal(t, EventCreated, ev.Event)
	assert.NotEmpty(t, ev.User.ID)
	assert.NotEmpty(t, ev.Sysinfo.FmuGo)

	_, err := ulid.Parse(ev.ID)
	assert.NoError(t, err)

	assert.Equal(t, time.UTC, ev.Datetime.Location())
	assert.WithinDuration(t, time.Now(), ev.Datetime, time.Minute)
}

func TestTracklogExtend(t *testing.T) {
	tl := NewTracklog(EventCreated)
	tl = tl.Extend(EventUpdated)

	require.Len(t, tl, 2)
	assert.Equal(t, EventCreated, tl[0].Event)
	assert.Equal(t, EventUpdated, tl[1].Event)
	assert.NotEqual(t, tl[0].ID, tl[1].ID)
}
