package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventAssignsID(t *testing.T) {
	a := NewEvent("user:1", KindIdentityVerified, "t", "b")
	b := NewEvent("user:1", KindIdentityVerified, "t", "b")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "user:1", a.Room)
}

func TestRoomChannel(t *testing.T) {
	assert.Equal(t, "room:user:42", RoomChannel("user:42"))
}

func TestEventJSONOmitsEmptyOptionalFields(t *testing.T) {
	b, err := json.Marshal(NewEvent("user:1", KindIdentityRegistered, "Welcome", "hello"))
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"email"`)
	assert.NotContains(t, string(b), `"data"`)
}
