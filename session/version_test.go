package session_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/legacymc/combat/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectorModDetails(t *testing.T) {
	d := session.NewDetector(nil)
	id := uuid.New()

	require.NoError(t, d.HandlePluginMessage(id, session.ChannelModDetails, []byte(`{"version":47,"versionName":"1.8.9"}`)))
	v, ok := d.Protocol(id)
	require.True(t, ok)
	assert.Equal(t, int32(47), v)
	assert.Equal(t, session.GenerationLegacy, d.Generation(id))
	assert.False(t, d.Modern(id))
}

func TestDetectorProxyDetailsModern(t *testing.T) {
	d := session.NewDetector(nil)
	id := uuid.New()

	require.NoError(t, d.HandlePluginMessage(id, session.ChannelProxyDetails, []byte(`{"version":340,"versionName":"1.12.2"}`)))
	assert.Equal(t, session.GenerationModern, d.Generation(id))
	assert.True(t, d.Modern(id))
}

func TestDetectorForwarder(t *testing.T) {
	d := session.NewDetector(nil)
	id := uuid.New()

	payload := append([]byte{}, id[:]...)
	// VarInt 340 = 0xD4 0x02.
	payload = append(payload, 0xd4, 0x02)
	require.NoError(t, d.HandlePluginMessage(uuid.New(), session.ChannelForwarder, payload))

	v, ok := d.Protocol(id)
	require.True(t, ok)
	assert.Equal(t, int32(340), v)
}

func TestDetectorThreshold(t *testing.T) {
	d := session.NewDetector(nil)
	id := uuid.New()

	require.NoError(t, d.HandlePluginMessage(id, session.ChannelModDetails, []byte(`{"version":106}`)))
	assert.Equal(t, session.GenerationLegacy, d.Generation(id))

	require.NoError(t, d.HandlePluginMessage(id, session.ChannelModDetails, []byte(`{"version":107}`)))
	assert.Equal(t, session.GenerationModern, d.Generation(id))
}

func TestDetectorUnknownAndMalformed(t *testing.T) {
	d := session.NewDetector(nil)
	id := uuid.New()

	assert.Equal(t, session.GenerationUnknown, d.Generation(id))
	assert.False(t, d.Modern(id))

	assert.Error(t, d.HandlePluginMessage(id, session.ChannelModDetails, []byte(`not json`)))
	assert.Error(t, d.HandlePluginMessage(id, session.ChannelForwarder, []byte{1, 2, 3}))
	assert.NoError(t, d.HandlePluginMessage(id, "unrelated:channel", []byte{1, 2, 3}))

	d.Remove(id)
	_, ok := d.Protocol(id)
	assert.False(t, ok)
}
