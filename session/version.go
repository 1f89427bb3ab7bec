// Package session implements client-version detection from plugin messages, used to select legacy or
// modern hit-detection behaviour per player.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// LegacyProtocolThreshold is the protocol version below which a client is considered legacy.
const LegacyProtocolThreshold = 107

// Plugin message channels carrying client version information.
const (
	ChannelModDetails   = "vv:mod_details"
	ChannelProxyDetails = "vv:proxy_details"
	ChannelForwarder    = "velocity:player_info"
)

// Generation is the client generation resolved from the detected protocol version.
type Generation uint8

const (
	// GenerationUnknown is a client whose version has not been detected yet. Unknown clients are
	// treated as legacy, matching the server's primary audience.
	GenerationUnknown Generation = iota
	// GenerationLegacy is a client on a protocol older than 1.9.
	GenerationLegacy
	// GenerationModern is a client on protocol 1.9 or newer.
	GenerationModern
)

// Detector resolves and stores the protocol version of connected players.
type Detector struct {
	log     *slog.Logger
	players map[uuid.UUID]int32
}

// NewDetector returns an empty version detector.
func NewDetector(log *slog.Logger) *Detector {
	if log == nil {
		log = slog.Default()
	}
	return &Detector{log: log, players: make(map[uuid.UUID]int32)}
}

// versionPayload is the JSON payload of the mod/proxy details channels.
type versionPayload struct {
	Version     int32  `json:"version"`
	VersionName string `json:"versionName"`
}

// HandlePluginMessage parses a plugin message on one of the version channels and records the protocol
// version it carries. Messages on other channels are ignored.
func (d *Detector) HandlePluginMessage(player uuid.UUID, channel string, payload []byte) error {
	switch channel {
	case ChannelModDetails, ChannelProxyDetails:
		var msg versionPayload
		if err := json.Unmarshal(payload, &msg); err != nil {
			return fmt.Errorf("session: decoding %v payload: %w", channel, err)
		}
		d.players[player] = msg.Version
		d.log.Debug("client version detected", "player", player, "protocol", msg.Version, "name", msg.VersionName)
	case ChannelForwarder:
		id, protocol, err := parseForwarder(payload)
		if err != nil {
			return fmt.Errorf("session: decoding forwarder payload: %w", err)
		}
		d.players[id] = protocol
		d.log.Debug("client version forwarded", "player", id, "protocol", protocol)
	}
	return nil
}

// parseForwarder reads a Velocity forwarder payload: a 16-byte UUID followed by a VarInt protocol
// version.
func parseForwarder(payload []byte) (uuid.UUID, int32, error) {
	if len(payload) < 17 {
		return uuid.Nil, 0, errors.New("payload too short")
	}
	id, err := uuid.FromBytes(payload[:16])
	if err != nil {
		return uuid.Nil, 0, err
	}
	protocol, _, err := readVarint32(payload[16:])
	if err != nil {
		return uuid.Nil, 0, err
	}
	return id, protocol, nil
}

// readVarint32 reads a protocol VarInt from the head of the slice passed, returning the value and the
// number of bytes consumed.
func readVarint32(b []byte) (int32, int, error) {
	var (
		value uint32
		shift uint
	)
	for i, by := range b {
		value |= uint32(by&0x7f) << shift
		if by&0x80 == 0 {
			return int32(value), i + 1, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, 0, errors.New("varint too long")
		}
	}
	return 0, 0, errors.New("varint truncated")
}

// Protocol returns the detected protocol version of the player, if any.
func (d *Detector) Protocol(player uuid.UUID) (int32, bool) {
	v, ok := d.players[player]
	return v, ok
}

// Generation returns the client generation of the player.
func (d *Detector) Generation(player uuid.UUID) Generation {
	v, ok := d.players[player]
	if !ok {
		return GenerationUnknown
	}
	if v < LegacyProtocolThreshold {
		return GenerationLegacy
	}
	return GenerationModern
}

// Modern reports if the player runs a modern client requiring server-side swing raycasts.
func (d *Detector) Modern(player uuid.UUID) bool {
	return d.Generation(player) == GenerationModern
}

// Remove drops the stored version of the player, called on disconnect.
func (d *Detector) Remove(player uuid.UUID) {
	delete(d.players, player)
}
