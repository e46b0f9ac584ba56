// Package sandbox implements the metered bot-execution contract: a bot is a
// WASM module exporting run_turn(budget_hint) -> i32 plus linear memory of
// at least one page; the harness meters fuel, caps memory, writes a
// visibility map into the bot's memory before each call, and exposes a
// fixed host-function surface under the "env" module.
package sandbox

import "github.com/ensigame/ensi/pkg/game"

const (
	// TileMapBase is the fixed linear-memory address the harness writes
	// the observation push to before every run_turn call.
	TileMapBase = 0x10000
	// TileMapHeaderSize is the size in bytes of the header preceding the
	// packed tile array.
	TileMapHeaderSize = 16
	// DefaultMemoryLimit is the default cap (bytes) on a bot's linear memory.
	DefaultMemoryLimit = 1024 * 1024
	// DefaultFuelBudget is the default per-turn compute budget.
	DefaultFuelBudget = 50_000
	// MaxCommandsPerTurn bounds the per-turn command buffer; overflow is
	// rejection, not a trap.
	MaxCommandsPerTurn = 1024

	tileTypeFog  = 255
	ownerFog     = 255
	fogPackedU32 = 0x0000_FFFF
)

// magic is the 4-byte tag 'E','N','S','I' written little-endian as a u32
// (bytes E,N,S,I in that order).
var magic = [4]byte{'E', 'N', 'S', 'I'}

func packTile(t game.Tile) uint32 {
	army := t.Army
	if army > 0xFFFF {
		army = 0xFFFF
	}
	return uint32(t.Type) | uint32(t.Owner)<<8 | army<<16
}

// fogTile is the packed value written for a coordinate the observing
// player cannot currently see.
const fogTile uint32 = tileTypeFog | ownerFog<<8

// writeObservation serializes the header and packed tile array for
// playerID's current visibility into dst, which must be at least
// TileMapHeaderSize+4*width*height bytes. visible reports whether coord is
// visible to the observing player.
func writeObservation(dst []byte, width, height uint16, turn uint32, playerID game.PlayerID, m *game.Map, visible func(game.Coord) bool) {
	dst[0], dst[1], dst[2], dst[3] = magic[0], magic[1], magic[2], magic[3]
	putU16(dst[4:6], width)
	putU16(dst[6:8], height)
	putU32(dst[8:12], turn)
	putU16(dst[12:14], uint16(playerID))
	dst[14], dst[15] = 0, 0

	offset := TileMapHeaderSize
	m.Iterate(func(c game.Coord, t game.Tile) bool {
		var packed uint32
		if visible(c) {
			packed = packTile(t)
		} else {
			packed = fogTile
		}
		putU32(dst[offset:offset+4], packed)
		offset += 4
		return true
	})
}

func putU16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// ObservationSize returns the total byte length of the observation region
// for a width x height map.
func ObservationSize(width, height uint16) int {
	return TileMapHeaderSize + 4*int(width)*int(height)
}
