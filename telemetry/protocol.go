package telemetry

// Viewer protocol: JSON text envelopes for control messages, plus binary
// frames carrying msgpack-encoded sim snapshots at the stream rate.

// Server -> viewer message types
const (
	MsgHello = "hello"
	MsgError = "error"
)

// Viewer -> server message types
const (
	MsgInput = "input" // drive the player from a viewer
	MsgCast  = "cast"  // cast a fireball
)

// Envelope wraps all JSON messages with a type field.
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// HelloMsg is sent once after a viewer connects.
type HelloMsg struct {
	World    string `json:"world"`
	TickRate int    `json:"tick_rate"`
	TilesX   int    `json:"tiles_x"`
	TilesY   int    `json:"tiles_y"`
	TileW    int    `json:"tile_w"`
	TileH    int    `json:"tile_h"`
}

// InputMsg is a movement direction from a viewer acting as controller.
type InputMsg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ErrorMsg reports a protocol error to the viewer.
type ErrorMsg struct {
	Msg string `json:"msg"`
}
