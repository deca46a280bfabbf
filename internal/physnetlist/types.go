// Package physnetlist defines the abstract external net representation C7
// (internal/adapter) converts to and from router-ready Nets, per §6: "the
// core requires only the abstract entities enumerated in §3" and decoding
// the real vendor physical-netlist format is out of scope (§1). Net,
// Pin, and Pip here stand in for whatever a real decoder would produce;
// jsonio.go gives them a runnable on-disk form so the CLI driver and tests
// have something concrete to read and write.
package physnetlist

// Pin names a site pin: the site instance and the pin name on it. Both are
// resolved against the device's site2TileType/pins2Wire tables during
// ingest (§4.7).
type Pin struct {
	Site string `json:"site"`
	Pin  string `json:"pin"`
}

// Pip is one programmable interconnect point in the external
// representation, named by the tile it lives in and its two wire names —
// the on-disk analogue of the device model's (tile-local) Pip, but keyed
// by name instead of by tile-type-local index since the external format
// has no notion of a shared tile type.
type Pip struct {
	Tile  string `json:"tile"`
	Wire0 string `json:"wire0"`
	Wire1 string `json:"wire1"`
}

// Net is one net of the external netlist: its source pins, the sink pins
// still awaiting a route ("stubs"), and — for nets the placer/earlier
// stage already routed outright, such as clock nets — the fixed PIPs
// already committed to it. Per §4.7, a net with no stubs, or with any PIP
// already present, is treated as already routed and is skipped by the
// adapter rather than handed to the router.
type Net struct {
	Name    string `json:"name"`
	Sources []Pin  `json:"sources"`
	Stubs   []Pin  `json:"stubs"`
	Pips    []Pip  `json:"pips,omitempty"`
}

// Design is the top-level document: every net of one placed design.
type Design struct {
	Nets []Net `json:"nets"`
}
