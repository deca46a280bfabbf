// Package device holds the static, derived device tables (C1 of the router
// core): the string table, the tile/tile-type indices, the pin-to-wire maps,
// and the wire-to-node relation that every other routing structure (the
// switch-box graphs, the inter-tile template, the pre-routed fan-in/out
// chains) is built from.
//
// Everything here is a pure function of a RawDevice — the abstract boundary
// the out-of-scope binary device-file decoder must satisfy (§1, §6 of the
// router spec: "device-description decoding... is specified only at its
// interface"). Derive never mutates its input and always produces the same
// Tables for the same RawDevice, which is what makes the on-disk cache in
// cache.go safe.
package device

// StringIdx indexes the device's string table. Tile names, wire names, pin
// names, and site names are all referenced by StringIdx rather than by
// value, mirroring the device-file's own string-interning scheme.
type StringIdx uint32

// PipKind distinguishes the two PIP flavors the spec's tile-type model
// tracks (§3 Tile type). Only PipConventional PIPs are routable inside
// CLE*/RCLK* tile types.
type PipKind uint8

const (
	PipConventional PipKind = iota
	PipOther
)

// Pip is a single programmable interconnect point local to a tile type:
// wire0 -> wire1, both given as indices into the tile type's own Wires
// slice (not global StringIdx values — see TileType.Wires).
type Pip struct {
	Wire0 uint32
	Wire1 uint32
	Kind  PipKind
}

// SitePin is one pin of a site, carrying the global wire-name index (a
// StringIdx, not a tile-local Pip index — see TileType.Wires) that the pin
// connects to when the site is the primary instance of its type inside its
// host tile — i.e. the entry the device file calls primaryPinsToTileWires.
type SitePin struct {
	NameIdx     StringIdx
	TileWireIdx StringIdx
}

// TileTypeSite is one site instance embedded in a tile type, already
// resolved to that tile type's wires. Its position within TileType.Sites
// is the "site-type-local index" pins2Wire is keyed by (§4.1); SiteTypeName
// is carried for site2TileType lookups and diagnostics only.
type TileTypeSite struct {
	SiteTypeName StringIdx
	Pins         []SitePin
}

// TileType is the shared template of all tiles sharing a type: its ordered
// wire-name table (tile-local wire indices 0..len(Wires)), its PIPs, and the
// site types it embeds.
type TileType struct {
	NameIdx     StringIdx
	Wires       []StringIdx
	Pips        []Pip
	Sites       []TileTypeSite
	IsCLEOrRCLK bool
}

// Tile is one concrete placed tile.
type Tile struct {
	NameIdx StringIdx
	TypeIdx uint32
	X, Y    int
}

// GlobalWire is a (tile, tile-local-wire) pair — the unit a Node groups.
type GlobalWire struct {
	TileNameIdx StringIdx
	WireNameIdx StringIdx
}

// NodeID indexes Tables.NodeWires.
type NodeID uint32

// PinKey is the (pin-name, site-type-local-index) composite key used by
// Pins2Wire, matching §4.1's pins2Wire[tile_type][(pin_name,
// site_type_local_idx)].
type PinKey struct {
	PinNameIdx      StringIdx
	SiteTypeLocalIx uint32
}

// SiteLocation records which tile (and which site-type-local slot within
// it) a named site occupies.
type SiteLocation struct {
	TileNameIdx     StringIdx
	TileTypeIdx     uint32
	SiteTypeLocalIx uint32
}
