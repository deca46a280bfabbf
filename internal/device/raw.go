package device

// RawDevice is the abstract interface the (out-of-scope, per spec §1)
// device-file decoder must implement. Derive consumes only these five
// accessors — it never looks at the underlying binary format — so a real
// decoder can sit behind RawDevice without this package knowing or caring
// whether the bytes came from a vendor device archive, a test fixture, or a
// previous run's cache.
type RawDevice struct {
	Strings   []string
	Tiles     []Tile
	TileTypes []TileType
	// Nodes lists, for every electrically-equivalent set of wires, its
	// member GlobalWires. A node with one member is a "bounce" per §4.3.
	Nodes [][]GlobalWire
	// Sites maps a site's name index to the tile and site-type-local slot
	// it occupies, the raw form of §4.1's site2TileType.
	Sites map[StringIdx]SiteLocation
}
