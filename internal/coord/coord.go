// Package coord packs the (x, y, tile-type) and (tile, wire) identities the
// router core keys its maps on into single integers, the way the original
// Routino core does with tileToKey/getKeyTileWire: cheap to hash, cheap to
// compare, no tuple allocation on the hot A* path.
package coord

// TileKey uniquely identifies a concrete tile by its grid position and tile
// type. Packing follows the original layout (x<<17 | y<<8 | type) so the
// valid ranges are x < 2^15, y < 2^9 and type < 256; within those ranges
// the key fits in 32 bits, which TileWire and PackResource rely on when
// they shift it up by 32.
type TileKey uint64

// TileToKey packs a tile's coordinates and type into a TileKey.
func TileToKey(x, y int, tileType uint32) TileKey {
	return TileKey(uint64(int64(x))<<17 | uint64(uint32(y))<<8 | uint64(tileType))
}

// TileWireKey uniquely identifies a (tile, wire-name-index) pair, used as
// the key of the A* search's "parent" map (§4.6) — one entry per
// destination edge discovered during a single findPath call.
type TileWireKey uint64

// TileWire packs a TileKey and a wire-name index into a TileWireKey.
func TileWire(key TileKey, wireNameIdx uint32) TileWireKey {
	return TileWireKey(uint64(key)<<32 | uint64(wireNameIdx))
}

// TileWireAt is a convenience wrapper combining TileToKey and TileWire.
func TileWireAt(x, y int, tileType uint32, wireNameIdx uint32) TileWireKey {
	return TileWire(TileToKey(x, y, tileType), wireNameIdx)
}

// ResourceKey uniquely identifies one wire_resource: a concrete tile plus
// the dense PipGraph vertex id local to that tile's type. Used as the key
// of the negotiated-congestion loop's conflictWires set (§4.6 steps 4-5).
type ResourceKey uint64

// PackResource packs a TileKey and a PipGraph vertex id into a
// ResourceKey. vertex is a pipgraph.VertexID; the concrete type isn't
// imported here to keep coord free of a dependency on pipgraph.
func PackResource(key TileKey, vertex int32) ResourceKey {
	return ResourceKey(uint64(key)<<32 | uint64(uint32(vertex)))
}

// UnpackResource reverses PackResource.
func UnpackResource(k ResourceKey) (TileKey, int32) {
	return TileKey(uint64(k) >> 32), int32(uint32(k))
}
