package vmcore

// TileID is a monotonically increasing identifier exposed to scripts;
// never reused.
type TileID int64

type tileHandle int32

// Tile is a depth-sorted decorative element with no behavior: it exists
// only for rendering and explicit script queries.
type Tile struct {
	id     TileID
	handle tileHandle

	X, Y       Real
	Background BackgroundID
	SrcX, SrcY int32
	SrcW, SrcH int32
	ScaleX, ScaleY Real
	Blend      uint32
	Alpha      Real
	Visible    bool
	Depth      int32

	seq int64
}

// ID returns the tile's stable, never-reused script-visible ID.
func (t *Tile) ID() TileID { return t.id }

func newTile(id TileID, handle tileHandle, rt RoomTile) *Tile {
	return &Tile{
		id:         id,
		handle:     handle,
		X:          rt.X,
		Y:          rt.Y,
		Background: rt.Background,
		SrcX:       rt.SrcX,
		SrcY:       rt.SrcY,
		SrcW:       rt.SrcW,
		SrcH:       rt.SrcH,
		ScaleX:     1,
		ScaleY:     1,
		Blend:      0xFFFFFF,
		Alpha:      1,
		Visible:    true,
		Depth:      rt.Depth,
	}
}
