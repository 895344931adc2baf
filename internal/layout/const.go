package layout

// Fixed dimensions of the level data format.
const (
	Levels    = 100
	BossLevel = Levels - 1

	Rows         = 25
	Columns      = 32
	InteriorRows = Rows - 2

	AsymmetricRowBytes = Columns / 8
	SymmetricRowBytes  = AsymmetricRowBytes / 2

	AsymmetricTileBytes = InteriorRows * AsymmetricRowBytes
	SymmetricTileBytes  = InteriorRows * SymmetricRowBytes

	GlyphBytes    = 8
	SidebarGlyphs = 4
	SidebarBytes  = SidebarGlyphs * GlyphBytes

	MonsterRecordBytes = 3
	MaxCurrentRecord   = 0x7F
)
