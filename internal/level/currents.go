package level

import (
	"errors"
	"fmt"

	"github.com/retroenv/bblevel/internal/layout"
)

// ErrInvalidCopyChain is returned when a copy level refers to an invalid source.
var ErrInvalidCopyChain = errors.New("invalid bubble current copy chain")

// CurrentKind defines how the bubble currents of a level are stored.
type CurrentKind uint8

// Bubble current kinds.
const (
	Rectangles CurrentKind = iota // own list of entries
	Copy                          // identical to the currents of another level
)

// Currents contains the bubble current regions of a level.
type Currents struct {
	Kind    CurrentKind
	Source  int     // source level index for Copy
	Entries []Entry // entries for Rectangles

	ZeroHeader bool // empty record stored with a header of 0 instead of 1
}

// Entry is a bubble current stream entry, either a rectangle or a symmetry marker.
type Entry struct {
	Mirror    bool // symmetry marker
	Marker    byte // stored value of the symmetry marker, 0x00-0x7F
	Rectangle Rectangle
}

// Rectangle is a region of tiles with a current direction.
type Rectangle struct {
	Left      int
	Top       int
	Width     int
	Height    int
	Direction uint8
	Padding   bool // unused bit of the third rectangle byte
}

// Mirror returns the rectangle reflected onto the opposite half of the level.
func (r Rectangle) Mirror() Rectangle {
	r.Left = layout.Columns - r.Left - r.Width
	return r
}

// CheckCopySource verifies that the copy level at the given index refers to
// another level that has its own rectangle list.
func CheckCopySource(levels []Level, index int) error {
	source := levels[index].Currents.Source
	if source == index || source < 0 || source >= len(levels) {
		return fmt.Errorf("%w: level %d copies level %d", ErrInvalidCopyChain, index, source)
	}
	if levels[source].Currents.Kind == Copy {
		return fmt.Errorf("%w: level %d copies copy level %d", ErrInvalidCopyChain, index, source)
	}
	return nil
}

// ResolveRectangles returns the effective rectangles of the level at the given index.
// A copy level resolves to the rectangles of its source and symmetry markers are
// expanded by mirroring all rectangles that precede them.
func ResolveRectangles(levels []Level, index int) ([]Rectangle, error) {
	if index < 0 || index >= len(levels) {
		return nil, fmt.Errorf("level index %d out of range", index)
	}
	currents := levels[index].Currents
	if currents.Kind == Copy {
		if err := CheckCopySource(levels, index); err != nil {
			return nil, err
		}
		currents = levels[currents.Source].Currents
	}

	var rects []Rectangle
	for _, entry := range currents.Entries {
		if !entry.Mirror {
			rects = append(rects, entry.Rectangle)
			continue
		}
		n := len(rects)
		for i := 0; i < n; i++ {
			rects = append(rects, rects[i].Mirror())
		}
	}
	return rects, nil
}

// CheckList verifies that the list contains all levels in index order.
func CheckList(levels []Level) error {
	if len(levels) != layout.Levels {
		return fmt.Errorf("level list has %d entries, expected %d", len(levels), layout.Levels)
	}
	for i := range levels {
		if levels[i].Index != i {
			return fmt.Errorf("level at position %d has index %d", i, levels[i].Index)
		}
	}
	return nil
}
