// Package export rasterizes crawl maps into the fixed two-panel sheet:
// hex map and legend on the left, feature details on the right. The
// screen is drawn supersampled and downsampled for clean strokes, and
// can be encoded to PNG or handed to an interactive front end.
package export

// Layout fixes the sheet geometry. All values are base-resolution
// pixels; font sizes are points at 72 DPI.
type Layout struct {
	Width  int // canvas size
	Height int

	Margin int // outer frame inset

	SplitX int // x of the vertical panel divider

	LeftPad   int // left panel padding inside the frame
	RightPad  int
	TopPad    int
	BottomPad int

	HexInsetTop    int // extra insets around the auto-fit hex box
	HexInsetSides  int
	HexInsetBottom int

	LegendPushFromHex    int // min px between legend and the hex's right edge
	LegendSafeFromSplit  int // min px between legend and the split line
	LegendRightMargin    int
	LegendTopMinAboveHex int
	LegendBottomMargin   int

	CompassOffsetX int // compass center, measured from the frame's bottom-left
	CompassOffsetY int

	TitleSize   int // "HEX:" header and feature name cap
	BodySize    int // description and panel body text
	FeatureSize int // feature type line cap

	CellsAcross  int     // small hexes across the big hex diameter
	DiamondScale float64 // glyph radius as a fraction of the cell edge
}

// DefaultLayout is the standard 648x480 sheet.
var DefaultLayout = Layout{
	Width:  648,
	Height: 480,

	Margin: 12,

	SplitX: 400,

	LeftPad:   16,
	RightPad:  16,
	TopPad:    8,
	BottomPad: 10,

	HexInsetTop:    6,
	HexInsetSides:  0,
	HexInsetBottom: 8,

	LegendPushFromHex:    16,
	LegendSafeFromSplit:  6,
	LegendRightMargin:    1,
	LegendTopMinAboveHex: 24,
	LegendBottomMargin:   10,

	CompassOffsetX: 52,
	CompassOffsetY: 48,

	TitleSize:   34,
	BodySize:    14,
	FeatureSize: 18,

	CellsAcross:  6,
	DiamondScale: 0.55,
}
