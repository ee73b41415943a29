package smsggcore

// Region selects the console's clock rate and V counter jump table; only
// NTSC timing is implemented (see DESIGN.md), but the field is retained so
// cartridge region autodetection has somewhere to report to.
type Region int

const (
	RegionDomestic Region = iota
	RegionInternational
)

// Config is the SMS/GG emulator's hardware and presentation configuration.
type Config struct {
	GameGear bool
	Region   Region

	RemoveSpriteLimit bool // when true, renderSprites' 8-per-line cap is lifted
}
