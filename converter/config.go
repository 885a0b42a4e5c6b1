package converter

import "fmt"

// OrderedListStyle controls ordered list numbering.
type OrderedListStyle string

const (
	OrderedIncremental OrderedListStyle = "incremental"
	OrderedLazy        OrderedListStyle = "lazy"
)

// UnknownPolicy controls behavior for block types the renderer cannot express.
type UnknownPolicy string

const (
	UnknownError       UnknownPolicy = "error"
	UnknownSkip        UnknownPolicy = "skip"
	UnknownPlaceholder UnknownPolicy = "placeholder"
)

// Config holds block to Markdown rendering options.
type Config struct {
	BulletMarker     rune             `json:"bulletMarker,omitempty"`
	OrderedListStyle OrderedListStyle `json:"orderedListStyle,omitempty"`
	UnknownBlocks    UnknownPolicy    `json:"unknownBlocks,omitempty"`
}

func (c Config) applyDefaults() Config {
	if c.BulletMarker == 0 {
		c.BulletMarker = '-'
	}
	if c.OrderedListStyle == "" {
		c.OrderedListStyle = OrderedIncremental
	}
	if c.UnknownBlocks == "" {
		c.UnknownBlocks = UnknownPlaceholder
	}
	return c
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.BulletMarker != '-' && c.BulletMarker != '*' && c.BulletMarker != '+' {
		return fmt.Errorf("invalid bulletMarker %q: must be one of -, *, +", c.BulletMarker)
	}
	if c.OrderedListStyle != OrderedIncremental && c.OrderedListStyle != OrderedLazy {
		return fmt.Errorf("invalid orderedListStyle %q", c.OrderedListStyle)
	}
	if c.UnknownBlocks != UnknownError && c.UnknownBlocks != UnknownSkip && c.UnknownBlocks != UnknownPlaceholder {
		return fmt.Errorf("invalid unknownBlocks policy %q", c.UnknownBlocks)
	}
	return nil
}
