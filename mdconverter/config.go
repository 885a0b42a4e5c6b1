package mdconverter

import (
	"fmt"
	"strings"
)

// FrontMatterMode controls how a leading front matter block is treated.
type FrontMatterMode string

const (
	// FrontMatterStrip removes front matter and returns it in Result.FrontMatter.
	FrontMatterStrip FrontMatterMode = "strip"
	// FrontMatterKeep converts front matter as ordinary markdown.
	FrontMatterKeep FrontMatterMode = "keep"
)

// Config configures Markdown to block conversion behavior.
type Config struct {
	FrontMatter   FrontMatterMode   `json:"frontMatter,omitempty"`
	HeadingOffset int               `json:"headingOffset,omitempty"`
	LanguageMap   map[string]string `json:"languageMap,omitempty"`
}

func (c Config) applyDefaults() Config {
	if c.FrontMatter == "" {
		c.FrontMatter = FrontMatterStrip
	}
	return c
}

func (c Config) clone() Config {
	cloned := c
	cloned.LanguageMap = cloneStringMap(c.LanguageMap)
	return cloned
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.FrontMatter != FrontMatterStrip && c.FrontMatter != FrontMatterKeep {
		return fmt.Errorf("invalid frontMatter %q", c.FrontMatter)
	}

	if c.HeadingOffset < -5 || c.HeadingOffset > 5 {
		return fmt.Errorf("headingOffset must be between -5 and 5, got %d", c.HeadingOffset)
	}

	for from, to := range c.LanguageMap {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return fmt.Errorf("languageMap keys and values must be non-empty")
		}
	}

	return nil
}

func cloneStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}

	dst := make(map[string]string, len(src))
	for key, value := range src {
		dst[strings.ToLower(strings.TrimSpace(key))] = value
	}

	return dst
}
