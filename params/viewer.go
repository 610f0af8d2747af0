// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

// ColorMode selects which channels of the output image the viewer displays.
type ColorMode uint8

const (
	ColorGrayscale ColorMode = iota
	ColorAlpha
	ColorRGB
)

var colorModeNames = []string{"grayscale", "alpha", "rgb"}

func (c ColorMode) String() string { return enumName("color mode", colorModeNames, c) }

func (c ColorMode) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ColorMode) UnmarshalText(b []byte) error {
	v, err := parseEnum[ColorMode]("color mode", colorModeNames, string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Viewer holds display-only settings. Nothing in generation or export reads it.
type Viewer struct {
	ColorMode ColorMode `json:"color_mode"`
	Tiling    bool      `json:"tiling"`
	CenterX   float64   `json:"center_x"`
	CenterY   float64   `json:"center_y"`
	Slice     float64   `json:"slice"`
	Zoom      float64   `json:"zoom"`
}

// DefaultViewer returns a grayscale, untiled, unzoomed view.
func DefaultViewer() Viewer {
	return Viewer{ColorMode: ColorGrayscale}
}

// DarkMode selects the UI theme.
type DarkMode uint8

const (
	DarkModeAuto DarkMode = iota
	DarkModeDark
	DarkModeLight
)

var darkModeNames = []string{"auto", "dark", "light"}

func (d DarkMode) String() string { return enumName("dark mode", darkModeNames, d) }

func (d DarkMode) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DarkMode) UnmarshalText(b []byte) error {
	v, err := parseEnum[DarkMode]("dark mode", darkModeNames, string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// System holds application-wide display preferences.
type System struct {
	DarkMode DarkMode `json:"dark_mode"`
}
