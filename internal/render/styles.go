package render

// Markdown style names shipped with glamour.
const (
	StyleAuto       = "auto"
	StyleASCII      = "ascii"
	StyleDark       = "dark"
	StyleDracula    = "dracula"
	StyleLight      = "light"
	StyleNoTTY      = "notty"
	StylePink       = "pink"
	StyleTokyoNight = "tokyo-night"
)

// NormalizeStyle maps friendly style names onto the names glamour
// understands. Unknown names pass through unchanged so custom style
// file paths keep working.
func NormalizeStyle(name string) string {
	switch name {
	case "tokyonight":
		return StyleTokyoNight
	case "":
		return StyleDark
	default:
		return name
	}
}

// IsBuiltinStyle returns true if the style is one of glamour's
// built-in styles rather than a file path.
func IsBuiltinStyle(style string) bool {
	switch NormalizeStyle(style) {
	case StyleAuto, StyleASCII, StyleDark, StyleDracula,
		StyleLight, StyleNoTTY, StylePink, StyleTokyoNight:
		return true
	default:
		return false
	}
}

// StyleInfo describes a markdown style for display purposes.
type StyleInfo struct {
	Name        string
	Description string
}

// AvailableStyles returns the built-in markdown styles.
func AvailableStyles() []StyleInfo {
	return []StyleInfo{
		{Name: StyleDark, Description: "Dark theme (default)"},
		{Name: StyleTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: StyleDracula, Description: "Dracula color scheme"},
		{Name: StyleLight, Description: "Light theme for bright terminals"},
		{Name: StylePink, Description: "Pink accent theme"},
		{Name: StyleAuto, Description: "Match the terminal background"},
		{Name: StyleNoTTY, Description: "Plain text (no styling)"},
		{Name: StyleASCII, Description: "ASCII-only output"},
	}
}

// StyleNames returns just the style names for selection.
func StyleNames() []string {
	infos := AvailableStyles()
	names := make([]string, len(infos))
	for i, s := range infos {
		names[i] = s.Name
	}
	return names
}
