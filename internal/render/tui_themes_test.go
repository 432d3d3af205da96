package render

import (
	"testing"
)

func TestTUIThemeFields(t *testing.T) {
	for _, theme := range AvailableTUIThemes() {
		t.Run(theme.Name, func(t *testing.T) {
			if theme.Name == "" {
				t.Error("theme has empty name")
			}
			if theme.Description == "" {
				t.Error("theme has empty description")
			}

			colors := []struct {
				name  string
				color string
			}{
				{"Background", string(theme.Background)},
				{"Surface", string(theme.Surface)},
				{"Border", string(theme.Border)},
				{"Primary", string(theme.Primary)},
				{"Secondary", string(theme.Secondary)},
				{"Accent", string(theme.Accent)},
				{"Warning", string(theme.Warning)},
				{"Error", string(theme.Error)},
				{"Text", string(theme.Text)},
				{"TextDim", string(theme.TextDim)},
				{"TextMute", string(theme.TextMute)},
			}

			for _, c := range colors {
				if len(c.color) != 7 || c.color[0] != '#' {
					t.Errorf("%s color %q should be a #RRGGBB hex value", c.name, c.color)
				}
			}
		})
	}
}

func TestTUIThemeByName(t *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{"tokyonight", true},
		{"catppuccin", true},
		{"nord", true},
		{"dracula", true},
		{"nonexistent", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			theme, ok := TUIThemeByName(tc.name)

			if ok != tc.expected {
				t.Errorf("TUIThemeByName(%q) ok = %v, want %v", tc.name, ok, tc.expected)
			}
			if ok && theme.Name != tc.name {
				t.Errorf("TUIThemeByName(%q) returned theme with name %q", tc.name, theme.Name)
			}
		})
	}
}

func TestResolveTUITheme(t *testing.T) {
	t.Run("known name", func(t *testing.T) {
		theme := ResolveTUITheme("dracula")
		if theme.Name != "dracula" {
			t.Errorf("expected 'dracula', got %q", theme.Name)
		}
	})

	t.Run("unknown name falls back to default", func(t *testing.T) {
		theme := ResolveTUITheme("nonexistent")
		if theme.Name != DefaultTUITheme.Name {
			t.Errorf("expected default theme %q, got %q", DefaultTUITheme.Name, theme.Name)
		}
	})

	t.Run("empty name falls back to default", func(t *testing.T) {
		theme := ResolveTUITheme("")
		if theme.Name != DefaultTUITheme.Name {
			t.Errorf("expected default theme %q, got %q", DefaultTUITheme.Name, theme.Name)
		}
	})
}

func TestAvailableTUIThemes(t *testing.T) {
	themes := AvailableTUIThemes()

	if len(themes) < 4 {
		t.Errorf("expected at least 4 themes, got %d", len(themes))
	}

	nameMap := make(map[string]bool)
	for _, theme := range themes {
		nameMap[theme.Name] = true
	}
	for _, name := range []string{"tokyonight", "catppuccin", "nord", "dracula"} {
		if !nameMap[name] {
			t.Errorf("expected theme %q not found in available themes", name)
		}
	}
}

func TestTUIThemeNames(t *testing.T) {
	names := TUIThemeNames()
	themes := AvailableTUIThemes()

	if len(names) != len(themes) {
		t.Fatalf("names count (%d) != themes count (%d)", len(names), len(themes))
	}
	for i, name := range names {
		if name != themes[i].Name {
			t.Errorf("name[%d] = %q, themes[%d].Name = %q", i, name, i, themes[i].Name)
		}
	}
}
