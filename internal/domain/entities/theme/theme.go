// Package theme defines the named UI color palettes users can select in
// their preferences.
package theme

// DefaultName is the palette assigned to new accounts.
const DefaultName = "Cyber Dark"

// Palette holds the eight color roles every theme provides, as hex strings.
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	Success    string `json:"success"`
	Warning    string `json:"warning"`
	Error      string `json:"error"`
}

// Theme pairs a selectable name with its palette.
type Theme struct {
	Name    string  `json:"name"`
	Palette Palette `json:"palette"`
}

var catalog = []Theme{
	{
		Name: "Cyber Dark",
		Palette: Palette{
			Primary:    "#00D4FF",
			Secondary:  "#FF006B",
			Background: "#0A0A0B",
			Surface:    "#1A1A1B",
			Text:       "#FFFFFF",
			Success:    "#00FF88",
			Warning:    "#FFB700",
			Error:      "#FF4444",
		},
	},
	{
		Name: "Ocean Light",
		Palette: Palette{
			Primary:    "#0EA5E9",
			Secondary:  "#06B6D4",
			Background: "#E0F2FE",
			Surface:    "#F0F9FF",
			Text:       "#0F172A",
			Success:    "#10B981",
			Warning:    "#F59E0B",
			Error:      "#EF4444",
		},
	},
	{
		Name: "Sunset Glow",
		Palette: Palette{
			Primary:    "#F97316",
			Secondary:  "#EC4899",
			Background: "#1C1917",
			Surface:    "#292524",
			Text:       "#FAFAF9",
			Success:    "#22C55E",
			Warning:    "#EAB308",
			Error:      "#F87171",
		},
	},
	{
		Name: "Forest Night",
		Palette: Palette{
			Primary:    "#34D399",
			Secondary:  "#A3E635",
			Background: "#022C22",
			Surface:    "#064E3B",
			Text:       "#ECFDF5",
			Success:    "#4ADE80",
			Warning:    "#FBBF24",
			Error:      "#F87171",
		},
	},
	{
		Name: "Royal Purple",
		Palette: Palette{
			Primary:    "#A78BFA",
			Secondary:  "#F472B6",
			Background: "#1E1B4B",
			Surface:    "#312E81",
			Text:       "#EDE9FE",
			Success:    "#34D399",
			Warning:    "#FBBF24",
			Error:      "#FB7185",
		},
	},
}

// All returns every theme in presentation order.
func All() []Theme {
	out := make([]Theme, len(catalog))
	copy(out, catalog)
	return out
}

// Get returns the theme with the given name.
func Get(name string) (Theme, bool) {
	for _, t := range catalog {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Exists reports whether name is a selectable theme.
func Exists(name string) bool {
	_, ok := Get(name)
	return ok
}
