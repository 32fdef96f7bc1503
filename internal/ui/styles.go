package ui

import "github.com/charmbracelet/lipgloss"

// Theme is a named color palette
type Theme struct {
	Name       string
	Primary    string
	Secondary  string
	Subtle     string
	Background string
	Text       string
	Error      string
	Success    string
}

// Themes holds every built-in palette keyed by name
var Themes = map[string]Theme{
	"default": {
		Name:       "default",
		Primary:    "#7D56F4",
		Secondary:  "#04B575",
		Subtle:     "#737373",
		Background: "#1A1A1A",
		Text:       "#FAFAFA",
		Error:      "#FF5F5F",
		Success:    "#04B575",
	},
	"catppuccin": {
		Name:       "catppuccin",
		Primary:    "#CBA6F7",
		Secondary:  "#94E2D5",
		Subtle:     "#6C7086",
		Background: "#1E1E2E",
		Text:       "#CDD6F4",
		Error:      "#F38BA8",
		Success:    "#A6E3A1",
	},
	"dracula": {
		Name:       "dracula",
		Primary:    "#BD93F9",
		Secondary:  "#8BE9FD",
		Subtle:     "#6272A4",
		Background: "#282A36",
		Text:       "#F8F8F2",
		Error:      "#FF5555",
		Success:    "#50FA7B",
	},
	"nord": {
		Name:       "nord",
		Primary:    "#88C0D0",
		Secondary:  "#A3BE8C",
		Subtle:     "#4C566A",
		Background: "#2E3440",
		Text:       "#ECEFF4",
		Error:      "#BF616A",
		Success:    "#A3BE8C",
	},
	"gruvbox": {
		Name:       "gruvbox",
		Primary:    "#FABD2F",
		Secondary:  "#8EC07C",
		Subtle:     "#928374",
		Background: "#282828",
		Text:       "#EBDBB2",
		Error:      "#FB4934",
		Success:    "#B8BB26",
	},
}

// GetThemeNames returns theme names in cycling order
func GetThemeNames() []string {
	return []string{"default", "catppuccin", "dracula", "nord", "gruvbox"}
}

// Styles holds all the UI styles
type Styles struct {
	Title     lipgloss.Style
	Normal    lipgloss.Style
	Help      lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
	HelpSep   lipgloss.Style
	Highlight lipgloss.Style
	Selected  lipgloss.Style
	Hidden    lipgloss.Style
	Folder    lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Border    lipgloss.Style
	Card      lipgloss.Style
	HeaderBar lipgloss.Style
	FooterBar lipgloss.Style

	theme Theme
}

// DefaultStyles returns the default style set
func DefaultStyles() Styles {
	return NewStyles(Themes["default"])
}

// NewStyles builds the style set for a theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.Primary)).
			PaddingTop(1).
			PaddingBottom(1),

		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Text)),

		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Subtle)).
			Italic(true),

		HelpKey: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.Primary)),

		HelpDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Subtle)),

		HelpSep: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Subtle)),

		Highlight: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.Secondary)),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.Primary)).
			Foreground(lipgloss.Color(theme.Background)),

		Hidden: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Subtle)).
			Strikethrough(true),

		Folder: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.Secondary)),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Error)),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Success)),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.Primary)).
			Padding(1, 3),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.Subtle)).
			Padding(0, 2),

		HeaderBar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color(theme.Subtle)).
			PaddingLeft(1),

		FooterBar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color(theme.Subtle)).
			PaddingLeft(1),

		theme: theme,
	}
}
