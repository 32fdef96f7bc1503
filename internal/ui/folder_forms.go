package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mcao2/button-layout/internal/layout"
)

// formTheme picks the huh theme closest to a palette name.
func formTheme(name string) *huh.Theme {
	switch name {
	case "catppuccin":
		return huh.ThemeCatppuccin()
	case "dracula":
		return huh.ThemeDracula()
	case "default":
		return huh.ThemeCharm()
	default:
		return huh.ThemeBase16()
	}
}

func validateFolderName(s string) error {
	if strings.TrimSpace(s) == "" {
		return layout.ErrEmptyFolderName
	}
	return nil
}

func validateMembers(ids []string) error {
	if len(ids) < 2 {
		return layout.ErrTooFewMembers
	}
	return nil
}

// NewFolderNameForm prompts for the name of a new folder.
func NewFolderNameForm(name *string, theme string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Folder name").
				Placeholder("Online").
				CharLimit(40).
				Value(name).
				Validate(validateFolderName),
		),
	).WithTheme(formTheme(theme)).WithShowHelp(false)
}

// NewMemberForm lets the user pick the buttons that go into a new folder.
// Options follow the candidates' order.
func NewMemberForm(candidates, all []layout.Item, selected *[]string, theme string) *huh.Form {
	options := make([]huh.Option[string], len(candidates))
	for i, it := range candidates {
		options[i] = huh.NewOption(layout.DisplayName(it, all), it.ID)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Buttons in folder").
				Description("x to select, enter to create").
				Options(options...).
				Value(selected).
				Validate(validateMembers),
		),
	).WithTheme(formTheme(theme)).WithShowHelp(false)
}

// PINForm asks for the parental control PIN
type PINForm struct {
	form *huh.Form
	pin  string
}

func NewPINForm(source string) *PINForm {
	pf := &PINForm{}
	pf.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("PIN for " + source).
				EchoMode(huh.EchoModePassword).
				Value(&pf.pin).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("enter the PIN")
					}
					return nil
				}),
		),
	)
	return pf
}

func (pf *PINForm) Run() (string, error) {
	if err := pf.form.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(pf.pin), nil
}
