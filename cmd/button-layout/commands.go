package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mcao2/button-layout/internal/config"
	"github.com/mcao2/button-layout/internal/gate"
	"github.com/mcao2/button-layout/internal/host"
	"github.com/mcao2/button-layout/internal/layout"
	"github.com/mcao2/button-layout/internal/sources"
	"github.com/mcao2/button-layout/internal/ui"
	"github.com/spf13/cobra"
)

func editCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive layout editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEditor(cmd.Context())
		},
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func elementRow(e layout.Element, all []layout.Item) []string {
	switch e.Kind {
	case layout.KindFolder:
		return []string{"folder", "", fmt.Sprintf("%s (%d)", e.Folder.Name, len(e.Folder.Buttons)), e.Folder.ID}
	case layout.KindEdit:
		return []string{"edit", "", "Edit layout", ""}
	default:
		name := layout.DisplayName(e.Item, all)
		if e.Hidden {
			name += " [hidden]"
		}
		return []string{"item", string(e.Item.Category), name, e.Item.ID}
	}
}

func showCmd(a *app) *cobra.Command {
	var editor bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the buttons of the page in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}

			var elements []layout.Element
			if editor {
				elements, err = session.EditorEntries()
			} else {
				elements, err = session.Display()
			}
			if err != nil {
				return err
			}

			t := newTable("#", "Kind", "Category", "Name", "ID")
			for i, e := range elements {
				t.Row(append([]string{strconv.Itoa(i + 1)}, elementRow(e, session.Items())...)...)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&editor, "editor", false, "show the editor list, hidden buttons included")
	return cmd
}

func hideCmd(a *app, hide bool) *cobra.Command {
	use, short := "hide", "Hide buttons from the page"
	if !hide {
		use, short = "unhide", "Show hidden buttons again"
	}

	return &cobra.Command{
		Use:   use + " <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range args {
				if !hasItem(session.Items(), id) {
					a.log.WithField("id", id).Warn("button is not on this page")
				}
				if err := session.SetHidden(id, hide); err != nil {
					return err
				}
			}
			state := "hidden"
			if !hide {
				state = "shown"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d button(s) %s\n", len(args), state)
			return nil
		},
	}
}

func hasItem(items []layout.Item, id string) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func moveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <delta>",
		Short: "Move a button or folder in the editor list by delta slots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid delta %q: %w", args[1], err)
			}

			session, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := session.EditorEntries()
			if err != nil {
				return err
			}
			index := -1
			for i, e := range entries {
				if e.ID() == args[0] {
					index = i
					break
				}
			}
			if index < 0 {
				return fmt.Errorf("%s is not in the editor list", args[0])
			}

			step := 1
			if delta < 0 {
				step, delta = -1, -delta
			}
			moved := 0
			for ; moved < delta; moved++ {
				ok, err := session.Move(index, step)
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				index += step
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %s by %d to position %d\n", args[0], moved*step, index+1)
			return nil
		},
	}
}

func folderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage button folders",
	}

	var name string
	create := &cobra.Command{
		Use:   "create <id> <id>...",
		Short: "Group buttons into a new folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			f, err := session.CreateFolder(name, args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created folder %q (%s) with %d buttons\n", f.Name, f.ID, len(f.Buttons))
			return nil
		},
	}
	create.Flags().StringVarP(&name, "name", "n", "", "folder name")
	cobra.CheckErr(create.MarkFlagRequired("name"))

	list := &cobra.Command{
		Use:   "list",
		Short: "List folders and their members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			folders, err := session.Folders()
			if err != nil {
				return err
			}
			t := newTable("ID", "Name", "Members")
			for _, f := range folders {
				members, err := session.FolderMembers(f.ID)
				if err != nil {
					return err
				}
				names := make([]string, len(members))
				for i, it := range members {
					names[i] = layout.DisplayName(it, session.Items())
				}
				t.Row(f.ID, f.Name, strings.Join(names, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <folder-id>",
		Short: "Delete a folder, returning its buttons to the page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := session.DeleteFolder(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted folder %s\n", args[0])
			return nil
		},
	}

	reorder := &cobra.Command{
		Use:   "reorder <folder-id> <id>...",
		Short: "Set the order of a folder's buttons",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := session.ReorderWithinFolder(args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reordered folder %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(create, list, del, reorder)
	return cmd
}

func resetCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the custom order, hidden buttons and folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				err := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title("Reset the layout to defaults?").
						Affirmative("Reset").
						Negative("Cancel").
						Value(&yes),
				)).Run()
				if err != nil {
					return err
				}
				if !yes {
					return nil
				}
			}

			session, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := session.ResetAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "layout reset to defaults")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var dir string
	var toClipboard bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the layout as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}

			switch {
			case dir != "":
				path, err := ui.ExportLayoutToFile(session, dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "layout written to %s\n", path)
			case toClipboard:
				text, err := ui.ExportLayoutJSON(session)
				if err != nil {
					return err
				}
				if err := ui.SystemClipboard().WriteAll(text); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "layout copied to clipboard")
			default:
				text, err := ui.ExportLayoutJSON(session)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "output", "o", "", "directory to write the layout file to")
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "copy the layout to the clipboard")
	return cmd
}

func importCmd(a *app) *cobra.Command {
	var fromClipboard bool

	cmd := &cobra.Command{
		Use:   "import [file|-]",
		Short: "Restore a layout exported earlier",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			switch {
			case fromClipboard:
				s, err := ui.SystemClipboard().ReadAll()
				if err != nil {
					return fmt.Errorf("failed to read clipboard: %w", err)
				}
				text = s
			case len(args) == 0 || args[0] == "-":
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(data)
			default:
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				text = string(data)
			}

			session, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := ui.ImportLayoutText(session, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d folder(s), %d hidden button(s)\n", len(snap.Folders), len(snap.Hidden))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromClipboard, "clipboard", false, "read the layout from the clipboard")
	return cmd
}

func sourcesCmd(a *app) *cobra.Command {
	var sortType string
	var hideUnavailable bool

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the online sources with the saved sort and filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			settings, err := sources.LoadSettings(store)
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("sort") {
				st, err := sources.ParseSortType(sortType)
				if err != nil {
					return err
				}
				settings.Sort = st
				changed = true
			}
			if cmd.Flags().Changed("hide-unavailable") {
				settings.HideUnavailable = hideUnavailable
				changed = true
			}
			if changed {
				if err := settings.Save(store); err != nil {
					return err
				}
			}

			provider, err := a.openProvider()
			if err != nil {
				return err
			}
			if err := a.waitReady(cmd.Context()); err != nil {
				return err
			}
			list, err := provider.Sources(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sort: %s (%s)\n", settings.Sort, settings.Sort.Description())
			t := newTable("Source", "Balancer", "Status")
			for _, src := range settings.Process(list) {
				status := "available"
				if src.Ghost {
					status = "unavailable"
				}
				t.Row(src.Title, src.Balancer, status)
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}

	cmd.Flags().StringVar(&sortType, "sort", "", "sort type: default, alphabet or quality")
	cmd.Flags().BoolVar(&hideUnavailable, "hide-unavailable", false, "hide sources that cannot play this title")
	return cmd
}

func searchCmd(a *app) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "search <source> <query>...",
		Short: "Search one of the registered search sources",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := a.openGate()
			if err != nil {
				return err
			}
			provider, err := a.openProvider()
			if err != nil {
				return err
			}
			if err := a.waitReady(ctx); err != nil {
				return err
			}

			registry := host.NewRegistry()
			registry.Use(g.Middleware())
			list, err := provider.SearchSources(ctx)
			if err != nil {
				return err
			}
			for _, src := range list {
				registry.AddSource(src)
			}

			src, ok := registry.Source(args[0])
			if !ok {
				return fmt.Errorf("unknown search source %q", args[0])
			}
			cards, err := src.Search(ctx, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			if guarded, ok := src.(*gate.Guarded); ok && len(cards) == 1 && gate.IsAuthCard(cards[0]) {
				if pin == "" {
					pin, err = ui.NewPINForm(src.Title()).Run()
					if err != nil {
						return err
					}
				}
				cards, err = guarded.Unlock(ctx, pin)
				if err != nil {
					return err
				}
			}

			t := newTable("Title", "Original title", "URL")
			for _, c := range cards {
				t.Row(c.Title, c.Subtitle, c.URL)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "parental control PIN for protected sources")
	return cmd
}

func parentalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "parental <on|off>",
		Short:     "Switch parental control for protected sources",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on":
				enabled = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}

			g, err := a.openGate()
			if err != nil {
				return err
			}
			if enabled && a.cfg.Parental.PINSHA256 == "" {
				return gate.ErrNoPIN
			}
			if err := a.store.Set(gate.KeyParentalControl, enabled); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "parental control %s\n", onOff(g.Enabled()))
			return nil
		},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func pinCmd(a *app) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "pin [pin]",
		Short: "Print the SHA-256 hash of a parental control PIN",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pin string
			if len(args) == 1 {
				pin = args[0]
			} else {
				p, err := ui.NewPINForm("parental control").Run()
				if err != nil {
					return err
				}
				pin = p
			}
			if pin == "" {
				return errors.New("pin must not be empty")
			}

			hash := gate.HashPIN(pin)
			if save {
				a.cfg.Parental.PINSHA256 = hash
				if err := a.cfg.Save(); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "store the hash in the config file")
	return cmd
}

func initCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write an example config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveExampleConfig(); err != nil {
				return err
			}
			dir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "example config written to %s\n", dir)
			return nil
		},
	}
}
