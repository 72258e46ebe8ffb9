package export

import (
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Choice is the result of the interactive export prompt.
type Choice struct {
	Format Format
	OutDir string
}

// formatOptions lists every format with a short description for the picker.
func formatOptions() []huh.Option[Format] {
	return []huh.Option[Format]{
		huh.NewOption("Everything", FormatAll),
		huh.NewOption("Markdown handbook ("+MarkdownFile+")", FormatMarkdown),
		huh.NewOption("JSON document ("+JSONFile+")", FormatJSON),
		huh.NewOption("SQLite database ("+SQLiteFile+")", FormatSQLite),
		huh.NewOption("SVG flowcharts ("+SVGDir+"/)", FormatSVG),
	}
}

// exportForm builds the prompt bound to c.
func exportForm(c *Choice) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewSelect[Format]().
				Title("Export format").
				Options(formatOptions()...).
				Value(&c.Format),
			huh.NewInput().
				Title("Output directory").
				Value(&c.OutDir).
				Validate(func(s string) error {
					if s == "" {
						return errEmptyOutDir
					}
					return nil
				}),
		),
	)
}

// Prompt asks for a format and output directory, starting from defaults.
func Prompt(defaults Choice) (Choice, error) {
	c := defaults
	if c.Format == "" {
		c.Format = FormatAll
	}
	if err := exportForm(&c).Run(); err != nil {
		return Choice{}, err
	}
	return c, nil
}
