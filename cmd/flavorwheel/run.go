package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ha1tch/flavor-wheel/pkg/loader"
	"github.com/ha1tch/flavor-wheel/pkg/locale"
	"github.com/ha1tch/flavor-wheel/pkg/notebook"
	"github.com/ha1tch/flavor-wheel/pkg/wheel"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Pick flavors interactively",
	Long: `run loads every configured dataset and reads commands from stdin:
click, hover, remove, custom, drink, lang, theme, mode, origin, output and
so on. Type "help" for the list.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	applyOverrides(cmd)
	docs, err := loader.Load(cmd.Context(), cfg.Sources(), logger)
	if err != nil {
		return err
	}
	reg, err := loadThemes()
	if err != nil {
		return err
	}
	chart, err := wheel.New(docs[cfg.Drink], wheelOptions(reg))
	if err != nil {
		return err
	}
	sess, err := notebook.NewSession(chart, notebook.Options{
		Docs:   docs,
		Drink:  cfg.Drink,
		Lang:   cfg.Lang,
		Theme:  cfg.Theme,
		Mode:   notebook.Mode(cfg.OutputMode),
		Dark:   cfg.DarkMode,
		Themes: reg,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	r := &repl{out: cmd.OutOrStdout(), chart: chart, sess: sess}
	fmt.Fprintf(r.out, "Flavor wheel: %s (%s, %s)\n", cfg.Drink, cfg.Lang, cfg.Theme)
	fmt.Fprintln(r.out, `Type "help" for commands`)
	fmt.Fprintln(r.out)
	r.printCenter()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !r.exec(line) {
			break
		}
	}
	if cfg.DarkMode != sess.DarkMode() {
		cfg.DarkMode = sess.DarkMode()
		if err := cfg.Save(configPath); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to save config: %v\n", err)
		}
	}
	return scanner.Err()
}

type repl struct {
	out   io.Writer
	chart *wheel.Wheel
	sess  *notebook.Session
}

// exec runs one command line and reports whether to keep reading.
func (r *repl) exec(line string) bool {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "quit", "exit", "q":
		return false
	case "click", "c":
		if r.chart.FindNodeByID(rest) == nil {
			fmt.Fprintf(r.out, "No flavor %q\n", rest)
			return true
		}
		r.chart.Click(rest)
		r.printCenter()
	case "hover", "h":
		r.chart.Hover(rest)
		r.printCenter()
	case "leave":
		r.chart.Leave()
		r.printCenter()
	case "remove", "rm":
		if !r.sess.RemoveTag(rest) {
			fmt.Fprintf(r.out, "%q is not picked\n", rest)
		}
		r.printTags()
	case "custom":
		cat, name, _ := strings.Cut(rest, " ")
		if _, err := r.sess.AddCustom(name, cat); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			r.printCategories()
			return true
		}
		fmt.Fprintf(r.out, "%q %s\n", strings.TrimSpace(name), r.sess.Strings().Get(r.sess.Lang(), locale.KeyCustomAdded))
	case "clear":
		r.chart.ClearSelection()
		r.sess.HandleSelection(wheel.SelectionEvent{Selected: r.chart.Selected(), Lang: r.chart.Lang()})
		r.printCenter()
	case "drink":
		r.report(r.sess.SwitchDrink(rest))
		if a := r.sess.Attribution(); a != "" {
			fmt.Fprintln(r.out, a)
		}
	case "lang":
		r.sess.SwitchLang(rest)
		r.printCenter()
	case "theme":
		r.report(r.sess.SwitchTheme(rest))
	case "mode":
		r.report(r.sess.SwitchOutputMode(notebook.Mode(rest)))
	case "origin":
		r.sess.SetOrigin(rest)
	case "dark":
		fmt.Fprintf(r.out, "Dark mode: %v\n", r.sess.ToggleDark())
	case "categories", "cats":
		r.printCategories()
	case "tags", "picked":
		r.printTags()
	case "output", "o":
		fmt.Fprintln(r.out, r.sess.Output())
	case "center", "status":
		r.printCenter()
	case "save":
		r.save(rest)
	case "help", "?":
		fmt.Fprintln(r.out, "Commands:")
		fmt.Fprintln(r.out, "  click <id>            - Toggle a flavor")
		fmt.Fprintln(r.out, "  hover <id> / leave    - Preview a node in the centre")
		fmt.Fprintln(r.out, "  remove <id>           - Drop a picked flavor")
		fmt.Fprintln(r.out, "  custom <cat> <name>   - Add your own flavor under a category")
		fmt.Fprintln(r.out, "  clear                 - Deselect everything on the wheel")
		fmt.Fprintln(r.out, "  drink|lang|theme <x>  - Switch dataset, language or theme")
		fmt.Fprintln(r.out, "  mode list|note        - Choose the output format")
		fmt.Fprintln(r.out, "  origin <text>         - Set the origin for notes")
		fmt.Fprintln(r.out, "  tags / output         - Show picked flavors or generated text")
		fmt.Fprintln(r.out, "  save <file.svg|png>   - Render the wheel")
		fmt.Fprintln(r.out, "  dark                  - Toggle dark mode")
		fmt.Fprintln(r.out, "  quit                  - Exit")
	default:
		fmt.Fprintf(r.out, "Unknown command: %s\n", verb)
	}
	return true
}

func (r *repl) report(err error) {
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
	}
}

func (r *repl) printCenter() {
	c := r.chart.Center()
	if c.Category != "" {
		fmt.Fprintf(r.out, "%s %s\n", c.Category, c.Flavor)
		return
	}
	fmt.Fprintln(r.out, c.Flavor)
}

func (r *repl) printTags() {
	printTags(r.out, r.sess)
}

func (r *repl) printCategories() {
	for _, o := range r.sess.CategoryOptions() {
		fmt.Fprintf(r.out, "  %-24s %s\n", o.ID, o.Label)
	}
}

func (r *repl) save(path string) {
	var err error
	// Whatever is still animating is drawn at its end state.
	frame := r.chart.FrameAt(time.Now().Add(time.Minute))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		opts := wheel.DefaultSVGOptions()
		opts.DarkMode = r.sess.DarkMode()
		err = os.WriteFile(path, []byte(wheel.RenderSVG(frame, opts)), 0644)
	case ".png":
		opts := wheel.DefaultPNGOptions()
		opts.DarkMode = r.sess.DarkMode()
		var f *os.File
		if f, err = os.Create(path); err == nil {
			err = wheel.RenderPNG(frame, f, opts)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}
	default:
		err = fmt.Errorf("unknown output format: %s", filepath.Ext(path))
	}
	if err != nil {
		fmt.Fprintf(r.out, "Error writing %s: %v\n", path, err)
		return
	}
	fmt.Fprintf(r.out, "Written: %s\n", path)
}
