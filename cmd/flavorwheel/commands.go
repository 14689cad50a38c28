package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ha1tch/flavor-wheel/pkg/notebook"
	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
	"github.com/ha1tch/flavor-wheel/pkg/theme"
	"github.com/ha1tch/flavor-wheel/pkg/wheel"
)

// Flags shared by the chart commands.
var (
	flagLang   string
	flagTheme  string
	flagWidth  float64
	flagSelect []string
)

var (
	renderOutput     string
	renderTitle      string
	renderHover      string
	renderScale      int
	renderFont       string
	renderDark       bool
	renderHideLabels bool
	renderHideCenter bool
)

var renderCmd = &cobra.Command{
	Use:   "render [dataset]",
	Short: "Render a wheel to SVG or PNG",
	Example: `  flavorwheel render coffee -o coffee.svg
  flavorwheel render tea --lang en --theme autumn_roast -o tea.png
  flavorwheel render ./house.yaml --select berry,floral -o picked.svg`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var infoTree bool

var infoCmd = &cobra.Command{
	Use:   "info [dataset]",
	Short: "Show taxonomy information",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

var validateCmd = &cobra.Command{
	Use:   "validate <dataset>...",
	Short: "Validate taxonomy files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

var (
	noteCustom []string
	noteOrigin string
	noteMode   string
	noteTags   bool
)

var noteCmd = &cobra.Command{
	Use:   "note [dataset]",
	Short: "Generate tasting text from picked flavors",
	Example: `  flavorwheel note coffee --select berry,cocoa --lang en
  flavorwheel note tea --select jasmine --custom "Smoky@roasted" --mode note --origin Yunnan`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNote,
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List colour themes",
	Args:  cobra.NoArgs,
	RunE:  runThemes,
}

func init() {
	for _, c := range []*cobra.Command{renderCmd, noteCmd, runCmd} {
		c.Flags().StringVar(&flagLang, "lang", "", "label language (zh, en, jp)")
		c.Flags().StringVar(&flagTheme, "theme", "", "colour theme id")
	}
	for _, c := range []*cobra.Command{renderCmd, noteCmd} {
		c.Flags().StringSliceVarP(&flagSelect, "select", "s", nil, "flavor ids to select")
	}
	renderCmd.Flags().Float64Var(&flagWidth, "width", 0, "canvas width in pixels")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (.svg or .png)")
	renderCmd.Flags().StringVarP(&renderTitle, "title", "t", "", "title drawn above the wheel (SVG)")
	renderCmd.Flags().StringVar(&renderHover, "hover", "", "draw as if this id were hovered")
	renderCmd.Flags().IntVar(&renderScale, "scale", 4, "PNG supersampling factor")
	renderCmd.Flags().StringVar(&renderFont, "font", "", "TrueType font for PNG text (needed for CJK labels)")
	renderCmd.Flags().BoolVar(&renderDark, "dark", false, "dark background")
	renderCmd.Flags().BoolVar(&renderHideLabels, "no-labels", false, "omit arc labels")
	renderCmd.Flags().BoolVar(&renderHideCenter, "no-center", false, "omit the centre display")

	infoCmd.Flags().BoolVar(&infoTree, "tree", false, "print the category tree")

	noteCmd.Flags().StringArrayVar(&noteCustom, "custom", nil, "custom flavor as name@category (repeatable)")
	noteCmd.Flags().StringVar(&noteOrigin, "origin", "", "origin of the drink")
	noteCmd.Flags().StringVar(&noteMode, "mode", "", "output mode (list or note)")
	noteCmd.Flags().BoolVar(&noteTags, "tags", false, "also list the picked flavors with their colours")
}

// applyOverrides copies chart flags that were set onto the config.
func applyOverrides(cmd *cobra.Command) {
	if cmd.Flags().Changed("lang") {
		cfg.Lang = flagLang
	}
	if cmd.Flags().Changed("theme") {
		cfg.Theme = flagTheme
	}
	if cmd.Flags().Changed("width") {
		cfg.Width = flagWidth
	}
}

// datasetArg returns the dataset named on the command line, or the
// configured drink.
func datasetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Drink
}

// staticWheel builds a chart with animation off and applies the selection.
func staticWheel(w io.Writer, doc *taxonomy.Document, reg *theme.Registry) (*wheel.Wheel, error) {
	opts := wheelOptions(reg)
	opts.Duration = -1
	chart, err := wheel.New(doc, opts)
	if err != nil {
		return nil, err
	}
	if !reg.Has(cfg.Theme) {
		fmt.Fprintf(w, "Warning: unknown theme %q, using the default palette\n", cfg.Theme)
	}
	for _, id := range splitIDs(flagSelect) {
		n := chart.FindNodeByID(id)
		switch {
		case n == nil:
			fmt.Fprintf(w, "Warning: no flavor %q in %s\n", id, doc.DrinkType)
		case !n.Data.Selectable():
			fmt.Fprintf(w, "Warning: %q is a category and cannot be selected\n", id)
		default:
			if !chart.IsSelected(id) {
				chart.Click(id)
			}
		}
	}
	return chart, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	applyOverrides(cmd)
	name := datasetArg(args)
	doc, err := loadDoc(cmd.Context(), name)
	if err != nil {
		return err
	}
	reg, err := loadThemes()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	chart, err := staticWheel(out, doc, reg)
	if err != nil {
		return err
	}
	if renderHover != "" {
		chart.Hover(renderHover)
	}

	output := renderOutput
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
		output = base + ".svg"
	}
	dark := renderDark || cfg.DarkMode
	frame := chart.Frame()

	switch strings.ToLower(filepath.Ext(output)) {
	case ".svg":
		opts := wheel.DefaultSVGOptions()
		opts.Title = renderTitle
		opts.DarkMode = dark
		opts.HideLabels = renderHideLabels
		opts.HideCenter = renderHideCenter
		err = os.WriteFile(output, []byte(wheel.RenderSVG(frame, opts)), 0644)
	case ".png":
		opts := wheel.DefaultPNGOptions()
		opts.Scale = renderScale
		opts.DarkMode = dark
		opts.HideLabels = renderHideLabels
		opts.HideCenter = renderHideCenter
		if renderFont != "" {
			if opts.FontData, err = os.ReadFile(renderFont); err != nil {
				return fmt.Errorf("reading font: %w", err)
			}
		}
		var f *os.File
		if f, err = os.Create(output); err != nil {
			return err
		}
		err = wheel.RenderPNG(frame, f, opts)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	default:
		return fmt.Errorf("unknown output format: %s", filepath.Ext(output))
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	logger.Debug("rendered", zap.String("output", output), zap.Int("arcs", len(frame.Arcs)))
	fmt.Fprintf(out, "Written: %s\n", output)
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	doc, err := loadDoc(cmd.Context(), datasetArg(args))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	s := doc.Stats()

	fmt.Fprintf(w, "Drink:         %s\n", doc.DrinkType)
	if doc.Name != "" {
		fmt.Fprintf(w, "Name:          %s\n", doc.Name)
	}
	fmt.Fprintf(w, "Categories:    %d\n", s.Categories)
	fmt.Fprintf(w, "Subcategories: %d\n", s.Subcategories)
	fmt.Fprintf(w, "Descriptors:   %d\n", s.Descriptors)
	fmt.Fprintf(w, "Leaves:        %d\n", s.Leaves)
	if a := doc.Attribution.Get(cfg.Lang, ""); a != "" {
		fmt.Fprintf(w, "Attribution:   %s\n", a)
	}

	if infoTree {
		fmt.Fprintln(w)
		root := wheel.Partition(doc.Root(), cfg.WheelOrdering())
		printTree(w, root, cfg.Lang)
	}
	return nil
}

// printTree lists the laid-out nodes with their share of the wheel.
func printTree(w io.Writer, n *wheel.LayoutNode, lang string) {
	for _, c := range n.Children {
		share := c.Span() / (2 * math.Pi) * 100
		fmt.Fprintf(w, "%s%-*s %5.1f%%  %s\n",
			strings.Repeat("  ", c.Depth-1), 28-2*(c.Depth-1), c.ID(), share, c.Data.DisplayLabel(lang))
		printTree(w, c, lang)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	failed := 0
	for _, arg := range args {
		doc, err := loadDoc(cmd.Context(), arg)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", arg, err)
			failed++
			continue
		}
		s := doc.Stats()
		fmt.Fprintf(w, "%s: valid %s taxonomy with %d categories, %d leaves\n",
			arg, doc.DrinkType, s.Categories, s.Leaves)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d taxonomies failed validation", failed, len(args))
	}
	return nil
}

func runNote(cmd *cobra.Command, args []string) error {
	applyOverrides(cmd)
	if cmd.Flags().Changed("mode") {
		cfg.OutputMode = noteMode
	}
	name := datasetArg(args)
	doc, err := loadDoc(cmd.Context(), name)
	if err != nil {
		return err
	}
	reg, err := loadThemes()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	chart, err := staticWheel(cmd.ErrOrStderr(), doc, reg)
	if err != nil {
		return err
	}
	sess, err := notebook.NewSession(chart, notebook.Options{
		Docs:   map[string]*taxonomy.Document{name: doc},
		Drink:  name,
		Lang:   cfg.Lang,
		Theme:  cfg.Theme,
		Origin: noteOrigin,
		Themes: reg,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer sess.Close()
	sess.HandleSelection(wheel.SelectionEvent{Selected: chart.Selected(), Lang: chart.Lang()})

	if err := sess.SwitchOutputMode(notebook.Mode(cfg.OutputMode)); err != nil {
		return err
	}
	for _, spec := range noteCustom {
		label, cat, ok := strings.Cut(spec, "@")
		if !ok {
			return fmt.Errorf("custom flavor %q: want name@category", spec)
		}
		if _, err := sess.AddCustom(label, cat); err != nil {
			return err
		}
	}

	if noteTags {
		printTags(w, sess)
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, sess.Output())
	return nil
}

// printTags lists the session's picked flavors.
func printTags(w io.Writer, sess *notebook.Session) {
	tags := sess.Tags()
	if len(tags) == 0 {
		fmt.Fprintln(w, sess.EmptyText())
		return
	}
	for _, t := range tags {
		line := fmt.Sprintf("  %s  %-24s %s", t.Color, t.ID, t.Text)
		if t.Custom {
			line += " [custom]"
		}
		if t.Orphan {
			line += " [orphan]"
		}
		fmt.Fprintln(w, line)
	}
}

func runThemes(cmd *cobra.Command, args []string) error {
	reg, err := loadThemes()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, fam := range reg.FamilyNames() {
		fmt.Fprintf(w, "%s (default: %s)\n", fam, reg.Default(fam))
		for _, th := range reg.List(fam) {
			mark := " "
			if th.ID == cfg.Theme {
				mark = "*"
			}
			fmt.Fprintf(w, " %s %-24s %s\n", mark, th.ID, th.Name)
		}
	}
	return nil
}
