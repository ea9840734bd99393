package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	png "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/MyfirstAcc/AntDist/cmd/antviewer/uihelpers"
	"github.com/MyfirstAcc/AntDist/src/analysis"
	"github.com/MyfirstAcc/AntDist/src/charts"
	"github.com/MyfirstAcc/AntDist/src/config"
	"github.com/MyfirstAcc/AntDist/src/logging"
	"github.com/MyfirstAcc/AntDist/src/types"
)

type uiState struct {
	app      fyne.App
	window   fyne.Window
	filePath string

	parameter string
	title     string
	result    *analysis.Result

	// widgets
	table        *widget.Table
	fileLabel    *widget.Label
	summaryLabel *widget.Label
	runImg       *canvas.Image
	startImg     *canvas.Image
}

func (s *uiState) groups() []types.GroupedAggregate {
	if s == nil || s.result == nil {
		return nil
	}
	return s.result.Groups
}

func main() {
	var (
		dbFlag, configFlag, paramFlag string
		screenshotsDir                string
		screenshotsWidth              int
	)
	flag.StringVar(&dbFlag, "db", "", "Path to the SQLite results database (default: last opened, then testsAnts.db)")
	flag.StringVar(&configFlag, "config", "", "Optional YAML config (db, parameter, title)")
	flag.StringVar(&paramFlag, "param", "", "Parameter expanded into client counts (default NumClients)")
	flag.StringVar(&screenshotsDir, "screenshots", "", "Render both charts into this directory and exit (no window)")
	flag.IntVar(&screenshotsWidth, "screenshots-width", config.DefaultWidth, "Chart width for -screenshots")
	flag.Parse()

	cfg := config.Default()
	if configFlag != "" {
		loaded, err := config.Load(configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		cfg = loaded
	}
	if paramFlag != "" {
		cfg.ParameterName = paramFlag
	}
	logging.SetLogLevel(cfg.LogLevel)
	defer logging.Sync()

	if screenshotsDir != "" {
		path := cfg.DBPath
		if dbFlag != "" {
			path = dbFlag
		}
		if err := RunScreenshotsMode(path, screenshotsDir, cfg.ParameterName, cfg.Title, screenshotsWidth); err != nil {
			logging.Errorf("screenshots: %v", err)
			logging.Sync()
			os.Exit(1)
		}
		return
	}

	a := app.NewWithID("com.antdist.viewer")
	w := a.NewWindow(windowTitle(""))
	w.Resize(fyne.NewSize(1000, 900))

	state := &uiState{
		app:       a,
		window:    w,
		filePath:  dbFlag,
		parameter: cfg.ParameterName,
		title:     cfg.Title,
	}
	if state.filePath == "" && configFlag != "" {
		state.filePath = cfg.DBPath
	}

	state.fileLabel = widget.NewLabel(uihelpers.TruncatePath(state.filePath, 60))
	state.summaryLabel = widget.NewLabel("")

	state.table = widget.NewTable(
		func() (int, int) { return len(state.groups()) + 1, 5 },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(tableCellText(state.groups(), id.Row, id.Col))
		},
	)
	applyColumnWidths(state, 1000)

	state.runImg = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.runImg.FillMode = canvas.ImageFillContain
	state.runImg.SetMinSize(fyne.NewSize(config.DefaultWidth, config.DefaultHeight))
	state.startImg = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.startImg.FillMode = canvas.ImageFillContain
	state.startImg.SetMinSize(fyne.NewSize(config.DefaultWidth, config.DefaultHeight))

	top := container.NewHBox(
		widget.NewButton("Open…", func() { openFileDialog(state) }),
		widget.NewButton("Reload", func() { loadAll(state) }),
		widget.NewLabel("File:"), state.fileLabel,
		state.summaryLabel,
	)
	chartsColumn := container.NewVBox(
		state.runImg,
		widget.NewSeparator(),
		state.startImg,
	)
	tabs := container.NewAppTabs(
		container.NewTabItem("Charts", container.NewVScroll(chartsColumn)),
		container.NewTabItem("Aggregates", state.table),
	)
	tabs.SetTabLocation(container.TabLocationTop)
	tabs.OnSelected = func(*container.TabItem) {
		state.app.Preferences().SetInt("selectedTabIndex", tabs.SelectedIndex())
	}
	w.SetContent(container.NewBorder(top, nil, nil, nil, tabs))

	// Redraw charts on window resize so they scale with width
	if w.Canvas() != nil {
		prevW := int(w.Canvas().Size().Width)
		done := make(chan struct{})
		w.SetOnClosed(func() {
			savePrefs(state)
			close(done)
		})
		go func() {
			t := time.NewTicker(300 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					c := w.Canvas()
					if c == nil {
						continue
					}
					curW := int(c.Size().Width)
					if curW != prevW {
						prevW = curW
						fyne.Do(func() {
							applyColumnWidths(state, float32(curW))
							redrawCharts(state)
						})
					}
				}
			}
		}()
	}

	buildMenus(state)
	loadPrefs(state, tabs)
	loadAll(state)

	w.ShowAndRun()
}

// windowTitle names the window after the opened database file.
func windowTitle(path string) string {
	if path == "" {
		return "Ant Results Viewer"
	}
	return "Ant Results Viewer: " + filepath.Base(path)
}

// tableCellText returns the text of the aggregates table cell; row 0 is the header.
func tableCellText(groups []types.GroupedAggregate, row, col int) string {
	if row == 0 {
		switch col {
		case 0:
			return "Clients"
		case 1:
			return "Rows"
		case 2:
			return "Best Value"
		case 3:
			return "Method Run Time (s)"
		case 4:
			return "Start Client (s)"
		}
		return ""
	}
	rix := row - 1
	if rix < 0 || rix >= len(groups) {
		return ""
	}
	g := groups[rix]
	switch col {
	case 0:
		return fmt.Sprintf("%d", g.ClientCount)
	case 1:
		return fmt.Sprintf("%d", g.Rows)
	case 2:
		return uihelpers.FormatCellValue(g.BestValue)
	case 3:
		return uihelpers.FormatCellValue(g.MethodRunTime)
	case 4:
		return uihelpers.FormatCellValue(g.StartTimeClient)
	}
	return ""
}

// summaryText is the status line shown next to the file name.
func summaryText(res *analysis.Result) string {
	if res == nil {
		return ""
	}
	return fmt.Sprintf("runs=%d expanded=%d groups=%d", len(res.Rows), len(res.Expanded), len(res.Groups))
}

func applyColumnWidths(state *uiState, winW float32) {
	if state == nil || state.table == nil {
		return
	}
	for i, cw := range uihelpers.ComputeTableColumnWidths(winW) {
		state.table.SetColumnWidth(i, float32(cw))
	}
	state.table.Refresh()
}

// menus and dialogs
func buildMenus(state *uiState) {
	if state == nil || state.window == nil || state.app == nil {
		return
	}
	var items []*fyne.MenuItem
	for _, f := range recentFiles(state) {
		f := f
		items = append(items, fyne.NewMenuItem(uihelpers.TruncatePath(f, 60), func() {
			state.filePath = f
			savePrefs(state)
			loadAll(state)
		}))
	}
	clearRecent := fyne.NewMenuItem("Clear Recent", func() { clearRecentFiles(state); buildMenus(state) })
	recentMenu := fyne.NewMenu("Open Recent", append(items, clearRecent)...)
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", func() { openFileDialog(state) }),
		fyne.NewMenuItem("Reload", func() { loadAll(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Run Time Chart…", func() { exportChartPNG(state, state.runImg, charts.RunTimeChartFile) }),
		fyne.NewMenuItem("Export Start Time Chart…", func() { exportChartPNG(state, state.startImg, charts.StartTimeChartFile) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu, recentMenu))

	canv := state.window.Canvas()
	if canv != nil {
		for _, mod := range []fyne.KeyModifier{fyne.KeyModifierSuper, fyne.KeyModifierControl} {
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: mod}, func(fyne.Shortcut) { openFileDialog(state) })
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: mod}, func(fyne.Shortcut) { loadAll(state) })
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: mod}, func(fyne.Shortcut) { state.window.Close() })
		}
	}
}

func openFileDialog(state *uiState) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		state.filePath = rc.URI().Path()
		addRecentFile(state, state.filePath)
		buildMenus(state)
		savePrefs(state)
		loadAll(state)
	}, state.window)
	d.Show()
}

// load data and render
func loadAll(state *uiState) {
	if state.filePath == "" {
		if _, err := os.Stat(config.DefaultDBPath); err != nil {
			return
		}
		state.filePath = config.DefaultDBPath
	}
	if err := loadInto(state); err != nil {
		logging.Errorf("load %s: %v", state.filePath, err)
		dialog.ShowError(err, state.window)
	}
}

// loadInto analyzes state.filePath and refreshes every view. A failed load clears the previous result.
func loadInto(state *uiState) error {
	if state.fileLabel != nil {
		state.fileLabel.SetText(uihelpers.TruncatePath(state.filePath, 60))
	}
	if state.window != nil {
		state.window.SetTitle(windowTitle(state.filePath))
	}
	res, err := analysis.AnalyzeDatabase(context.Background(), state.filePath, analysis.Options{ParameterName: state.parameter})
	if err != nil {
		state.result = nil
	} else {
		state.result = res
	}
	if state.summaryLabel != nil {
		state.summaryLabel.SetText(summaryText(state.result))
	}
	if state.table != nil {
		state.table.Refresh()
	}
	redrawCharts(state)
	return err
}

func redrawCharts(state *uiState) {
	w, h := chartSize(state)
	opts := charts.Options{Title: state.title, Width: w, Height: h}
	groups := state.groups()

	runImg, err := charts.RenderRunTimeChart(groups, opts)
	if err != nil {
		logging.Errorf("render run time chart: %v", err)
		dialog.ShowError(err, state.window)
		return
	}
	startImg, err := charts.RenderStartTimeChart(groups, opts)
	if err != nil {
		logging.Errorf("render start time chart: %v", err)
		dialog.ShowError(err, state.window)
		return
	}
	for _, pair := range []struct {
		c   *canvas.Image
		img image.Image
	}{{state.runImg, runImg}, {state.startImg, startImg}} {
		if pair.c == nil {
			continue
		}
		pair.c.Image = pair.img
		pair.c.SetMinSize(fyne.NewSize(float32(w), float32(h)))
		pair.c.Refresh()
	}
}

// chartSize computes a chart size based on the current window width.
func chartSize(state *uiState) (int, int) {
	if state == nil || state.window == nil || state.window.Canvas() == nil {
		return uihelpers.ComputeChartDimensions(config.DefaultWidth)
	}
	sz := state.window.Canvas().Size()
	return uihelpers.ComputeChartDimensions(int(sz.Width*0.95) - 12)
}

// export PNG
func exportChartPNG(state *uiState, img *canvas.Image, defaultName string) {
	if state == nil || state.window == nil {
		return
	}
	if img == nil || img.Image == nil || state.result == nil {
		dialog.ShowInformation("Export", "No chart to export.", state.window)
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if err := png.Encode(wc, img.Image); err != nil {
			dialog.ShowError(err, state.window)
		}
	}, state.window)
	fs.SetFileName(defaultName)
	fs.Show()
}

// recent files helpers
func recentFiles(state *uiState) []string {
	raw := state.app.Preferences().StringWithFallback("recentFiles", "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, "\n") {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func addRecentFile(state *uiState, path string) {
	list := uihelpers.MergeRecent(recentFiles(state), path, 10)
	state.app.Preferences().SetString("recentFiles", strings.Join(list, "\n"))
}

func clearRecentFiles(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	state.app.Preferences().SetString("recentFiles", "")
}

// prefs
func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	state.app.Preferences().SetString("lastFile", state.filePath)
}

func loadPrefs(state *uiState, tabs *container.AppTabs) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	if state.filePath == "" {
		state.filePath = prefs.StringWithFallback("lastFile", "")
	}
	if tabs != nil {
		idx := prefs.IntWithFallback("selectedTabIndex", 0)
		if idx >= 0 && idx < len(tabs.Items) {
			tabs.SelectIndex(idx)
		}
	}
}
