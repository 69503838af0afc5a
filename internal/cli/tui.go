package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/easelkit/easel/pkg/editor"
	"github.com/easelkit/easel/pkg/geo"
	"github.com/easelkit/easel/pkg/scene"
	"github.com/easelkit/easel/pkg/store"
)

// Terminal cells are roughly twice as tall as wide; the canvas projection
// compensates so shapes keep their aspect ratio on screen.
const (
	cellWidth  = 10.0 // scene units per terminal column at zoom 1
	cellHeight = 20.0 // scene units per terminal row at zoom 1

	// cursorStep is the cursor movement increment in scene units.
	cursorStep = 20.0

	// chromeRows is the number of rows reserved for the title, status bar,
	// and help line around the canvas.
	chromeRows = 4
)

// Canvas styles.
var (
	canvasObjectStyle    = lipgloss.NewStyle().Foreground(colorCyan)
	canvasTextStyle      = lipgloss.NewStyle().Foreground(colorWhite)
	canvasConnectorStyle = lipgloss.NewStyle().Foreground(colorGray)
	canvasCursorStyle    = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	canvasPickedStyle    = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(colorWhite).
			Padding(0, 1)
	statusDirtyStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("236")).
				Foreground(colorYellow)
)

// editorMsg carries an editor event into the bubbletea loop.
type editorMsg editor.Event

// saveDoneMsg reports the outcome of an asynchronous save.
type saveDoneMsg struct{ err error }

// =============================================================================
// CanvasModel - Interactive terminal canvas
// =============================================================================

// CanvasModel is the bubbletea model for the edit command. All editor
// mutation happens in Update, on the program goroutine; the editor event
// bus feeds metrics back in as messages.
type CanvasModel struct {
	Editor *editor.Editor

	events chan editor.Event
	sub    *editor.Subscription

	metrics editor.Metrics
	cursor  geo.Point
	width   int
	height  int

	shapes   []string // shape palette, cycled with tab
	shapeIdx int

	connectFrom string // pending connect source, empty when idle
	typing      bool   // text entry mode
	input       string

	status string
	saving bool
}

// NewCanvasModel creates a canvas model over an open editing session.
func NewCanvasModel(ed *editor.Editor) *CanvasModel {
	m := &CanvasModel{
		Editor:  ed,
		events:  make(chan editor.Event, 16),
		metrics: ed.Metrics(),
		shapes:  []string{"process", "decision", "terminator", "node"},
	}
	m.sub = ed.Subscribe(func(ev editor.Event) {
		select {
		case m.events <- ev:
		default: // coalesce under bursts; metrics are re-read on receipt
		}
	})
	m.cursor = ed.Viewport().VisibleRect().Center()
	return m
}

func (m *CanvasModel) Init() tea.Cmd {
	return m.waitEvent()
}

// waitEvent blocks on the editor event channel.
func (m *CanvasModel) waitEvent() tea.Cmd {
	return func() tea.Msg {
		return editorMsg(<-m.events)
	}
}

func (m *CanvasModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case editorMsg:
		m.metrics = m.Editor.Metrics()
		if msg.Kind == editor.EventDocumentSaved {
			m.status = "saved"
		}
		return m, m.waitEvent()

	case saveDoneMsg:
		m.saving = false
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		}
		m.metrics = m.Editor.Metrics()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.Editor.Viewport().ObserveContainerSize(
			float64(msg.Width)*cellWidth,
			float64(msg.Height-chromeRows)*cellHeight)
		return m, nil

	case tea.KeyMsg:
		if m.typing {
			return m.updateTyping(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

// updateTyping handles key input while entering text for a text object.
func (m *CanvasModel) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.typing = false
		if m.input != "" {
			at := m.cursor
			if _, err := m.Editor.AddText(m.input, 16, &at); err != nil {
				m.status = err.Error()
			}
		}
		m.input = ""
	case "esc":
		m.typing = false
		m.input = ""
	case "backspace":
		if m.input != "" {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.input += " "
		}
	}
	return m, nil
}

// updateKeys handles canvas key bindings.
func (m *CanvasModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	vp := m.Editor.Viewport()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		m.moveCursor(0, -cursorStep)
	case "down", "j":
		m.moveCursor(0, cursorStep)
	case "left", "h":
		m.moveCursor(-cursorStep, 0)
	case "right", "l":
		m.moveCursor(cursorStep, 0)

	case "tab":
		m.shapeIdx = (m.shapeIdx + 1) % len(m.shapes)

	case "a", "enter":
		at := m.cursor
		if _, err := m.Editor.AddShape(m.shapes[m.shapeIdx], &at); err != nil {
			m.status = err.Error()
		}

	case "t":
		m.typing = true
		m.input = ""

	case "x":
		if o := m.objectAt(m.cursor); o != nil {
			if err := m.Editor.Delete(o.ID); err != nil {
				m.status = err.Error()
			}
			if m.connectFrom == o.ID {
				m.connectFrom = ""
			}
		}

	case "c":
		m.handleConnect()

	case "esc":
		m.connectFrom = ""

	case "u":
		if !m.Editor.Undo() {
			m.status = "nothing to undo"
		}
	case "r":
		if !m.Editor.Redo() {
			m.status = "nothing to redo"
		}

	case "v":
		ver := m.Editor.CreateVersion(fmt.Sprintf("Checkpoint %d", len(m.Editor.Versions())+1))
		if ver != nil {
			m.status = "version " + ver.Name
		}

	case "+", "=":
		vp.SetZoom(vp.Zoom() * 1.25)
	case "-":
		vp.SetZoom(vp.Zoom() / 1.25)
	case "f":
		vp.FitToContent(false)
	case "0":
		vp.ResetView(false)

	case "ctrl+s":
		if !m.saving {
			m.saving = true
			return m, m.saveCmd()
		}
	}
	return m, nil
}

// handleConnect implements the two-press connect flow: first press picks
// the source under the cursor, second press connects it to the target.
func (m *CanvasModel) handleConnect() {
	o := m.objectAt(m.cursor)
	if o == nil {
		m.status = "no object under cursor"
		return
	}
	if m.connectFrom == "" {
		m.connectFrom = o.ID
		m.status = "connect from " + displayName(o)
		return
	}
	if m.connectFrom == o.ID {
		m.status = "pick a different target"
		return
	}
	if conn := m.Editor.Connect(m.connectFrom, o.ID); conn == nil {
		m.status = "cannot connect"
	}
	m.connectFrom = ""
}

// saveCmd saves the document off the update loop.
func (m *CanvasModel) saveCmd() tea.Cmd {
	return func() tea.Msg {
		return saveDoneMsg{err: m.Editor.SaveDocument(context.Background())}
	}
}

// moveCursor shifts the cursor, clamped to the drawing surface.
func (m *CanvasModel) moveCursor(dx, dy float64) {
	surf := m.Editor.Surface().Rect()
	m.cursor.X = geo.Clamp(m.cursor.X+dx, surf.Left, surf.Right())
	m.cursor.Y = geo.Clamp(m.cursor.Y+dy, surf.Top, surf.Bottom())
}

// objectAt returns the topmost connectable object containing p.
func (m *CanvasModel) objectAt(p geo.Point) *scene.Object {
	objs := m.Editor.Scene().Objects()
	for i := len(objs) - 1; i >= 0; i-- {
		o := objs[i]
		if o.Decoration() || o.Kind == scene.KindConnector {
			continue
		}
		if o.BoundingBox().Contains(p) {
			return o
		}
	}
	return nil
}

// displayName returns a short human label for an object.
func displayName(o *scene.Object) string {
	if o.Text != "" {
		return o.Text
	}
	if o.Glyph != "" {
		return o.Glyph
	}
	if len(o.ID) > 8 {
		return o.ID[:8]
	}
	return o.ID
}

// =============================================================================
// View
// =============================================================================

func (m *CanvasModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteString("\n")
	b.WriteString(m.renderCanvas())
	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m *CanvasModel) titleLine() string {
	name := m.Editor.History().Meta().Name
	title := StyleTitle.Render("easel") + " " + StyleValue.Render(name)
	if m.typing {
		title += "  " + StyleWarning.Render("text: "+m.input+"▏")
	} else if m.connectFrom != "" {
		title += "  " + canvasPickedStyle.Render("connecting…")
	}
	return title
}

// cell paint classes, highest wins when overdrawn.
const (
	paintBlank = iota
	paintConnector
	paintObject
	paintText
	paintPicked
	paintCursor
)

var paintStyles = map[int]lipgloss.Style{
	paintConnector: canvasConnectorStyle,
	paintObject:    canvasObjectStyle,
	paintText:      canvasTextStyle,
	paintPicked:    canvasPickedStyle,
	paintCursor:    canvasCursorStyle,
}

// renderCanvas projects the visible scene rect onto a character grid.
func (m *CanvasModel) renderCanvas() string {
	cols := m.width
	rows := m.height - chromeRows
	if cols < 4 || rows < 2 {
		return "\n"
	}

	glyphs := make([][]rune, rows)
	paint := make([][]int, rows)
	for r := range glyphs {
		glyphs[r] = make([]rune, cols)
		paint[r] = make([]int, cols)
		for c := range glyphs[r] {
			glyphs[r][c] = ' '
		}
	}

	visible := m.Editor.Viewport().VisibleRect()
	if visible.IsEmpty() {
		visible = m.Editor.Surface().Rect()
	}
	project := func(p geo.Point) (int, int) {
		col := int((p.X - visible.Left) / visible.Width * float64(cols))
		row := int((p.Y - visible.Top) / visible.Height * float64(rows))
		return col, row
	}
	set := func(col, row int, g rune, class int) {
		if col < 0 || col >= cols || row < 0 || row >= rows {
			return
		}
		if class >= paint[row][col] {
			glyphs[row][col] = g
			paint[row][col] = class
		}
	}

	for _, o := range m.Editor.Scene().Objects() {
		if o.Decoration() {
			continue
		}
		switch o.Kind {
		case scene.KindConnector:
			drawLine(o.Start, o.End, project, set)
			if o.Arrow {
				col, row := project(o.ArrowAt)
				set(col, row, '▸', paintConnector)
			}
		case scene.KindText:
			col, row := project(geo.Pt(o.Left, o.Top))
			drawString(col, row, o.Text, paintText, set)
		default:
			m.drawBox(o, project, set)
		}
	}

	ccol, crow := project(m.cursor)
	set(ccol, crow, '┼', paintCursor)

	return renderGrid(glyphs, paint)
}

// drawBox draws an object's bounding box with its label centered inside.
func (m *CanvasModel) drawBox(o *scene.Object, project func(geo.Point) (int, int), set func(int, int, rune, int)) {
	bb := o.BoundingBox()
	x0, y0 := project(geo.Pt(bb.Left, bb.Top))
	x1, y1 := project(geo.Pt(bb.Right(), bb.Bottom()))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	class := paintObject
	if o.ID == m.connectFrom {
		class = paintPicked
	}

	set(x0, y0, '┌', class)
	set(x1, y0, '┐', class)
	set(x0, y1, '└', class)
	set(x1, y1, '┘', class)
	for x := x0 + 1; x < x1; x++ {
		set(x, y0, '─', class)
		set(x, y1, '─', class)
	}
	for y := y0 + 1; y < y1; y++ {
		set(x0, y, '│', class)
		set(x1, y, '│', class)
	}

	label := displayName(o)
	inner := x1 - x0 - 1
	if inner > 0 && len(label) > inner {
		label = label[:inner]
	}
	if inner > 0 {
		mid := (y0 + y1) / 2
		start := x0 + 1 + (inner-len(label))/2
		drawString(start, mid, label, class, set)
	}
}

// drawString writes s left to right starting at (col, row).
func drawString(col, row int, s string, class int, set func(int, int, rune, int)) {
	for i, r := range []rune(s) {
		set(col+i, row, r, class)
	}
}

// drawLine rasterizes a straight segment between two scene points.
func drawLine(a, b geo.Point, project func(geo.Point) (int, int), set func(int, int, rune, int)) {
	const steps = 64
	for i := 0; i <= steps; i++ {
		t := float64(i) / steps
		p := geo.Pt(geo.Lerp(a.X, b.X, t), geo.Lerp(a.Y, b.Y, t))
		col, row := project(p)
		set(col, row, '·', paintConnector)
	}
}

// renderGrid styles contiguous runs of same-class cells per row.
func renderGrid(glyphs [][]rune, paint [][]int) string {
	var b strings.Builder
	for r := range glyphs {
		runStart := 0
		for c := 1; c <= len(glyphs[r]); c++ {
			if c < len(glyphs[r]) && paint[r][c] == paint[r][runStart] {
				continue
			}
			run := string(glyphs[r][runStart:c])
			if style, ok := paintStyles[paint[r][runStart]]; ok {
				b.WriteString(style.Render(run))
			} else {
				b.WriteString(run)
			}
			runStart = c
		}
		b.WriteString("\n")
	}
	return b.String()
}

// statusBar renders the metrics-driven status line.
func (m *CanvasModel) statusBar() string {
	mt := m.metrics
	parts := []string{
		fmt.Sprintf("objects %d", mt.ObjectCount),
		fmt.Sprintf("connectors %d", mt.ConnectorCount),
		fmt.Sprintf("zoom %.0f%%", mt.Zoom*100),
		fmt.Sprintf("surface %.0fx%.0f", mt.SurfaceSize.Width, mt.SurfaceSize.Height),
		fmt.Sprintf("history %d", mt.HistoryEntries),
		"shape " + m.shapes[m.shapeIdx],
	}
	line := strings.Join(parts, "  ")

	state := syncLabel(mt)
	if m.saving {
		state = "saving…"
	}
	if m.status != "" {
		state = m.status
	}

	bar := statusBarStyle.Render(line)
	if state != "" {
		bar += statusDirtyStyle.Render(" " + state + " ")
	}
	return bar
}

// syncLabel summarizes dirty/sync state for the status bar.
func syncLabel(mt editor.Metrics) string {
	if mt.Dirty {
		return "modified"
	}
	if mt.SyncStatus == store.SyncSynced {
		return "saved"
	}
	return ""
}

func (m *CanvasModel) helpLine() string {
	return StyleDim.Render("←↓↑→ move  a add  tab shape  t text  c connect  x delete  u/r undo/redo  v version  +/- zoom  f fit  ctrl+s save  q quit")
}
