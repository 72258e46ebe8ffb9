package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/permitflow/pkg/config"
	"github.com/vanderheijden86/permitflow/pkg/debug"
	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/metrics"
	"github.com/vanderheijden86/permitflow/pkg/model"
	"github.com/vanderheijden86/permitflow/pkg/nav"
	"github.com/vanderheijden86/permitflow/pkg/watcher"
)

// Default dimensions for an immediate ready state (updated when
// WindowSizeMsg arrives).
const (
	defaultWidth  = 120
	defaultHeight = 40
	minContentW   = 24
)

// focus represents which UI element has keyboard focus
type focus int

const (
	focusSidebar focus = iota
	focusContent
	focusGoto
	focusHelp
)

// FileChangedMsg is sent when a watched data file changes on disk.
type FileChangedMsg struct{}

// WatchFileCmd waits for the next change notification from w.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

var clipboardWrite = clipboard.WriteAll

type targetKind int

const (
	targetCarousel targetKind = iota
	targetTrigger
)

// contentTarget is a focusable element in the content pane.
type contentTarget struct {
	id      string
	kind    targetKind
	trigger Trigger
	line    int // first content line of the owning section
}

// Options configures a Model.
type Options struct {
	Config config.Config
	// Watcher, when set, reloads the data set from DataDir on change.
	Watcher *watcher.Watcher
	DataDir string
}

// Model is the top-level Bubble Tea model: sidebar, content pane and the
// popover overlay layer.
type Model struct {
	data  *loader.Dataset
	cfg   config.Config
	nav   nav.State
	theme Theme

	sidebar   Sidebar
	viewport  viewport.Model
	focused   focus
	prevFocus focus
	gotoModal GotoModal

	carousels map[string]*Carousel
	targets   []contentTarget
	focusID   string
	popovers  *Popovers
	docCursor int

	watcher *watcher.Watcher
	dataDir string

	width  int
	height int

	statusMsg     string
	statusIsError bool
}

// NewModel creates the browser over a loaded data set.
func NewModel(ds *loader.Dataset, opts Options) Model {
	cfg := opts.Config
	if cfg.UI.SidebarWidth == 0 {
		cfg = config.DefaultConfig()
	}

	state := nav.New(ds.Workflows)
	state.SelectView(cfg.StartView())

	m := Model{
		data:      ds,
		cfg:       cfg,
		nav:       state,
		theme:     DefaultTheme(lipgloss.NewRenderer(os.Stdout)),
		sidebar:   NewSidebar(ds),
		viewport:  viewport.New(defaultWidth, defaultHeight),
		focused:   focusSidebar,
		carousels: make(map[string]*Carousel),
		popovers:  &Popovers{},
		watcher:   opts.Watcher,
		dataDir:   opts.DataDir,
		width:     defaultWidth,
		height:    defaultHeight,
	}
	m.sidebar.SyncTo(m.nav, ds.Workflows)
	m.layout()
	m.rebuildContent()
	return m
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

// Nav returns the navigation state.
func (m Model) Nav() nav.State { return m.nav }

// Popovers returns the popover stack.
func (m Model) Popovers() *Popovers { return m.popovers }

// Carousel returns the scroll state of the carousel with the given key.
func (m Model) Carousel(key string) *Carousel { return m.carousels[key] }

// FocusedTarget returns the id of the focused content target.
func (m Model) FocusedTarget() string { return m.focusID }

// Status returns the footer status message.
func (m Model) Status() (string, bool) { return m.statusMsg, m.statusIsError }

// ══════════════════════════════════════════════════════════════════════════════
// LAYOUT
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) bodyHeight() int {
	h := m.height - 1 // footer
	if h < 5 {
		h = 5
	}
	return h
}

func (m Model) sidebarWidth() int {
	return m.cfg.UI.SidebarWidth
}

// layout sizes the viewport to the content panel: panel border (2) and
// padding (2) horizontally, border (2) plus the badge row and gap vertically.
func (m *Model) layout() {
	w := m.width - (m.sidebarWidth() + 2) - 4
	if w < minContentW {
		w = minContentW
	}
	h := m.bodyHeight() - 4
	if h < 1 {
		h = 1
	}
	m.viewport.Width = w
	m.viewport.Height = h
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT
// ══════════════════════════════════════════════════════════════════════════════

func (m *Model) carousel(key string) *Carousel {
	c, ok := m.carousels[key]
	if !ok {
		c = NewCarousel(key)
		m.carousels[key] = c
	}
	return c
}

func (m Model) categoryHeader(c model.Category, width int) string {
	title := strings.TrimSpace(c.Icon + " " + c.Title)
	out := m.theme.Title.Render(truncate(title, width))
	if c.Description != "" {
		out += "\n" + m.theme.MutedText.Width(width).Render(c.Description)
	}
	return out
}

// rebuildContent re-renders the content pane for the current navigation
// state and recollects the focusable targets.
func (m *Model) rebuildContent() {
	defer metrics.Timer(metrics.ContentRender)()
	width := m.viewport.Width
	var b strings.Builder
	next := 0
	appendBlock := func(s string) int {
		if s == "" {
			return -1
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		start := next
		b.WriteString(s)
		next = start + lipgloss.Height(s) + 1
		return start
	}

	var targets []contentTarget
	renderSections := func(cat model.Category, testView bool) {
		appendBlock(m.categoryHeader(cat, width))
		for i, s := range cat.Sections {
			key := fmt.Sprintf("%s/%d", cat.ID, i)
			opts := RenderOptions{
				Key:       key,
				TestView:  testView,
				Width:     width,
				CardWidth: m.cfg.UI.CardWidth,
				Registry:  m.data.Citations,
				Theme:     m.theme,
				Focus:     m.focusID,
				Open:      m.popovers.IsOpen,
			}
			carousel := false
			if IsCarousel(s, testView) {
				steps := s.Content.(model.StepsContent).Steps
				if len(steps) > 0 {
					c := m.carousel(key)
					c.Resize(StripWidth(m.theme, steps, opts.CardWidth), CarouselViewport(width))
					opts.Offset = c.Offset()
					carousel = true
				}
			}
			start := appendBlock(RenderSection(s, opts))
			if start < 0 {
				continue
			}
			if carousel {
				targets = append(targets, contentTarget{id: key, kind: targetCarousel, line: start})
			}
			for _, tr := range SectionTriggers(s, key, testView, m.data.Citations) {
				targets = append(targets, contentTarget{id: tr.ID, kind: targetTrigger, trigger: tr, line: start})
			}
		}
	}

	switch m.nav.ActiveView {
	case model.ViewTests:
		renderSections(m.data.Tests, true)
	case model.ViewDocuments:
		records := m.data.Citations.All()
		m.docCursor = clampInt(m.docCursor, 0, len(records)-1)
		appendBlock(RenderDocuments(m.theme, records, m.docCursor, width, m.focused == focusContent))
	default:
		if cat, ok := m.nav.Resolve(m.data.Workflows); ok {
			renderSections(cat, false)
		}
	}

	m.targets = targets
	mounted := make(map[string]bool, len(targets))
	found := false
	for _, t := range targets {
		mounted[t.id] = true
		if t.id == m.focusID {
			found = true
		}
	}
	if !found {
		m.focusID = ""
	}
	m.popovers.Prune(mounted)
	m.viewport.SetContent(b.String())
}

// resetContent is used after a view or workflow switch.
func (m *Model) resetContent() {
	m.focusID = ""
	m.docCursor = 0
	m.rebuildContent()
	m.viewport.GotoTop()
}

func (m Model) targetIndex(id string) int {
	for i, t := range m.targets {
		if t.id == id {
			return i
		}
	}
	return -1
}

// cycleTarget moves the content focus by delta, wrapping around.
func (m *Model) cycleTarget(delta int) {
	n := len(m.targets)
	if n == 0 {
		return
	}
	i := m.targetIndex(m.focusID)
	switch {
	case i < 0 && delta > 0:
		i = 0
	case i < 0:
		i = n - 1
	default:
		i = ((i+delta)%n + n) % n
	}
	m.focusID = m.targets[i].id
	m.rebuildContent()
	m.scrollIntoView(m.targets[i].line)
}

func (m *Model) scrollIntoView(line int) {
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line)
	}
}

// focusedCarousel returns the focused carousel, or the first one in the
// content when focus is elsewhere.
func (m *Model) focusedCarousel() *Carousel {
	if i := m.targetIndex(m.focusID); i >= 0 && m.targets[i].kind == targetCarousel {
		return m.carousels[m.focusID]
	}
	for _, t := range m.targets {
		if t.kind == targetCarousel {
			m.focusID = t.id
			return m.carousels[t.id]
		}
	}
	return nil
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsError = isErr
}

func (m *Model) selectView(v model.View) {
	if v == m.nav.ActiveView {
		return
	}
	m.nav.SelectView(v)
	m.sidebar.SyncTo(m.nav, m.data.Workflows)
	debug.Log("view -> %s (workflow %q)", m.nav.ActiveView, m.nav.SelectedWorkflowID)
	m.resetContent()
}

// reload re-reads the data directory. A failed reload keeps the current data.
func (m *Model) reload() {
	if m.dataDir == "" {
		return
	}
	ds, err := loader.LoadDir(m.dataDir)
	if err != nil {
		debug.Log("reload failed: %v", err)
		m.setStatus("Reload failed: "+err.Error(), true)
		return
	}
	m.data = ds
	m.sidebar = NewSidebar(ds)
	m.sidebar.SyncTo(m.nav, ds.Workflows)
	m.rebuildContent()
	m.setStatus("Reloaded data from "+m.dataDir, false)
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The goto picker receives every message so huh's internal navigation
	// messages reach it.
	if m.focused == focusGoto {
		return m.updateGoto(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.rebuildContent()
		return m, nil

	case carouselFrameMsg:
		c := m.carousels[msg.Key]
		if c == nil {
			return m, nil
		}
		cmd := c.Step()
		m.rebuildContent()
		return m, cmd

	case FileChangedMsg:
		m.reload()
		if m.watcher != nil {
			return m, WatchFileCmd(m.watcher)
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) updateGoto(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.focused = m.prevFocus
		return m, nil
	}
	var cmd tea.Cmd
	m.gotoModal, cmd = m.gotoModal.Update(msg)
	switch {
	case m.gotoModal.Done():
		m.nav.SelectWorkflow(m.gotoModal.Choice())
		m.nav.SelectView(model.ViewWorkflows)
		m.sidebar.SyncTo(m.nav, m.data.Workflows)
		m.focused = focusContent
		m.resetContent()
		return m, nil
	case m.gotoModal.Aborted():
		m.focused = m.prevFocus
		return m, nil
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && m.popovers.Len() > 0 {
		layers := m.popoverLayers()
		for _, l := range layers {
			if !l.rect.Contains(msg.X, msg.Y) {
				m.popovers.Close(l.id)
			}
		}
		m.rebuildContent()
		return m, nil
	}
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := msg.String()
	m.statusMsg = ""

	if s == "ctrl+c" {
		return m, tea.Quit
	}
	if m.focused == focusHelp {
		m.focused = m.prevFocus
		return m, nil
	}

	// Popover actions apply to the most recent popover; everything else
	// stays interactive while popovers are open.
	if top, ok := m.popovers.Top(); ok {
		switch {
		case key.Matches(msg, popoverKeys.Close):
			m.popovers.CloseTop()
			m.rebuildContent()
			return m, nil
		case key.Matches(msg, popoverKeys.CloseAll):
			m.popovers.CloseAll()
			m.rebuildContent()
			return m, nil
		case key.Matches(msg, popoverKeys.Copy):
			m.copy(top.Record.APA, "Copied citation")
			return m, nil
		}
	}

	switch s {
	case "q":
		return m, tea.Quit
	case "?":
		m.prevFocus = m.focused
		m.focused = focusHelp
		return m, nil
	case "tab":
		if m.focused == focusSidebar {
			m.focused = focusContent
		} else {
			m.focused = focusSidebar
			m.sidebar.SyncTo(m.nav, m.data.Workflows)
		}
		m.rebuildContent()
		return m, nil
	case "1":
		m.selectView(model.ViewWorkflows)
		return m, nil
	case "2":
		m.selectView(model.ViewTests)
		return m, nil
	case "3":
		m.selectView(model.ViewDocuments)
		return m, nil
	case "g":
		if len(m.data.Workflows) == 0 {
			return m, nil
		}
		m.prevFocus = m.focused
		m.focused = focusGoto
		m.gotoModal = NewGotoModal(m.data.Workflows, m.nav.SelectedWorkflowID, m.theme)
		return m, m.gotoModal.Init()
	}

	if m.focused == focusSidebar {
		return m.handleSidebarKey(s)
	}
	if m.nav.ActiveView == model.ViewDocuments {
		return m.handleDocumentsKey(s)
	}
	return m.handleContentKey(s)
}

func (m Model) handleSidebarKey(s string) (tea.Model, tea.Cmd) {
	switch s {
	case "j", "down":
		m.sidebar.MoveDown()
	case "k", "up":
		m.sidebar.MoveUp()
	case "enter", "l", "right":
		before := m.nav
		m.sidebar.Apply(&m.nav)
		m.focused = focusContent
		if m.nav != before {
			debug.Log("select view=%s workflow=%q", m.nav.ActiveView, m.nav.SelectedWorkflowID)
			m.resetContent()
		} else {
			m.rebuildContent()
		}
	}
	return m, nil
}

func (m Model) handleDocumentsKey(s string) (tea.Model, tea.Cmd) {
	records := m.data.Citations.All()
	switch s {
	case "j", "down", "l", "right":
		if m.docCursor < len(records)-1 {
			m.docCursor++
		}
	case "k", "up", "h", "left":
		if m.docCursor > 0 {
			m.docCursor--
		}
	case "enter", "y":
		if m.docCursor < len(records) {
			m.copy(records[m.docCursor].URL, "Copied URL")
		}
		return m, nil
	case "esc":
		m.focused = focusSidebar
	}
	m.rebuildContent()
	return m, nil
}

func (m Model) handleContentKey(s string) (tea.Model, tea.Cmd) {
	switch s {
	case "j", "down":
		m.viewport.SetYOffset(m.viewport.YOffset + 1)
	case "k", "up":
		m.viewport.SetYOffset(m.viewport.YOffset - 1)
	case "pgdown", "ctrl+d", " ":
		m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height/2)
	case "pgup", "ctrl+u":
		m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height/2)
	case "home":
		m.viewport.GotoTop()
	case "end":
		m.viewport.GotoBottom()
	case "n":
		m.cycleTarget(1)
	case "N", "shift+tab":
		m.cycleTarget(-1)
	case "h", "left", "l", "right":
		c := m.focusedCarousel()
		if c == nil {
			return m, nil
		}
		dir := ScrollRight
		if s == "h" || s == "left" {
			dir = ScrollLeft
		}
		cmd := c.Scroll(dir)
		m.rebuildContent()
		return m, cmd
	case "enter":
		if i := m.targetIndex(m.focusID); i >= 0 && m.targets[i].kind == targetTrigger {
			m.popovers.Open(m.targets[i].trigger)
			debug.Log("popover open %s (%s)", m.focusID, m.targets[i].trigger.Citation.Source)
			m.rebuildContent()
		}
	case "esc":
		m.focused = focusSidebar
		m.focusID = ""
		m.rebuildContent()
	}
	return m, nil
}

func (m *Model) copy(text, label string) {
	if err := clipboardWrite(text); err != nil {
		m.setStatus("Clipboard unavailable: "+err.Error(), true)
		return
	}
	m.setStatus(label, false)
}

// ══════════════════════════════════════════════════════════════════════════════
// VIEW
// ══════════════════════════════════════════════════════════════════════════════

// popoverLayer is one rendered popover and where it sits in the frame.
type popoverLayer struct {
	id   string
	view string
	rect rect
}

// popoverLayers renders the open popovers bottom first and places them.
// Popovers whose citation no longer resolves are skipped.
func (m Model) popoverLayers() []popoverLayer {
	stack := m.popovers.Stack()
	width := m.width - 4
	var layers []popoverLayer
	var views []string
	for i, tr := range stack {
		c := tr.Citation
		v := RenderPopover(m.theme, m.data.Citations, &c, width, i == len(stack)-1)
		if v == "" {
			continue
		}
		layers = append(layers, popoverLayer{id: tr.ID, view: v})
		views = append(views, v)
	}
	for i, r := range placeStack(views, m.width, m.height) {
		layers[i].rect = r
	}
	return layers
}

func (m Model) View() string {
	var body string
	switch m.focused {
	case focusGoto:
		body = m.gotoModal.View(m.width, m.bodyHeight())
	case focusHelp:
		body = renderHelpOverlay(m.theme, m.width, m.bodyHeight())
	default:
		body = m.renderPanels()
	}

	finalStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height)
	frame := finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter()))

	if m.focused == focusGoto || m.focused == focusHelp {
		return frame
	}
	for _, l := range m.popoverLayers() {
		frame = overlayAt(frame, l.view, l.rect.X, l.rect.Y, m.width, m.height)
	}
	return frame
}

func (m Model) renderPanels() string {
	sidebarStyle, contentStyle := FocusedPanelStyle, PanelStyle
	if m.focused == focusContent {
		sidebarStyle, contentStyle = PanelStyle, FocusedPanelStyle
	}
	panelHeight := m.bodyHeight() - 2

	side := sidebarStyle.
		Width(m.sidebarWidth()).
		Height(panelHeight).
		MaxHeight(panelHeight + 2).
		Render(m.sidebar.View(m.theme, m.nav, m.data.Workflows, m.sidebarWidth(), panelHeight, m.focused == focusSidebar))

	badge := RenderViewBadge(m.theme, m.nav.ActiveView.String())
	source := m.theme.MutedText.Render(" " + m.data.Source)
	content := contentStyle.
		Padding(0, 1).
		Width(m.viewport.Width + 2).
		Height(panelHeight).
		MaxHeight(panelHeight + 2).
		Render(badge + source + "\n\n" + m.viewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, side, content)
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		fg, prefix := ColorSuccess, "✓ "
		if m.statusIsError {
			fg, prefix = ColorDanger, "✗ "
		}
		msg := lipgloss.NewStyle().Foreground(fg).Bold(true).Padding(0, 1).Render(prefix + m.statusMsg)
		return truncateFooter(msg, m.width)
	}

	type hint struct {
		key   string
		label string
	}
	var hints []hint
	switch {
	case m.popovers.Len() > 0:
		hints = []hint{{"esc", "close"}, {"x", "close all"}, {"y", "copy"}, {"n/N", "target"}, {"?", "help"}}
	case m.focused == focusSidebar:
		hints = []hint{{"j/k", "nav"}, {"enter", "open"}, {"tab", "content"}, {"g", "goto"}, {"1-3", "view"}, {"?", "help"}, {"q", "quit"}}
	case m.nav.ActiveView == model.ViewDocuments:
		hints = []hint{{"j/k", "doc"}, {"enter", "copy url"}, {"tab", "sidebar"}, {"?", "help"}, {"q", "quit"}}
	default:
		hints = []hint{{"n/N", "target"}, {"h/l", "scroll"}, {"enter", "cite"}, {"j/k", "scroll"}, {"tab", "sidebar"}, {"?", "help"}, {"q", "quit"}}
	}

	keyStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	labelStyle := lipgloss.NewStyle().Foreground(ColorText)
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keyStyle.Render(h.key) + " " + labelStyle.Render(h.label)
	}
	return truncateFooter(" "+strings.Join(parts, "  "), m.width)
}

func truncateFooter(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
