package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/vanderheijden86/permitflow/pkg/config"
	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/model"
	"github.com/vanderheijden86/permitflow/pkg/testutil"
)

func loadEmbedded(t *testing.T) *loader.Dataset {
	t.Helper()
	ds, err := loader.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	return ds
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	return NewModel(loadEmbedded(t), Options{Config: config.DefaultConfig()})
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// focusTarget cycles the content focus until id is focused.
func focusTarget(t *testing.T, m Model, id string) Model {
	t.Helper()
	for i := 0; i <= len(m.targets); i++ {
		if m.FocusedTarget() == id {
			return m
		}
		m = press(t, m, "n")
	}
	t.Fatalf("target %q never focused; targets: %v", id, targetIDs(m))
	return m
}

func targetIDs(m Model) []string {
	ids := make([]string, len(m.targets))
	for i, tg := range m.targets {
		ids[i] = tg.id
	}
	return ids
}

func stubClipboard(t *testing.T, err error) *string {
	t.Helper()
	var got string
	orig := clipboardWrite
	clipboardWrite = func(s string) error {
		got = s
		return err
	}
	t.Cleanup(func() { clipboardWrite = orig })
	return &got
}

func TestModel_InitialState(t *testing.T) {
	m := newTestModel(t)

	if m.Nav().ActiveView != model.ViewWorkflows {
		t.Errorf("expected WORKFLOWS, got %s", m.Nav().ActiveView)
	}
	if m.Nav().SelectedWorkflowID != "tower-planning" {
		t.Errorf("expected first workflow selected, got %q", m.Nav().SelectedWorkflowID)
	}
	if m.Popovers().Len() != 0 {
		t.Error("no popover should be open initially")
	}

	view := ansi.Strip(m.View())
	for _, want := range []string{"PERMITFLOW", "Telecommunication Tower Planning Permission", "WORKFLOWS", "embedded"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in initial view", want)
		}
	}
}

func TestModel_StartViewFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.UI.DefaultView = "documents"
	m := NewModel(loadEmbedded(t), Options{Config: cfg})
	if m.Nav().ActiveView != model.ViewDocuments {
		t.Errorf("expected DOCUMENTS start view, got %s", m.Nav().ActiveView)
	}
	if !strings.Contains(ansi.Strip(m.View()), "Source Documents") {
		t.Error("expected documents list rendered")
	}
}

func TestModel_ZeroConfigUsesDefaults(t *testing.T) {
	m := NewModel(loadEmbedded(t), Options{})
	if m.sidebarWidth() != config.DefaultConfig().UI.SidebarWidth {
		t.Errorf("sidebar width = %d", m.sidebarWidth())
	}
}

func TestModel_ViewSwitchPreservesSelection(t *testing.T) {
	m := newTestModel(t)

	// Pick the second workflow from the sidebar.
	m = press(t, m, "j", "enter")
	if got := m.Nav().SelectedWorkflowID; got != "fibre-road-reserve" {
		t.Fatalf("selected = %q, want fibre-road-reserve", got)
	}

	m = press(t, m, "2")
	if m.Nav().ActiveView != model.ViewTests {
		t.Fatalf("expected TESTS, got %s", m.Nav().ActiveView)
	}
	if !strings.Contains(ansi.Strip(m.View()), "Compliance Test Scenarios") {
		t.Error("expected tests category in content")
	}

	m = press(t, m, "3")
	if m.Nav().ActiveView != model.ViewDocuments {
		t.Fatalf("expected DOCUMENTS, got %s", m.Nav().ActiveView)
	}

	m = press(t, m, "1")
	if m.Nav().ActiveView != model.ViewWorkflows {
		t.Fatalf("expected WORKFLOWS, got %s", m.Nav().ActiveView)
	}
	if got := m.Nav().SelectedWorkflowID; got != "fibre-road-reserve" {
		t.Errorf("selection lost across view switches: %q", got)
	}
	if !strings.Contains(ansi.Strip(m.View()), "Fibre Deployment in Road Reserves") {
		t.Error("expected the preserved workflow to render")
	}
}

func TestModel_SidebarSelectsReferenceViews(t *testing.T) {
	m := newTestModel(t)
	n := len(m.data.Workflows)

	for i := 0; i < n; i++ {
		m = press(t, m, "j")
	}
	m = press(t, m, "enter")
	if m.Nav().ActiveView != model.ViewTests {
		t.Fatalf("expected TESTS from the sidebar, got %s", m.Nav().ActiveView)
	}

	m = press(t, m, "tab", "j", "enter")
	if m.Nav().ActiveView != model.ViewDocuments {
		t.Fatalf("expected DOCUMENTS from the sidebar, got %s", m.Nav().ActiveView)
	}
	if m.Nav().SelectedWorkflowID != "tower-planning" {
		t.Errorf("selection changed by reference views: %q", m.Nav().SelectedWorkflowID)
	}
}

func TestModel_TargetsWorkflowView(t *testing.T) {
	m := newTestModel(t)
	ids := targetIDs(m)
	if len(ids) < 2 || ids[0] != "tower-planning/0" || ids[1] != "tower-planning/0/cite" {
		t.Fatalf("unexpected leading targets %v", ids)
	}
	if m.targets[0].kind != targetCarousel || m.targets[1].kind != targetTrigger {
		t.Error("expected carousel then trigger")
	}
	for _, tg := range m.targets {
		if tg.kind == targetTrigger && tg.trigger.Record.URL == "" {
			t.Errorf("trigger %s has no resolved record", tg.id)
		}
	}
}

func TestModel_TargetsTestView(t *testing.T) {
	m := press(t, newTestModel(t), "2")
	ids := targetIDs(m)
	if len(ids) == 0 || ids[0] != "tests/0/item/0" {
		t.Fatalf("unexpected test view targets %v", ids)
	}
	for _, tg := range m.targets {
		if tg.kind == targetCarousel {
			t.Errorf("test view should mount no carousels, found %s", tg.id)
		}
	}
}

func TestModel_CycleTargetsWraps(t *testing.T) {
	m := press(t, newTestModel(t), "tab")
	n := len(m.targets)
	m = press(t, m, "n")
	first := m.FocusedTarget()
	for i := 0; i < n; i++ {
		m = press(t, m, "n")
	}
	if m.FocusedTarget() != first {
		t.Errorf("expected wrap back to %q, got %q", first, m.FocusedTarget())
	}
	m = press(t, m, "N")
	if m.FocusedTarget() != m.targets[n-1].id {
		t.Errorf("expected N to wrap to last target, got %q", m.FocusedTarget())
	}
}

func TestModel_PopoverOpenAndClose(t *testing.T) {
	m := press(t, newTestModel(t), "tab")
	m = focusTarget(t, m, "tower-planning/0/cite")

	m = press(t, m, "enter")
	if !m.Popovers().IsOpen("tower-planning/0/cite") {
		t.Fatal("expected popover open after enter")
	}
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "Citation Source") {
		t.Error("expected popover drawn over the frame")
	}

	m = press(t, m, "esc")
	if m.Popovers().Len() != 0 {
		t.Error("expected esc to close the popover")
	}
	if m.focused != focusContent {
		t.Error("closing a popover should keep content focus")
	}
	m = press(t, m, "esc")
	if m.focused != focusSidebar {
		t.Error("second esc should return to the sidebar")
	}
}

func TestModel_EnterOnCarouselOpensNothing(t *testing.T) {
	m := press(t, newTestModel(t), "tab")
	m = focusTarget(t, m, "tower-planning/0")
	m = press(t, m, "enter")
	if m.Popovers().Len() != 0 {
		t.Error("carousel target should not open a popover")
	}
}

func TestModel_StackedPopovers(t *testing.T) {
	m := press(t, newTestModel(t), "tab")
	var triggers []string
	for _, tg := range m.targets {
		if tg.kind == targetTrigger {
			triggers = append(triggers, tg.id)
		}
	}
	if len(triggers) < 2 {
		t.Fatalf("need two triggers, have %v", triggers)
	}

	m = focusTarget(t, m, triggers[0])
	m = press(t, m, "enter")
	m = focusTarget(t, m, triggers[1])
	m = press(t, m, "enter")
	if m.Popovers().Len() != 2 {
		t.Fatalf("expected 2 open popovers, got %d", m.Popovers().Len())
	}
	if top, _ := m.Popovers().Top(); top.ID != triggers[1] {
		t.Errorf("top = %s, want %s", top.ID, triggers[1])
	}

	// c closes only the most recent one.
	m = press(t, m, "c")
	if !m.Popovers().IsOpen(triggers[0]) || m.Popovers().IsOpen(triggers[1]) {
		t.Errorf("unexpected stack after c: %s", stackIDs(m.Popovers()))
	}

	m = focusTarget(t, m, triggers[1])
	m = press(t, m, "enter", "x")
	if m.Popovers().Len() != 0 {
		t.Error("expected x to close every popover")
	}
}

func TestModel_ClickOutsideClosesPopover(t *testing.T) {
	m := press(t, newTestModel(t), "tab")
	m = focusTarget(t, m, "tower-planning/0/cite")
	m = press(t, m, "enter")

	layers := m.popoverLayers()
	if len(layers) != 1 {
		t.Fatalf("expected one popover layer, got %d", len(layers))
	}
	r := layers[0].rect

	// A click inside leaves it open.
	m, _ = send(t, m, tea.MouseMsg{X: r.X + r.W/2, Y: r.Y + r.H/2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.Popovers().Len() != 1 {
		t.Fatal("click inside the popover should not close it")
	}

	m, _ = send(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.Popovers().Len() != 0 {
		t.Error("click outside should close the popover")
	}
}

func TestModel_ClickNeverOpensPopover(t *testing.T) {
	m := press(t, newTestModel(t), "tab")
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	for y := 0; y < 30; y += 2 {
		for x := 0; x < 100; x += 5 {
			m, _ = send(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		}
	}
	if m.Popovers().Len() != 0 {
		t.Errorf("clicks opened %d popover(s); triggers open from the keyboard", m.Popovers().Len())
	}
}

func TestModel_PopoversClosedOnViewSwitch(t *testing.T) {
	m := press(t, newTestModel(t), "tab")
	m = focusTarget(t, m, "tower-planning/0/cite")
	m = press(t, m, "enter", "2")
	if m.Popovers().Len() != 0 {
		t.Error("switching views should unmount the popover")
	}
}

func TestModel_CopyCitation(t *testing.T) {
	copied := stubClipboard(t, nil)
	m := press(t, newTestModel(t), "tab")
	m = focusTarget(t, m, "tower-planning/0/cite")
	m = press(t, m, "enter")
	top, _ := m.Popovers().Top()

	m = press(t, m, "y")
	if *copied != top.Record.APA || *copied == "" {
		t.Errorf("copied %q, want %q", *copied, top.Record.APA)
	}
	if msg, isErr := m.Status(); msg != "Copied citation" || isErr {
		t.Errorf("status = %q (err=%v)", msg, isErr)
	}
	if m.Popovers().Len() != 1 {
		t.Error("copying should leave the popover open")
	}
}

func TestModel_CopyFailureReported(t *testing.T) {
	stubClipboard(t, errors.New("no display"))
	m := press(t, newTestModel(t), "3", "tab", "enter")
	msg, isErr := m.Status()
	if !isErr || !strings.Contains(msg, "no display") {
		t.Errorf("status = %q (err=%v)", msg, isErr)
	}
	if !strings.Contains(ansi.Strip(m.View()), "no display") {
		t.Error("expected error in footer")
	}
}

func TestModel_DocumentsCopyURL(t *testing.T) {
	copied := stubClipboard(t, nil)
	m := press(t, newTestModel(t), "3", "tab", "j", "enter")

	records := m.data.Citations.All()
	if *copied != records[1].URL {
		t.Errorf("copied %q, want %q", *copied, records[1].URL)
	}
	if msg, _ := m.Status(); msg != "Copied URL" {
		t.Errorf("status = %q", msg)
	}

	// The cursor stops at both ends.
	m = press(t, m, "k", "k", "k", "enter")
	if *copied != records[0].URL {
		t.Errorf("copied %q, want first record", *copied)
	}
	m = press(t, m, "esc")
	if m.focused != focusSidebar {
		t.Error("esc in documents should return to the sidebar")
	}
}

func TestModel_DocumentsListsEveryRecord(t *testing.T) {
	m := press(t, newTestModel(t), "3")
	content := ansi.Strip(m.viewport.View())
	first := m.data.Citations.All()[0]
	if !strings.Contains(content, first.DisplayName()) {
		t.Errorf("expected %q in documents list", first.DisplayName())
	}
	if got := strings.Count(ansi.Strip(RenderDocuments(m.theme, m.data.Citations.All(), 0, 200, false)), "View PDF"); got != m.data.Citations.Len() {
		t.Errorf("rendered %d cards, want %d", got, m.data.Citations.Len())
	}
}

func TestModel_CarouselScrollAnimates(t *testing.T) {
	m := press(t, newTestModel(t), "tab")

	next, cmd := m.Update(keyMsg("l"))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected animation frames after scrolling")
	}
	if m.FocusedTarget() != "tower-planning/0" {
		t.Errorf("scroll should focus the carousel, focus=%q", m.FocusedTarget())
	}

	c := m.Carousel("tower-planning/0")
	want := ScrollTarget(0, c.ContentWidth, c.ViewportWidth, ScrollRight)
	if want == 0 {
		t.Fatal("embedded flowchart should overflow the default viewport")
	}

	frames := 0
	for cmd != nil {
		m, cmd = send(t, m, carouselFrameMsg{Key: "tower-planning/0"})
		frames++
		if frames > 10*carouselFPS {
			t.Fatal("carousel never settled")
		}
	}
	if c.Offset() != want {
		t.Errorf("offset = %d, want %d", c.Offset(), want)
	}
	if !c.Overflow().CanScrollLeft {
		t.Error("expected left control after scrolling right")
	}

	// Frames for a carousel that is not mounted are ignored.
	if _, cmd := send(t, m, carouselFrameMsg{Key: "missing/0"}); cmd != nil {
		t.Error("expected no command for an unknown carousel")
	}
}

func TestModel_WindowResizeUpdatesCarousel(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 200, Height: 50})

	c := m.Carousel("tower-planning/0")
	if c == nil {
		t.Fatal("expected carousel for the flowchart section")
	}
	wantViewport := CarouselViewport(200 - (m.sidebarWidth() + 2) - 4)
	if c.ViewportWidth != wantViewport {
		t.Errorf("viewport = %d, want %d", c.ViewportWidth, wantViewport)
	}
	testutil.AssertMaxWidth(t, m.View(), 200)
}

func TestModel_GeneratedDataset(t *testing.T) {
	g := testutil.New(testutil.GeneratorConfig{Seed: 3, DanglingRate: 0.3, RaggedTables: true})
	ds := g.Dataset(6)
	m := NewModel(ds, Options{Config: config.DefaultConfig()})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 110, Height: 36})

	for i, c := range ds.Workflows {
		if i > 0 {
			m = press(t, m, "tab", "j", "enter")
		} else {
			m = press(t, m, "enter")
		}
		if got := m.Nav().SelectedWorkflowID; got != c.ID {
			t.Fatalf("selected %q, want %q", got, c.ID)
		}
		if m.Carousel(c.ID+"/0") == nil || m.Carousel(c.ID+"/1") == nil {
			t.Errorf("%s: expected carousels for both steps sections", c.ID)
		}
		// Carousel targets are "<cat>/<section>"; citation triggers go deeper.
		opened := 0
		for _, id := range targetIDs(m) {
			if strings.Count(id, "/") >= 2 {
				m = focusTarget(t, m, id)
				m = press(t, m, "enter")
				opened++
			}
		}
		cats := []model.Category{c}
		resolvable := testutil.CountCitations(cats, "") - testutil.CountCitations(cats, testutil.DanglingSource)
		if (opened > 0) != (resolvable > 0) {
			t.Errorf("%s: opened %d popovers with %d resolvable citations", c.ID, opened, resolvable)
		}
		if m.Popovers().Len() != opened {
			t.Errorf("%s: stack has %d popovers, opened %d", c.ID, m.Popovers().Len(), opened)
		}
		testutil.AssertMaxWidth(t, m.View(), 110)
		m = press(t, m, "x")
	}
}

func TestModel_HelpOverlay(t *testing.T) {
	m := press(t, newTestModel(t), "?")
	if !strings.Contains(ansi.Strip(m.View()), "close all popovers") {
		t.Error("expected help overlay")
	}
	m = press(t, m, "j")
	if m.focused != focusSidebar {
		t.Error("any key should dismiss help")
	}
}

func TestModel_GotoModalCancel(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(keyMsg("g"))
	m = next.(Model)
	if m.focused != focusGoto {
		t.Fatal("expected goto picker focused")
	}
	if !strings.Contains(ansi.Strip(m.View()), "Go to workflow") {
		t.Error("expected goto picker in view")
	}
	m = press(t, m, "esc")
	if m.focused != focusSidebar {
		t.Error("esc should restore the previous focus")
	}
	if m.Nav().SelectedWorkflowID != "tower-planning" {
		t.Error("cancelling must not change the selection")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func copyDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{loader.WorkflowsFile, loader.TestsFile, loader.CitationsFile} {
		b, err := os.ReadFile(filepath.Join("..", "loader", "data", name))
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestModel_ReloadOnFileChange(t *testing.T) {
	dir := copyDataDir(t)
	ds, err := loader.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(ds, Options{Config: config.DefaultConfig(), DataDir: dir})
	m = press(t, m, "tab")
	m = focusTarget(t, m, "tower-planning/0/cite")
	m = press(t, m, "enter")

	solo := "- id: solo\n  title: Solo Workflow\n  sections: []\n"
	if err := os.WriteFile(filepath.Join(dir, loader.WorkflowsFile), []byte(solo), 0o644); err != nil {
		t.Fatal(err)
	}
	m, cmd := send(t, m, FileChangedMsg{})
	if cmd != nil {
		t.Error("no watcher configured, expected no re-arm command")
	}
	if msg, isErr := m.Status(); isErr || !strings.Contains(msg, "Reloaded") {
		t.Errorf("status = %q (err=%v)", msg, isErr)
	}
	if m.Popovers().Len() != 0 {
		t.Error("popover for a removed section should be closed")
	}
	// The stale selection falls back to the first category.
	if !strings.Contains(ansi.Strip(m.View()), "Solo Workflow") {
		t.Error("expected reloaded workflow in view")
	}
}

func TestModel_ReloadFailureKeepsData(t *testing.T) {
	dir := copyDataDir(t)
	ds, err := loader.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(ds, Options{Config: config.DefaultConfig(), DataDir: dir})

	if err := os.WriteFile(filepath.Join(dir, loader.WorkflowsFile), []byte("- id: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, _ = send(t, m, FileChangedMsg{})
	if msg, isErr := m.Status(); !isErr || !strings.Contains(msg, "Reload failed") {
		t.Errorf("status = %q (err=%v)", msg, isErr)
	}
	if !strings.Contains(ansi.Strip(m.View()), "Telecommunication Tower Planning Permission") {
		t.Error("expected previous data to stay visible")
	}
}

func TestModel_FileChangedWithoutDataDir(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(t, m, FileChangedMsg{})
	if msg, _ := m.Status(); msg != "" {
		t.Errorf("embedded data should not reload, status %q", msg)
	}
}
