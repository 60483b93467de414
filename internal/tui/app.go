package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/placekeeper/internal/snapshot"
	"github.com/1broseidon/placekeeper/internal/store"
)

// snapshotItem implements list.Item for the snapshot sidebar.
type snapshotItem struct {
	info      store.Info
	isDefault bool
}

func (i snapshotItem) Title() string {
	if i.isDefault {
		return i.info.Name + " (default)"
	}
	return i.info.Name
}

func (i snapshotItem) Description() string {
	return i.info.ModTime.Format("2006-01-02 15:04")
}

func (i snapshotItem) FilterValue() string { return i.info.Name }

// snapshotsMsg carries a fresh snapshot listing.
type snapshotsMsg struct {
	infos []store.Info
	err   error
}

// previewMsg carries the decoded snapshot for the preview pane.
type previewMsg struct {
	name string
	snap *snapshot.Snapshot
	err  error
}

// actionDoneMsg is sent after save, restore or delete completes.
type actionDoneMsg struct {
	text string
	err  error
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{ seq int }

// model is the root bubbletea model.
type model struct {
	actions Actions
	opts    Options

	list        list.Model
	previewName string
	preview     *snapshot.Snapshot
	previewErr  error

	// pendingDelete is the snapshot awaiting a y/n confirmation.
	pendingDelete string
	statusText    string
	statusErr     bool
	statusSeq     int

	width  int
	height int
}

func newModel(actions Actions, opts Options) model {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Snapshots"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return model{actions: actions, opts: opts, list: l}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.loadSnapshots
}

func (m model) loadSnapshots() tea.Msg {
	infos, err := m.actions.List()
	return snapshotsMsg{infos: infos, err: err}
}

func (m model) loadPreview(name string) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.actions.Load(name)
		return previewMsg{name: name, snap: snap, err: err}
	}
}

func (m model) selectedName() string {
	item, ok := m.list.SelectedItem().(snapshotItem)
	if !ok {
		return ""
	}
	return item.info.Name
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.sidebarWidth(), m.contentHeight())
		return m, nil

	case snapshotsMsg:
		if msg.err != nil {
			return m.setStatus(msg.err.Error(), true)
		}
		items := make([]list.Item, 0, len(msg.infos))
		for _, info := range msg.infos {
			items = append(items, snapshotItem{info: info, isDefault: info.Name == m.opts.DefaultName})
		}
		cmd := m.list.SetItems(items)
		if m.list.Index() >= len(items) && len(items) > 0 {
			m.list.Select(len(items) - 1)
		}
		return m, tea.Batch(cmd, m.refreshPreview())

	case previewMsg:
		if msg.name != m.selectedName() {
			return m, nil
		}
		m.previewName, m.preview, m.previewErr = msg.name, msg.snap, msg.err
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			next, _ := m.setStatus(msg.err.Error(), true)
			return next, m.loadSnapshots
		}
		next, tick := m.setStatus(msg.text, false)
		return next, tea.Batch(tick, m.loadSnapshots)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.statusText = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.pendingDelete != "" {
			name := m.pendingDelete
			m.pendingDelete = ""
			if msg.String() == "y" {
				return m, m.run(func() (string, error) {
					if err := m.actions.Delete(name); err != nil {
						return "", err
					}
					return "deleted " + name, nil
				})
			}
			return m.setStatus("delete cancelled", false)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			if name := m.selectedName(); name != "" {
				return m, m.run(func() (string, error) { return m.actions.Restore(name) })
			}
			return m, nil
		case "s":
			if name := m.selectedName(); name != "" {
				return m, m.run(func() (string, error) { return m.actions.Save(name) })
			}
			return m, nil
		case "n":
			name := m.opts.DefaultName
			return m, m.run(func() (string, error) { return m.actions.Save(name) })
		case "d":
			if name := m.selectedName(); name != "" {
				m.pendingDelete = name
				m.statusText = fmt.Sprintf("delete %s? (y/n)", name)
				m.statusErr = true
			}
			return m, nil
		case "r":
			return m, m.loadSnapshots
		}
	}

	before := m.selectedName()
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if m.selectedName() != before {
		return m, tea.Batch(cmd, m.refreshPreview())
	}
	return m, cmd
}

func (m model) run(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		text, err := fn()
		return actionDoneMsg{text: text, err: err}
	}
}

func (m model) refreshPreview() tea.Cmd {
	name := m.selectedName()
	if name == "" {
		return nil
	}
	return m.loadPreview(name)
}

func (m model) setStatus(text string, isErr bool) (model, tea.Cmd) {
	m.statusSeq++
	m.statusText = text
	m.statusErr = isErr
	seq := m.statusSeq
	return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// contentHeight returns the height available between the status and help bars.
func (m model) contentHeight() int {
	return max(m.height-2, 1)
}

func (m model) sidebarWidth() int {
	// ~35% of the width, between 20 and 40 columns.
	return min(max(m.width*35/100, 20), 40)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.opts.Mode, m.opts.DefaultName, len(m.list.Items()), m.width)
	helpBar := renderHelpBar(m.statusText, m.statusErr, m.width)

	height := m.contentHeight()
	sidebar := lipgloss.NewStyle().
		Width(m.sidebarWidth()).
		Height(height).
		Render(m.list.View())

	previewWidth := max(m.width-m.sidebarWidth()-3, 10)
	preview := m.renderPreview(previewWidth, height)

	sep := separatorStyle.Render(repeatLines("│", height))
	columns := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " "+sep, preview)

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, columns, helpBar)
}

func (m model) renderPreview(width, height int) string {
	if len(m.list.Items()) == 0 {
		return placeholderStyle.Width(width).Height(height).Render("no snapshots yet, press n to save one")
	}
	if m.previewErr != nil {
		return errorStyle.Width(width).Render(" " + m.previewErr.Error())
	}
	if m.preview == nil || m.previewName != m.selectedName() {
		return ""
	}

	title := titleStyle.Render(fmt.Sprintf(" %s  [%d windows]", m.previewName, len(m.preview.Entries)))
	summary := summaryStyle.Render(" " + summarizeSnapshot(m.preview))

	legendLines := min(len(m.preview.Entries), max(height/3, 3))
	canvasHeight := max(height-4-legendLines, 5)
	canvas := renderASCIIPreview(m.preview.Entries, max(width-2, 5), canvasHeight)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summary,
		canvasStyle.Render(joinLines(canvas)),
		renderLegend(m.preview.Entries, legendLines, width),
	)
}
