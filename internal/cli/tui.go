package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/idilsaglam/shoplist/internal/config"
	"github.com/idilsaglam/shoplist/internal/display"
	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/shoplist"
	"github.com/idilsaglam/shoplist/internal/ui"
	"github.com/idilsaglam/shoplist/internal/watch"
)

// listItem adapts a display row to bubbles/list.Item
type listItem struct {
	row display.Row
}

func (i listItem) Title() string       { return i.row.Item.Description }
func (i listItem) Description() string { return i.row.Detail }
func (i listItem) FilterValue() string { return i.row.Item.Description }

// Custom delegate to control how rows render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	cb := it.row.Checkbox
	box := ui.MutedStyle.Render(ui.Box(cb))
	text := it.row.Item.Description
	switch {
	case cb.Checked:
		box = ui.SuccessStyle.Render(ui.Box(cb))
	case it.row.Item.State == model.Need:
		box = ui.PendingStyle.Render(ui.Box(cb))
	}
	if it.row.Item.State == model.InShoppingCart {
		text = ui.DoneStyle.Render(text)
	}
	line := fmt.Sprintf("%s %s", box, text)
	if it.row.Detail != "" {
		line += "  " + ui.AccentStyle.Render(it.row.Detail)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.SelectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

type inputKind int

const (
	inputNone inputKind = iota
	inputForm
	inputSearch
	inputConfirmDelete
)

const (
	stepDescription = iota
	stepCategory
	stepStores
	stepAutoDelete
)

var formPrompts = [...]string{
	stepDescription: "Description",
	stepCategory:    "Category",
	stepStores:      "Stores (Acme=4, Corner=B)",
	stepAutoDelete:  "Auto-delete when cleared (y/n)",
}

// form collects the fields of an item one prompt at a time.
type form struct {
	id        int // 0 when adding
	step      int
	fields    [len(formPrompts)]string
	purchased time.Time
}

type (
	importDoneMsg   struct{ res shoplist.ImportResult }
	availabilityMsg struct{ present bool }
)

var keys = struct {
	add, edit, del, toggle, mode, store, search, clear, imp, exp, refresh key.Binding
}{
	add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	del:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	mode:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
	store:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "store")),
	search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear cart")),
	imp:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
	exp:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
	refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}

type modelTUI struct {
	ctx      context.Context
	mgr      *shoplist.Manager
	watcher  *watch.File // nil when the import file can't be watched
	transfer config.TransferConfig
	log      *zap.Logger

	list   list.Model
	view   display.View
	search string

	input  inputKind
	form   form
	doomed model.Item // waiting for delete confirmation
	ti     textinput.Model
	status string
	errMsg string

	width, height int
}

func newTUI(ctx context.Context, mgr *shoplist.Manager, w *watch.File, transfer config.TransferConfig, log *zap.Logger) modelTUI {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = ui.TitleStyle
	l.Styles.HelpStyle = ui.HelpStyle
	l.Styles.PaginationStyle = ui.HelpStyle
	l.SetStatusBarItemName("item", "items")

	m := modelTUI{
		ctx:      ctx,
		mgr:      mgr,
		watcher:  w,
		transfer: transfer,
		log:      log,
		list:     l,
		width:    80,
		height:   24,
	}
	m.list.AdditionalShortHelpKeys = m.helpKeys
	m.list.AdditionalFullHelpKeys = m.helpKeys

	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.CharLimit = 200
	m.refresh()
	return m
}

// helpKeys lists only the commands available right now.
func (m modelTUI) helpKeys() []key.Binding {
	out := []key.Binding{keys.add, keys.edit, keys.del, keys.toggle, keys.mode, keys.store, keys.search}
	if m.mgr.Mode() == model.Shopping {
		out = append(out, keys.clear)
	} else {
		out = append(out, keys.exp)
	}
	if m.importAvailable() {
		out = append(out, keys.imp)
	}
	return append(out, keys.refresh)
}

func (m modelTUI) importAvailable() bool {
	return m.watcher != nil && m.watcher.Available() && !m.mgr.Importing()
}

func (m *modelTUI) refresh() {
	m.view = m.mgr.View(m.ctx, m.search)
	items := make([]list.Item, len(m.view.Rows))
	for i, r := range m.view.Rows {
		items[i] = listItem{row: r}
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	title := ui.Header(m.view)
	if m.search != "" {
		title += "  " + ui.MutedStyle.Render("/"+m.search)
	}
	m.list.Title = title
}

func (m modelTUI) selected() (model.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	return li.row.Item, ok
}

func (m *modelTUI) report(err error) {
	m.status = ""
	m.errMsg = ""
	if err != nil {
		m.errMsg = err.Error()
		m.log.Debug("command failed", zap.Error(err))
	}
}

func waitAvailability(w *watch.File) tea.Cmd {
	return func() tea.Msg {
		present, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return availabilityMsg{present: present}
	}
}

func waitImport(done <-chan shoplist.ImportResult, f *os.File) tea.Cmd {
	return func() tea.Msg {
		res := <-done
		_ = f.Close()
		return importDoneMsg{res: res}
	}
}

func (m modelTUI) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return waitAvailability(m.watcher)
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case availabilityMsg:
		if msg.present {
			m.status = "import file available"
		}
		return m, waitAvailability(m.watcher)
	case importDoneMsg:
		m.report(msg.res.Err)
		if msg.res.Err == nil {
			m.status = fmt.Sprintf("imported %d item(s), skipped %d in %s", msg.res.Imported, msg.res.Skipped, msg.res.Elapsed.Round(time.Millisecond))
		}
		m.search = ""
		m.refresh()
		return m, nil
	}

	switch m.input {
	case inputForm:
		return m.updateForm(msg)
	case inputSearch:
		return m.updateSearch(msg)
	case inputConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	switch km.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	}

	ctx := m.ctx
	switch {
	case key.Matches(km, keys.toggle):
		if it, ok := m.selected(); ok {
			_, err := m.mgr.Toggle(ctx, it.ID)
			m.report(err)
			m.refresh()
		}
		return m, nil
	case key.Matches(km, keys.add):
		m.startForm(form{})
		return m, nil
	case key.Matches(km, keys.edit):
		if it, ok := m.selected(); ok {
			m.startForm(form{
				id:        it.ID,
				fields:    [len(formPrompts)]string{it.Description, it.Category, formatAisles(it.StoreAisles), yesNo(it.AutoDelete)},
				purchased: it.LastPurchased,
			})
		}
		return m, nil
	case key.Matches(km, keys.del):
		if it, ok := m.selected(); ok {
			m.report(nil)
			m.input = inputConfirmDelete
			m.doomed = it
		}
		return m, nil
	case key.Matches(km, keys.mode):
		mode, err := m.mgr.ToggleDisplayMode(ctx)
		m.report(err)
		if err == nil {
			m.status = mode.Label() + " mode"
		}
		m.refresh()
		return m, nil
	case key.Matches(km, keys.store):
		m.report(m.cycleStore())
		m.refresh()
		return m, nil
	case key.Matches(km, keys.search):
		m.input = inputSearch
		m.ti.SetValue(m.search)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Search descriptions..."
		m.ti.Focus()
		return m, nil
	case key.Matches(km, keys.clear):
		if m.mgr.Mode() != model.Shopping {
			return m, nil
		}
		res, err := m.mgr.ClearChecked(ctx, m.search)
		m.report(err)
		if err == nil {
			m.status = fmt.Sprintf("cleared %d item(s)", res.Reset+res.Deleted)
		}
		m.refresh()
		return m, nil
	case key.Matches(km, keys.exp):
		if m.mgr.Mode() != model.Planning {
			return m, nil
		}
		n, err := m.export()
		m.report(err)
		if err == nil {
			m.status = fmt.Sprintf("exported %d item(s) to %s", n, m.transfer.ExportPath)
		}
		return m, nil
	case key.Matches(km, keys.imp):
		if !m.importAvailable() {
			return m, nil
		}
		return m, m.startImport()
	case key.Matches(km, keys.refresh):
		m.report(nil)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *modelTUI) cycleStore() error {
	choices := m.view.Choices
	i := slices.Index(choices, m.view.Filter)
	next := choices[(i+1)%len(choices)]
	return m.mgr.SetStoreFilter(m.ctx, next)
}

func (m modelTUI) export() (n int, err error) {
	f, err := os.Create(m.transfer.ExportPath)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return m.mgr.Export(m.ctx, f)
}

func (m *modelTUI) startImport() tea.Cmd {
	path := m.watcher.Path()
	f, err := os.Open(path)
	if err != nil {
		m.report(err)
		return nil
	}
	done, err := m.mgr.StartImport(m.ctx, f)
	if err != nil {
		_ = f.Close()
		m.report(err)
		return nil
	}
	m.report(nil)
	m.status = "importing " + path + "..."
	return waitImport(done, f)
}

func (m *modelTUI) startForm(f form) {
	m.input = inputForm
	m.form = f
	m.errMsg = ""
	m.loadStep()
}

func (m *modelTUI) loadStep() {
	m.ti.SetValue(m.form.fields[m.form.step])
	m.ti.CursorEnd()
	m.ti.Placeholder = formPrompts[m.form.step] + "..."
	m.ti.Focus()
}

func (m *modelTUI) closeInput() {
	m.input = inputNone
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m modelTUI) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.closeInput()
			return m, nil
		case "enter":
			m.form.fields[m.form.step] = m.ti.Value()
			if err := checkStep(m.form.step, m.form.fields[m.form.step]); err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.errMsg = ""
			if m.form.step < len(formPrompts)-1 {
				m.form.step++
				m.loadStep()
				return m, nil
			}
			if err := m.submitForm(); err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.closeInput()
			m.refresh()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

// checkStep validates one form answer before moving on.
func checkStep(step int, value string) error {
	var err error
	switch step {
	case stepDescription:
		if model.CleanField(value) == "" {
			err = errors.New("Description cannot be empty")
		}
	case stepStores:
		_, err = parseAisles(value)
	case stepAutoDelete:
		_, err = parseYesNo(value)
	}
	return err
}

func (m *modelTUI) submitForm() error {
	aisles, err := parseAisles(m.form.fields[stepStores])
	if err != nil {
		return err
	}
	autoDelete, err := parseYesNo(m.form.fields[stepAutoDelete])
	if err != nil {
		return err
	}
	d := shoplist.Draft{
		Description: m.form.fields[stepDescription],
		Category:    m.form.fields[stepCategory],
		AutoDelete:  autoDelete,
		StoreAisles: aisles,
	}
	if m.form.id == 0 {
		it, err := m.mgr.Add(m.ctx, d)
		if err != nil {
			return err
		}
		m.report(nil)
		m.status = fmt.Sprintf("added %q", it.Description)
		return nil
	}
	if _, err := m.mgr.Edit(m.ctx, m.form.id, d); err != nil {
		return err
	}
	m.report(nil)
	m.status = "saved"
	return nil
}

func (m modelTUI) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.input = inputNone
	if km.String() == "y" {
		err := m.mgr.Delete(m.ctx, m.doomed.ID)
		m.report(err)
		if err == nil {
			m.status = fmt.Sprintf("deleted %q", m.doomed.Description)
		}
		m.refresh()
	}
	m.doomed = model.Item{}
	return m, nil
}

func (m modelTUI) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.search = ""
			m.closeInput()
			m.refresh()
			return m, nil
		case "enter":
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	m.search = display.NormalizeSearch(m.ti.Value())
	m.refresh()
	return m, cmd
}

func (m modelTUI) View() string {
	listHeight := m.height - 4
	if m.input != inputNone {
		listHeight -= 3
	}
	m.list.SetSize(m.width-4, max(listHeight, 3))

	content := m.list.View()
	switch m.input {
	case inputForm:
		title := "Add item"
		if m.form.id != 0 {
			title = "Edit item"
		}
		title += ": " + formPrompts[m.form.step]
		if m.form.id != 0 {
			title += "  " + ui.MutedStyle.Render("last purchased "+ui.Purchased(m.form.purchased))
		}
		if m.errMsg != "" {
			title += "  " + ui.ErrorStyle.Render(m.errMsg)
		}
		content += "\n" + ui.Frame(title+"\n"+m.ti.View())
	case inputSearch:
		content += "\n" + ui.Frame("Search\n"+m.ti.View())
	case inputConfirmDelete:
		content += "\n" + ui.Frame(ui.ErrorStyle.Render(fmt.Sprintf("Delete %q now?", m.doomed.Description))+" (y/n)")
	default:
		switch {
		case m.errMsg != "":
			content += "\n" + ui.ErrorStyle.Render(m.errMsg)
		case m.status != "":
			content += "\n" + ui.MutedStyle.Render(m.status)
		case len(m.view.Rows) == 0:
			content += "\n" + ui.MutedStyle.Render(m.view.Empty)
		}
	}
	return ui.Frame(content)
}

// parseAisles reads "Store=aisle, Store=aisle". Blank input means no stores.
func parseAisles(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		store, aisle, ok := strings.Cut(pair, "=")
		store, aisle = strings.TrimSpace(store), strings.TrimSpace(aisle)
		if !ok || store == "" || aisle == "" {
			return nil, errors.New("stores must look like Store=aisle")
		}
		out[store] = aisle
	}
	return out, nil
}

// parseYesNo reads the auto-delete answer; blank means no.
func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n", "no":
		return false, nil
	case "y", "yes":
		return true, nil
	}
	return false, errors.New("answer y or n")
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func formatAisles(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for _, store := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, store+"="+m[store])
	}
	return strings.Join(parts, ", ")
}

// runUI starts the Bubble Tea list and blocks until it exits.
func (a *app) runUI(ctx context.Context) error {
	w, err := watch.New(a.cfg.Transfer.ImportPath, a.log.Named("watch"))
	if err != nil {
		a.log.Warn("import file not watched", zap.Error(err))
	} else {
		defer w.Close()
	}
	m := newTUI(ctx, a.mgr, w, a.cfg.Transfer, a.log.Named("tui"))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
