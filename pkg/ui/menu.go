package ui

import (
	"github.com/optiscan/optiscan/pkg/settings"
)

// MenuLine is one rendered row of the settings overlay.
type MenuLine struct {
	Text     string
	Selected bool
	Editing  bool
}

type level struct {
	items  []settings.Setting
	cursor int
}

// Menu walks a settings tree with the encoder. Each level starts with a
// synthetic back entry that pops the level, at the root it closes the menu.
type Menu struct {
	root     []settings.Setting
	back     *settings.Action
	stack    []*level
	editing  bool
	onChange func()
}

// NewMenu builds a menu over the given tree. onChange fires on every value
// change, so the caller can persist settings as the encoder turns.
func NewMenu(tree []settings.Setting, onChange func()) *Menu {
	return &Menu{
		root:     tree,
		back:     &settings.Action{Key: "back", Label: "Back"},
		onChange: onChange,
	}
}

// Open resets navigation to the top of the root level.
func (m *Menu) Open() {
	m.stack = []*level{m.newLevel(m.root)}
	m.editing = false
}

// Close discards any navigation state.
func (m *Menu) Close() {
	m.stack = nil
	m.editing = false
}

// IsOpen reports whether the menu overlay should be shown.
func (m *Menu) IsOpen() bool { return len(m.stack) > 0 }

func (m *Menu) newLevel(items []settings.Setting) *level {
	withBack := make([]settings.Setting, 0, len(items)+1)
	withBack = append(withBack, m.back)
	withBack = append(withBack, items...)
	return &level{items: withBack}
}

func (m *Menu) top() *level {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

// Step moves the cursor, or adjusts the selected value while editing.
func (m *Menu) Step(delta int) {
	lvl := m.top()
	if lvl == nil {
		return
	}
	if m.editing {
		if s, ok := lvl.items[lvl.cursor].(settings.Steppable); ok {
			s.Step(delta)
			s.Apply()
			if m.onChange != nil {
				m.onChange()
			}
		}
		return
	}
	lvl.cursor += delta
	if lvl.cursor < 0 {
		lvl.cursor = 0
	}
	if lvl.cursor > len(lvl.items)-1 {
		lvl.cursor = len(lvl.items) - 1
	}
}

// Press activates the selected entry. It reports true when the press closed
// the menu (back pressed at the root level).
func (m *Menu) Press() bool {
	lvl := m.top()
	if lvl == nil {
		return true
	}
	if m.editing {
		m.editing = false
		if m.onChange != nil {
			m.onChange()
		}
		return false
	}
	switch item := lvl.items[lvl.cursor].(type) {
	case *settings.Action:
		if item == m.back {
			m.stack = m.stack[:len(m.stack)-1]
			if len(m.stack) == 0 {
				return true
			}
			return false
		}
		item.Apply()
	case *settings.Group:
		m.stack = append(m.stack, m.newLevel(item.Children))
	case settings.Steppable:
		m.editing = true
	}
	return false
}

// Back leaves the current context: an active edit is committed, otherwise
// one level is popped. It reports true when this closed the menu.
func (m *Menu) Back() bool {
	lvl := m.top()
	if lvl == nil {
		return true
	}
	if m.editing {
		m.editing = false
		return false
	}
	m.stack = m.stack[:len(m.stack)-1]
	return len(m.stack) == 0
}

// Editing reports whether the encoder currently adjusts a value.
func (m *Menu) Editing() bool { return m.editing }

// Lines returns up to count visible rows around the cursor.
func (m *Menu) Lines(count int) []MenuLine {
	lvl := m.top()
	if lvl == nil {
		return nil
	}
	window := settings.VisibleWindow(lvl.items, lvl.cursor, count)
	lines := make([]MenuLine, 0, len(window))
	for _, w := range window {
		lines = append(lines, MenuLine{
			Text:     w.Setting.MenuText(),
			Selected: w.Index == lvl.cursor,
			Editing:  w.Index == lvl.cursor && m.editing,
		})
	}
	return lines
}

// Scroll reports cursor position and total rows of the current level, for
// the overlay scrollbar.
func (m *Menu) Scroll() (cursor, total int) {
	lvl := m.top()
	if lvl == nil {
		return 0, 0
	}
	return lvl.cursor, len(lvl.items)
}
