// Package navigation holds the view state machine and the adapter that
// turns resolved commands into calls on it.
package navigation

import (
	"strconv"
	"sync"

	"github.com/tenxer/handnav/internal/command"
	"github.com/tenxer/handnav/internal/logging"
)

// DefaultLanguage is the editor language when none is given.
const DefaultLanguage = "cpp"

// Point is an interactive element opened in the editor pane.
type Point struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

// Callbacks are the presentation mutations transitions are made of.
type Callbacks interface {
	SetViewMode(view command.View)
	SetCurrentIndex(index int)
	SetVideoPlaying(playing bool)
	SetSelectedPoint(p *Point)
	DotClick(index int)
	Home()
	Exit()
	PointInteraction(p Point)
}

// Machine is the in-process presentation state. It implements Callbacks
// so front ends without their own view layer can bind to it directly.
type Machine struct {
	mu       sync.RWMutex
	view     command.View
	index    int
	video    bool
	point    *Point
	onChange []func(command.NavigationContext)
}

// NewMachine starts on the first view at page 0.
func NewMachine() *Machine {
	return &Machine{view: command.ViewAmazing}
}

// OnChange registers fn to run after every transition. fn runs without
// the machine lock held.
func (m *Machine) OnChange(fn func(command.NavigationContext)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Context returns a snapshot of the current state.
func (m *Machine) Context() command.NavigationContext {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

func (m *Machine) snapshot() command.NavigationContext {
	ctx := command.NavigationContext{
		CurrentView:  m.view,
		CurrentIndex: m.index,
		VideoPlaying: m.video,
	}
	if m.point != nil {
		id := m.point.ID
		ctx.SelectedPoint = &id
	}
	return ctx
}

// Editor returns the point open in the editor, if any.
func (m *Machine) Editor() (Point, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.point == nil {
		return Point{}, false
	}
	return *m.point, true
}

// update applies fn under the lock and then notifies listeners.
func (m *Machine) update(fn func()) {
	m.mu.Lock()
	from := m.snapshot()
	fn()
	to := m.snapshot()
	listeners := append([]func(command.NavigationContext){}, m.onChange...)
	m.mu.Unlock()

	logging.Global().WithPrefix("navigation").Debug("transition",
		logging.From(describe(from)),
		logging.To(describe(to)))
	for _, l := range listeners {
		l(to)
	}
}

func describe(c command.NavigationContext) string {
	return string(c.CurrentView) + "/" + strconv.Itoa(c.CurrentIndex)
}

func (m *Machine) SetViewMode(view command.View) {
	m.update(func() { m.view = view })
}

// SetCurrentIndex clamps index to the page range.
func (m *Machine) SetCurrentIndex(index int) {
	m.update(func() { m.index = clampPage(index) })
}

func (m *Machine) SetVideoPlaying(playing bool) {
	m.update(func() { m.video = playing })
}

func (m *Machine) SetSelectedPoint(p *Point) {
	m.update(func() { m.point = p })
}

// DotClick selects page index. The first two pages belong to the amazing
// view, the rest to the landing view.
func (m *Machine) DotClick(index int) {
	m.update(func() {
		m.index = clampPage(index)
		if m.index < 2 {
			m.view = command.ViewAmazing
		} else {
			m.view = command.ViewLanding
		}
	})
}

func (m *Machine) Home() {
	m.update(func() {
		m.video = false
		m.view = command.ViewAmazing
		m.index = 0
	})
}

func (m *Machine) Exit() {
	m.update(func() {
		m.video = false
		m.view = command.ViewAmazing
		m.index = 1
	})
}

// PointInteraction opens p in the split view.
func (m *Machine) PointInteraction(p Point) {
	m.update(func() {
		m.point = &p
		m.view = command.ViewSplit
	})
}

func clampPage(i int) int {
	switch {
	case i < 0:
		return 0
	case i >= command.PageCount:
		return command.PageCount - 1
	default:
		return i
	}
}
