package navigation

import (
	"fmt"
	"strconv"

	"github.com/tenxer/handnav/internal/command"
	hnerr "github.com/tenxer/handnav/internal/errors"
)

// Navigator is the binding the protocol server drives.
type Navigator interface {
	Navigate(target string, params map[string]any, open *command.OpenFile) error
	Interact(target string, params map[string]any) error
	Context() command.NavigationContext
}

// Adapter maps command targets onto Callbacks.
type Adapter struct {
	cb      Callbacks
	context func() command.NavigationContext
}

// NewAdapter binds cb. context supplies the live snapshot used by
// relative moves and the context resource.
func NewAdapter(cb Callbacks, context func() command.NavigationContext) *Adapter {
	return &Adapter{cb: cb, context: context}
}

// Bind is NewAdapter for the built-in Machine.
func Bind(m *Machine) *Adapter {
	return NewAdapter(m, m.Context)
}

// Context returns the live snapshot.
func (a *Adapter) Context() command.NavigationContext {
	return a.context()
}

// Execute applies cmd. Info commands are a no-op.
func (a *Adapter) Execute(cmd *command.Command) error {
	return Apply(a, cmd)
}

// Apply routes cmd to the matching Navigator method.
func Apply(n Navigator, cmd *command.Command) error {
	if cmd == nil {
		return nil
	}
	switch cmd.Action {
	case command.ActionNavigate:
		return n.Navigate(cmd.Target, cmd.Parameters, cmd.OpenFile)
	case command.ActionInteract:
		return n.Interact(cmd.Target, cmd.Parameters)
	case command.ActionInfo:
		return nil
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
}

// Navigate performs one navigation transition. An open file takes
// precedence over the target.
func (a *Adapter) Navigate(target string, params map[string]any, open *command.OpenFile) error {
	if open != nil {
		a.cb.PointInteraction(Point{
			ID:       open.Name,
			Label:    open.Name,
			Code:     orDefault(open.Content, "// Empty file"),
			Language: orDefault(open.Language, DefaultLanguage),
		})
		return nil
	}

	t, err := command.ParseTarget(target)
	if err != nil {
		return err
	}
	switch t {
	case command.TargetRukaHand:
		a.cb.SetViewMode(command.ViewAmazing)
		a.cb.SetCurrentIndex(2)
	case command.TargetAmazingHand:
		page, _ := command.IntParam(params, "page")
		a.cb.SetViewMode(command.ViewAmazing)
		a.cb.SetCurrentIndex(clampPage(page))
	case command.TargetInteractiveHand:
		a.cb.DotClick(3)
	case command.TargetNext:
		a.cb.DotClick((a.context().CurrentIndex + 1) % command.PageCount)
	case command.TargetPrevious:
		a.cb.DotClick((a.context().CurrentIndex - 1 + command.PageCount) % command.PageCount)
	case command.TargetHome:
		a.cb.Home()
	case command.TargetExit:
		a.cb.Exit()
	case command.TargetSplit:
		a.cb.PointInteraction(Point{
			ID:       "point-0",
			Label:    "Code Editor",
			Code:     "// Start coding here\n",
			Language: DefaultLanguage,
		})
	}
	return nil
}

// Interact clicks a point or writes a file into the editor.
func (a *Adapter) Interact(target string, params map[string]any) error {
	in, err := command.ParseInteraction(target, params)
	if err != nil {
		return err
	}
	switch in.Kind {
	case command.InteractPoint:
		a.cb.PointInteraction(Point{
			ID:       in.PointID(),
			Label:    "Point " + strconv.Itoa(in.Point),
			Code:     fmt.Sprintf("// Code for point %d\nSerial.println(\"Point %d activated\");\n", in.Point, in.Point),
			Language: DefaultLanguage,
		})
	case command.InteractSetFileContent:
		a.cb.PointInteraction(Point{
			ID:       in.FileName,
			Label:    in.FileName,
			Code:     in.Content,
			Language: DefaultLanguage,
		})
	default:
		return hnerr.UnknownTarget(target)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
