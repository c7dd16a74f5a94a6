package command

// View is a top-level presentation mode.
type View string

const (
	ViewAmazing   View = "amazing"
	ViewLanding   View = "landing"
	ViewSplit     View = "split"
	ViewVideoOnly View = "video-only"
)

// PageCount is the number of pages the index cursor ranges over.
// 0 and 1 show the Ruka hand, 2 the Amazing hand preview, 3 the
// interactive hand.
const PageCount = 4

// NavigationContext is a read-only snapshot of the state machine.
type NavigationContext struct {
	CurrentView   View    `json:"currentView"`
	CurrentIndex  int     `json:"currentIndex"`
	VideoPlaying  bool    `json:"videoPlaying"`
	SelectedPoint *string `json:"selectedPoint"`
}

// SelectedPointOr returns the selected point or def when none is set.
func (c NavigationContext) SelectedPointOr(def string) string {
	if c.SelectedPoint == nil {
		return def
	}
	return *c.SelectedPoint
}
