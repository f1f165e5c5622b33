// Package panel provides the operator panel widget: a fixed character grid
// that mimics the rig's 4-row LCD, plus the status lamp. The widget is both
// a display.Display and an indicator.Indicator, so the capture pipeline
// draws on it directly.
package panel

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gotsl/pkg/config"
	"github.com/itohio/gotsl/pkg/display"
	"github.com/itohio/gotsl/pkg/indicator"
)

// lamp states; lampUnset renders gray until the first Set.
const (
	lampUnset = iota
	lampHealthy
	lampUnhealthy
)

// PanelWidget is a custom Fyne widget showing the character grid and the
// status lamp.
type PanelWidget struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu   sync.RWMutex
	grid *display.Grid
	lamp int
}

// Ensure PanelWidget satisfies the surfaces the pipeline draws on.
var (
	_ display.Display     = (*PanelWidget)(nil)
	_ indicator.Indicator = (*PanelWidget)(nil)
)

// New creates a new PanelWidget sized from the display configuration.
func New(cfg *config.Config) *PanelWidget {
	p := &PanelWidget{
		grid: display.NewGrid(cfg.Display.Rows, cfg.Display.Cols),
		lamp: lampUnset,
	}
	p.ExtendBaseWidget(p)
	p.Refresh()
	return p
}

// WriteAt places text on the character grid. Safe to call from the
// measurement goroutines; the refresh is scheduled on the main Fyne thread.
func (p *PanelWidget) WriteAt(row, col int, text string) {
	p.mu.Lock()
	p.grid.WriteAt(row, col, text)
	p.mu.Unlock()

	fyne.Do(func() {
		p.Refresh()
	})
}

// Set sets the status lamp state.
func (p *PanelWidget) Set(healthy bool) {
	p.mu.Lock()
	if healthy {
		p.lamp = lampHealthy
	} else {
		p.lamp = lampUnhealthy
	}
	p.mu.Unlock()

	fyne.Do(func() {
		p.Refresh()
	})
}

// Rows returns a snapshot of the grid rows.
func (p *PanelWidget) Rows() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rows := make([]string, p.grid.Rows())
	for i := range rows {
		rows[i] = p.grid.Row(i)
	}
	return rows
}

// lampState returns the current lamp state.
func (p *PanelWidget) lampState() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lamp
}

// CreateRenderer creates the widget renderer.
func (p *PanelWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(lcdBackground)

	rows := make([]*canvas.Text, p.grid.Rows())
	for i := range rows {
		text := canvas.NewText(p.grid.Row(i), lcdForeground)
		text.TextStyle = fyne.TextStyle{Monospace: true}
		text.TextSize = rowTextSize
		rows[i] = text
	}

	lampDot := canvas.NewCircle(lampOff)

	objects := make([]fyne.CanvasObject, 0, len(rows)+2)
	objects = append(objects, bg)
	for _, t := range rows {
		objects = append(objects, t)
	}
	objects = append(objects, lampDot)

	return &panelRenderer{
		panel:   p,
		bg:      bg,
		rows:    rows,
		lampDot: lampDot,
		objects: objects,
	}
}
