package panel

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

const (
	rowTextSize  = 22
	charWidth    = 14 // Approximate advance of one monospace cell at rowTextSize
	rowHeight    = 30
	panelPadding = 16
	lampDiameter = 18
)

var (
	lcdBackground = color.RGBA{R: 8, G: 40, B: 16, A: 255}
	lcdForeground = color.RGBA{R: 120, G: 255, B: 140, A: 255}
	lampOff       = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	lampGreen     = color.RGBA{R: 40, G: 220, B: 60, A: 255}
	lampRed       = color.RGBA{R: 230, G: 40, B: 40, A: 255}
)

// panelRenderer renders the panel widget.
type panelRenderer struct {
	panel *PanelWidget

	bg      *canvas.Rectangle
	rows    []*canvas.Text
	lampDot *canvas.Circle

	objects []fyne.CanvasObject
}

// MinSize returns the minimum size of the widget.
func (r *panelRenderer) MinSize() fyne.Size {
	cols := r.panel.grid.Cols()
	w := float32(cols*charWidth + 2*panelPadding + lampDiameter + panelPadding)
	h := float32(len(r.rows)*rowHeight + 2*panelPadding)
	return fyne.NewSize(w, h)
}

// Layout arranges the widget components.
func (r *panelRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	for i, text := range r.rows {
		text.Move(fyne.NewPos(panelPadding, float32(panelPadding+i*rowHeight)))
		text.Resize(fyne.NewSize(size.Width-2*panelPadding, rowHeight))
	}

	r.lampDot.Resize(fyne.NewSize(lampDiameter, lampDiameter))
	r.lampDot.Move(fyne.NewPos(size.Width-panelPadding-lampDiameter, panelPadding))
}

// Refresh updates the widget display from the grid and lamp state.
func (r *panelRenderer) Refresh() {
	for i, text := range r.rows {
		text.Text = r.panel.grid.Row(i)
		text.Refresh()
	}

	switch r.panel.lampState() {
	case lampHealthy:
		r.lampDot.FillColor = lampGreen
	case lampUnhealthy:
		r.lampDot.FillColor = lampRed
	default:
		r.lampDot.FillColor = lampOff
	}
	r.lampDot.Refresh()
}

// Objects returns all canvas objects for rendering.
func (r *panelRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *panelRenderer) Destroy() {
	// Cleanup handled by Fyne
}
