package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gotsl/pkg/rig"
	"github.com/itohio/gotsl/pkg/store"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createStorageTab(state),
		createSamplingTab(state),
		createCalibrationTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(500, 400))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(500, 400))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := rig.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
		currentDisplay = currentPort
	}

	portSelect := widget.NewSelect(portOptions, func(selected string) {
		// Selection handler - will be called on submit
	})
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
		},
		OnSubmit: func() {
			if portSelect.Selected == "" {
				return
			}
			selectedPort := portMap[portSelect.Selected]
			if selectedPort == "" {
				selectedPort = portSelect.Selected // Fallback to selected text
			}

			state.cfg.Serial.Port = selectedPort
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
				return
			}

			// A port change takes effect on the next session start; a
			// running session keeps its open device.
		},
	}

	return container.NewTabItem("Serial", form)
}

// createStorageTab creates the Storage configuration tab.
func createStorageTab(state *appState) *container.TabItem {
	dataDirEntry := widget.NewEntry()
	dataDirEntry.SetText(state.cfg.Storage.DataDir)

	stateFileEntry := widget.NewEntry()
	stateFileEntry.SetText(state.cfg.Storage.StateFile)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Data Directory", Widget: dataDirEntry},
			{Text: "State File", Widget: stateFileEntry},
		},
		OnSubmit: func() {
			if dataDirEntry.Text != "" {
				state.cfg.Storage.DataDir = dataDirEntry.Text
			}
			if stateFileEntry.Text != "" {
				state.cfg.Storage.StateFile = stateFileEntry.Text
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Storage", form)
}

// createSamplingTab creates the Sampling configuration tab.
func createSamplingTab(state *appState) *container.TabItem {
	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(state.cfg.Sampling.Interval.String())

	smoothingEntry := widget.NewEntry()
	smoothingEntry.SetText(strconv.Itoa(state.cfg.Sampling.Smoothing))

	tareEntry := widget.NewEntry()
	tareEntry.SetText(state.cfg.Tare.Timeout.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Log Interval", Widget: intervalEntry},
			{Text: "Smoothing Window", Widget: smoothingEntry},
			{Text: "Tare Timeout", Widget: tareEntry},
		},
		OnSubmit: func() {
			if interval, err := time.ParseDuration(intervalEntry.Text); err == nil && interval >= 0 {
				state.cfg.Sampling.Interval = interval
			}
			if smoothing, err := strconv.Atoi(smoothingEntry.Text); err == nil && smoothing >= 0 {
				state.cfg.Sampling.Smoothing = smoothing
			}
			if timeout, err := time.ParseDuration(tareEntry.Text); err == nil && timeout > 0 {
				state.cfg.Tare.Timeout = timeout
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Sampling", form)
}

// createCalibrationTab creates the Calibration configuration tab. The
// calibration factor lives in the persistent state store next to the
// session counter, not in the config file.
func createCalibrationTab(state *appState) *container.TabItem {
	factorEntry := widget.NewEntry()

	st, err := store.Open(state.cfg.Storage.StateFile)
	if err == nil {
		factorEntry.SetText(fmt.Sprintf("%.6f", st.CalibrationFactor()))
	} else {
		factorEntry.SetText("1.000000")
	}

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Calibration Factor", Widget: factorEntry},
		},
		OnSubmit: func() {
			factor, err := strconv.ParseFloat(factorEntry.Text, 64)
			if err != nil || factor == 0 {
				dialog.ShowError(fmt.Errorf("invalid calibration factor %q", factorEntry.Text), state.window)
				return
			}
			st, err := store.Open(state.cfg.Storage.StateFile)
			if err != nil {
				dialog.ShowError(fmt.Errorf("failed to open state store: %w", err), state.window)
				return
			}
			if err := st.SetCalibrationFactor(factor); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save calibration factor: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Calibration", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	peakEntry := widget.NewEntry()
	peakEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.PeakForce))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.NoiseLevel))

	burnEntry := widget.NewEntry()
	burnEntry.SetText(state.cfg.Mock.BurnDuration.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Peak Force", Widget: peakEntry},
			{Text: "Noise Level", Widget: noiseEntry},
			{Text: "Burn Duration", Widget: burnEntry},
		},
		OnSubmit: func() {
			if peak, err := strconv.ParseFloat(peakEntry.Text, 64); err == nil && peak > 0 {
				state.cfg.Mock.PeakForce = peak
			}
			if noise, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil && noise >= 0 {
				state.cfg.Mock.NoiseLevel = noise
			}
			if burn, err := time.ParseDuration(burnEntry.Text); err == nil && burn > 0 {
				state.cfg.Mock.BurnDuration = burn
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
