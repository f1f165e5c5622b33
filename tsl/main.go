package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gotsl/pkg/capture"
	"github.com/itohio/gotsl/pkg/config"
	"github.com/itohio/gotsl/pkg/panel"
	"github.com/itohio/gotsl/pkg/rig"
	"github.com/itohio/gotsl/pkg/store"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use mocked rig instead of serial port")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.gotsl")

	// Create main window
	window := application.NewWindow("Thrust Stand Logger")
	window.Resize(fyne.NewSize(640, 320))
	window.CenterOnScreen()

	// Create panel widget: the LCD grid plus status lamp
	panelWidget := panel.New(cfg)

	state := &appState{
		cfg:     cfg,
		window:  window,
		panel:   panelWidget,
		useMock: *mockFlag,
	}

	toolbar := createToolbar(state)

	window.SetContent(container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		panelWidget,
	))

	window.ShowAndRun()
}

// sessionChain tracks a running session for graceful shutdown.
type sessionChain struct {
	device rig.Device
	cancel context.CancelFunc
	done   chan struct{} // Closed when the capture goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg      *config.Config
	window   fyne.Window
	panel    *panel.PanelWidget
	startBtn *widget.Button
	useMock  bool
	chain    *sessionChain // Current session (nil if idle)
}

// createToolbar creates the application toolbar with Start/Stop and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	startBtn := widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		handleStart(state)
	})
	state.startBtn = startBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(startBtn, settingsBtn), // left
		nil, // right
		nil, // center (spacer)
	)
}

// closeSessionChain gracefully stops a running session.
func closeSessionChain(chain *sessionChain) {
	if chain == nil {
		return
	}

	chain.cancel()
	if chain.device != nil {
		chain.device.Close()
	}
	<-chain.done
}

// handleStart handles the start/stop button click. Each start is one
// session: the session counter advances and a fresh session file is opened.
func handleStart(state *appState) {
	if state.chain != nil {
		// Stop the running session
		closeSessionChain(state.chain)
		state.chain = nil
		state.startBtn.SetIcon(theme.MediaPlayIcon())
		fmt.Println("Session stopped")
		return
	}

	var device rig.Device
	if state.useMock {
		device = rig.NewMock(&state.cfg.Mock)
		fmt.Println("Using mocked rig")
	} else {
		device = rig.New(state.cfg.Serial.Port, rig.DefaultBaudRate, rig.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		return
	}

	st, err := store.Open(state.cfg.Storage.StateFile)
	if err != nil {
		device.Close()
		dialog.ShowError(fmt.Errorf("failed to open state store: %w", err), state.window)
		return
	}

	runner := capture.New(state.cfg, st, device, state.panel, state.panel, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	state.chain = &sessionChain{
		device: device,
		cancel: cancel,
		done:   done,
	}
	state.startBtn.SetIcon(theme.MediaStopIcon())

	go func() {
		defer close(done)

		if err := runner.Boot(ctx); err != nil {
			// Terminal boot failure: the panel already shows the failure
			// state; the loop must never start.
			log.Printf("Boot failed: %v", err)
			return
		}

		log.Printf("Recording session %s", runner.Filename())
		if err := runner.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Session ended: %v", err)
		}
	}()
}
