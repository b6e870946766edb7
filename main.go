package main

import (
	"embed"
	"log/slog"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"github.com/calehart/veil/internal/app"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.Info("starting app", "version", version, "commit", commit, "date", date)
	appService := app.New(version)

	wailsApp := application.New(application.Options{
		Name:        "Veil",
		Description: "AI overlay assistant",
		Services: []application.Service{
			application.NewService(appService),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// Don't quit when all windows are closed (we have a system tray)
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	// The overlay window: borderless, always on top, translucent. The
	// frontend applies the configured opacity to its root element.
	mainWindow := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:          "Veil",
		Width:          440,
		Height:         620,
		Frameless:      true,
		AlwaysOnTop:    true,
		DisableResize:  false,
		URL:            "/",
		BackgroundType: application.BackgroundTypeTranslucent,
		Mac: application.MacWindow{
			Backdrop: application.MacBackdropTranslucent,
		},
		DevToolsEnabled: true,
	})

	// Intercept window close: hide instead of destroy so tray and the
	// visibility hotkey can reopen it.
	mainWindow.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		appService.HideWindow()
	})

	// Hide when focus moves to another app, unless settings disable it.
	mainWindow.RegisterHook(events.Common.WindowLostFocus, func(e *application.WindowEvent) {
		if appService.GetSettings().HideOnBlur {
			appService.HideWindow()
		}
	})

	appService.Init(wailsApp, mainWindow)

	systemTray := wailsApp.SystemTray.New()
	systemTray.SetLabel("Veil")

	trayMenu := wailsApp.NewMenu()
	trayMenu.Add("Show Overlay").OnClick(func(ctx *application.Context) {
		appService.ShowWindow()
	})
	trayMenu.Add("Toggle Listening").OnClick(func(ctx *application.Context) {
		go func() {
			if err := appService.ToggleListening(); err != nil {
				slog.Error("toggle listening from tray", "error", err)
			}
		}()
	})
	trayMenu.Add("Capture Screen").OnClick(func(ctx *application.Context) {
		go func() {
			if _, err := appService.CaptureScreenAndAnalyze(false, ""); err != nil {
				slog.Error("capture from tray", "error", err)
			}
		}()
	})
	trayMenu.AddSeparator()
	trayMenu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(ctx *application.Context) {
			appService.Shutdown()
			wailsApp.Quit()
		})

	systemTray.SetMenu(trayMenu)

	if err := wailsApp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}
