package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"salondesk/internal/config"
)

// chooseURL prefers the office server and falls back to the hosted copy
func chooseURL(ctx context.Context, cfg config.LauncherConfig) string {
	if reachable(ctx, cfg.LocalURL, cfg) {
		return cfg.LocalURL
	}
	log.Printf("[Launcher] %s unreachable, using %s", cfg.LocalURL, cfg.CloudURL)
	return cfg.CloudURL
}

func reachable(ctx context.Context, url string, cfg config.LauncherConfig) bool {
	if url == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

type browser struct {
	name  string
	bins  []string
	paths []string
	args  func(url string) []string
}

func appWindow(url string) []string {
	return []string{"--app=" + url, "--start-maximized"}
}

var browsers = []browser{
	{
		name: "chrome",
		bins: []string{"google-chrome", "google-chrome-stable", "chrome", "chromium"},
		paths: []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			filepath.Join(os.Getenv("LOCALAPPDATA"), `Google\Chrome\Application\chrome.exe`),
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		},
		args: appWindow,
	},
	{
		name: "edge",
		bins: []string{"msedge", "microsoft-edge"},
		paths: []string{
			`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
			`C:\Program Files\Microsoft\Edge\Application\msedge.exe`,
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
		},
		args: appWindow,
	},
	{
		name: "firefox",
		bins: []string{"firefox"},
		paths: []string{
			`C:\Program Files\Mozilla Firefox\firefox.exe`,
			`C:\Program Files (x86)\Mozilla Firefox\firefox.exe`,
			"/Applications/Firefox.app/Contents/MacOS/firefox",
		},
		args: func(url string) []string { return []string{"-new-window", url} },
	},
}

// findBrowser returns the first installed browser and its executable
func findBrowser(lookPath func(string) (string, error), exists func(string) bool) (browser, string, bool) {
	for _, b := range browsers {
		for _, bin := range b.bins {
			if p, err := lookPath(bin); err == nil {
				return b, p, true
			}
		}
		for _, p := range b.paths {
			if p != "" && exists(p) {
				return b, p, true
			}
		}
	}
	return browser{}, "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func open(url string) error {
	if b, path, ok := findBrowser(exec.LookPath, fileExists); ok {
		log.Printf("[Launcher] using %s", b.name)
		return exec.Command(path, b.args(url)...).Start()
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("no browser found to open %s: %w", url, err)
	}
	return nil
}
