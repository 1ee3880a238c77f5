package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// Options configures the headless browser session.
type Options struct {
	Headless    bool
	ChromePath  string
	UserAgent   string
	SettleDelay time.Duration
	NavTimeout  time.Duration
}

// Session is a scoped headless-browser resource: one browser process and one
// tab, acquired at the start of a run and reused for every navigation until
// Close. Callers must Close unconditionally to avoid leaking OS processes.
type Session struct {
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	settle      time.Duration
	navTimeout  time.Duration
}

// NewSession launches the browser and opens the tab used for all navigations.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	if parent == nil {
		parent = context.Background()
	}

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if bin := findChromeBinary(opts.ChromePath); bin != "" {
		execOpts = append(execOpts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, execOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Start the browser eagerly so a missing binary fails the run up front.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Session{
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		settle:      opts.SettleDelay,
		navTimeout:  opts.NavTimeout,
	}, nil
}

// HTML navigates the shared tab to url, waits the settle delay for
// client-side rendering, and returns the rendered document HTML.
func (s *Session) HTML(ctx context.Context, url string) (string, error) {
	runCtx := s.tabCtx
	if ctx != nil {
		// Honor caller cancellation without tearing down the tab.
		var stop context.CancelFunc
		runCtx, stop = mergeCancel(s.tabCtx, ctx)
		defer stop()
	}

	runCtx, cancel := context.WithTimeout(runCtx, s.navTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(s.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	return html, nil
}

// Close releases the tab and the browser process.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.cancelTab()
	s.cancelAlloc()
}

// mergeCancel derives a context from base that is also cancelled when other
// is done. chromedp actions must run on a context derived from the tab
// context, so the caller's context cannot be passed through directly.
func mergeCancel(base, other context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(base)
	stopped := make(chan struct{})
	go func() {
		select {
		case <-other.Done():
			cancel()
		case <-stopped:
		}
	}()
	return merged, func() {
		close(stopped)
		cancel()
	}
}

// findChromeBinary locates a Chrome/Chromium binary, preferring an explicit
// configured path, then CHROME_BIN, then well-known names and locations.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
