package cdp_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/browsion/browsion/internal/browser"
	"github.com/browsion/browsion/internal/cdp"
	"github.com/go-rod/rod"
)

// requireTestChrome returns the real Chrome binary path from
// BROWSION_TEST_CHROME, skipping the test when it isn't set — the same
// opt-in convention webctl's own real-browser suite used.
func requireTestChrome(t *testing.T) string {
	t.Helper()
	path := os.Getenv("BROWSION_TEST_CHROME")
	if path == "" {
		t.Skip("BROWSION_TEST_CHROME not set, skipping real-browser timing test")
	}
	return path
}

// TestHTMLExtractionTiming_DataURL verifies HTML extraction off a data:
// URL completes in under two seconds, the regression webctl's own
// html_timing_test.go was written to catch (HTML extraction blocking on
// Page networkIdle rather than returning as soon as the DOM is ready).
func TestHTMLExtractionTiming_DataURL(t *testing.T) {
	chromePath := requireTestChrome(t)

	b, err := browser.StartWithBinary(chromePath, browser.LaunchOptions{Headless: true})
	if err != nil {
		t.Fatalf("start chrome: %v", err)
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	version, err := b.Version(ctx)
	if err != nil {
		t.Fatalf("get version: %v", err)
	}
	client, err := cdp.Dial(ctx, version.WebSocketURL)
	if err != nil {
		t.Fatalf("dial cdp: %v", err)
	}
	defer client.Close()

	target, err := b.PageTarget(ctx)
	if err != nil {
		t.Fatalf("page target: %v", err)
	}
	result, err := client.SendContext(ctx, "Target.attachToTarget", map[string]any{
		"targetId": target.ID, "flatten": true,
	})
	if err != nil {
		t.Fatalf("attach to target: %v", err)
	}
	var attached struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(result, &attached); err != nil {
		t.Fatalf("parse attach result: %v", err)
	}

	sess := cdp.NewSession(client, attached.SessionID, target.ID)
	sess.AttachEventHandlers()
	if err := sess.Enable(ctx); err != nil {
		t.Fatalf("enable session: %v", err)
	}

	dataURL := "data:text/html,<html><head><title>Test</title></head><body><h1>Hello</h1></body></html>"
	if err := sess.Navigate(ctx, dataURL); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	start := time.Now()
	html, err := sess.HTML(ctx, "")
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("HTML extraction took %v, expected well under 2s", elapsed)
	}
	if html == "" {
		t.Error("expected non-empty HTML")
	}
}

// TestHTMLExtractionTiming_RodBaseline establishes an independent oracle
// for the same extraction, using go-rod/rod directly (webctl keeps rod as
// a test-only dependency for exactly this comparison role, seen in its
// own test_rod_immediate.go scratch script).
func TestHTMLExtractionTiming_RodBaseline(t *testing.T) {
	requireTestChrome(t)

	browserInst := rod.New().MustConnect()
	defer browserInst.MustClose()

	start := time.Now()
	page := browserInst.MustPage("data:text/html,<html><body><h1>Hello</h1></body></html>")
	html := page.MustHTML()
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Errorf("rod baseline took %v, expected well under 2s", elapsed)
	}
	if html == "" {
		t.Error("expected non-empty HTML from rod baseline")
	}
}
