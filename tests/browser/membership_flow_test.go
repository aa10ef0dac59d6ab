package browser_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"
)

func selectValue(t *testing.T, page playwright.Page, selector, value string) {
	t.Helper()
	if _, err := page.Locator(selector).SelectOption(playwright.SelectOptionValues{
		Values: playwright.StringSlice(value),
	}); err != nil {
		t.Fatalf("failed to select %s in %s: %v", value, selector, err)
	}
}

func fill(t *testing.T, page playwright.Page, selector, value string) {
	t.Helper()
	if err := page.Locator(selector).Fill(value); err != nil {
		t.Fatalf("failed to fill %s: %v", selector, err)
	}
}

func submit(t *testing.T, page playwright.Page, wantURL string) {
	t.Helper()
	if err := page.Locator("main form button[type=submit]").Last().Click(); err != nil {
		t.Fatalf("failed to submit form: %v", err)
	}
	if err := page.WaitForURL(wantURL, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("submit did not land on %s: %v", wantURL, err)
	}
}

func flashText(t *testing.T, page playwright.Page) string {
	t.Helper()
	text, err := page.Locator(".flash").TextContent()
	if err != nil {
		t.Fatalf("no flash message: %v", err)
	}
	return text
}

// TestMembership_RegisterPayAndTrack walks a Personal Trainer member from
// registration through a renewal to the trainer recording progress.
func TestMembership_RegisterPayAndTrack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)
	app.loginManager(t, page)

	// Register
	if _, err := page.Goto(app.BaseURL + "/admin/registrasi"); err != nil {
		t.Fatalf("failed to open registration: %v", err)
	}
	selectValue(t, page, "#program", "Personal Trainer")
	fill(t, page, "#nama", "Sari Wulandari")
	fill(t, page, "#nominal", "500000")
	fill(t, page, "#no_wa", "081234567890")
	selectValue(t, page, "#gender", "Perempuan")
	fill(t, page, "#alamat", "Jl. Lembah Hijau 7")
	fill(t, page, "#tinggi_badan", "160")
	fill(t, page, "#berat_badan", "62")
	selectValue(t, page, "#goals", "Cutting")
	selectValue(t, page, "#personal_trainer", strconv.FormatInt(app.TrainerID, 10))
	submit(t, page, app.BaseURL+"/admin/members")

	if msg := flashText(t, page); !strings.Contains(msg, "/member/dashboard/") {
		t.Errorf("registration flash = %q, want portal link", msg)
	}
	if n := len(app.Sender.Sent()); n != 1 {
		t.Errorf("receipts sent = %d, want 1", n)
	}

	// Renew for three months
	if _, err := page.Goto(app.BaseURL + "/admin/payments"); err != nil {
		t.Fatalf("failed to open payments: %v", err)
	}
	selectValue(t, page, "#bulan_tambah", "3")
	fill(t, page, "#nominal", "1200000")
	submit(t, page, app.BaseURL+"/admin/payments")

	if msg := flashText(t, page); !strings.Contains(msg, "Sari Wulandari") {
		t.Errorf("payment flash = %q", msg)
	}

	// The trainer sees the client and records a session
	coach := app.newPage(t)
	app.login(t, coach, "coach", trainerPassword, "/pt/dashboard")
	client := coach.Locator("main table a", playwright.PageLocatorOptions{HasText: "Sari Wulandari"})
	if err := client.Click(); err != nil {
		t.Fatalf("client not listed on trainer dashboard: %v", err)
	}
	fill(t, coach, "#berat_badan", "61,5")
	fill(t, coach, "#jadwal", "**Senin**: leg day")
	if err := coach.Locator("main form button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to save progress: %v", err)
	}
	if err := coach.Locator(".flash").WaitFor(); err != nil {
		t.Fatalf("progress page did not reload: %v", err)
	}
	if msg := flashText(t, coach); msg != "Progress berhasil disimpan!" {
		t.Errorf("progress flash = %q", msg)
	}
	bold, err := coach.Locator("main strong").First().TextContent()
	if err != nil || bold != "Senin" {
		t.Errorf("schedule markdown not rendered: %q, %v", bold, err)
	}
}
