package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"lembah/internal/adapters/email"
	web "lembah/internal/adapters/http"
	"lembah/internal/adapters/http/perf"
	"lembah/internal/adapters/storage"
	accountStore "lembah/internal/adapters/storage/account"
	memberStore "lembah/internal/adapters/storage/member"
	paymentStore "lembah/internal/adapters/storage/payment"
	trainingLogStore "lembah/internal/adapters/storage/traininglog"
	"lembah/internal/application/orchestrators"
)

const (
	managerPassword = "TestPass123!"
	trainerPassword = "TrainerPass123!"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL   string
	DB        *sql.DB
	Server    *http.Server
	PW        *playwright.Playwright
	Browser   playwright.Browser
	Stores    web.Stores
	Sender    *email.NoopSender
	ManagerID int64
	TrainerID int64
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	acctStore := accountStore.NewSQLiteStore(db)
	stores := web.Stores{
		AccountStore:     acctStore,
		MemberStore:      memberStore.NewSQLiteStore(db),
		PaymentStore:     paymentStore.NewSQLiteStore(db),
		TrainingLogStore: trainingLogStore.NewSQLiteStore(db),
	}

	// Seed the primary manager and one trainer
	ctx := context.Background()
	boot, err := orchestrators.ExecuteBootstrapManager(ctx,
		orchestrators.BootstrapManagerInput{Password: managerPassword},
		orchestrators.BootstrapManagerDeps{AccountStore: acctStore})
	if err != nil {
		t.Fatalf("failed to bootstrap manager: %v", err)
	}
	trainerID, err := orchestrators.ExecuteCreateStaff(ctx, orchestrators.CreateStaffInput{
		Actor:    orchestrators.Actor{ID: boot.AccountID, Username: "manager", Role: "manager"},
		Username: "coach",
		Password: trainerPassword,
		Role:     "pt",
	}, orchestrators.CreateStaffDeps{AccountStore: acctStore})
	if err != nil {
		t.Fatalf("failed to create trainer: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	sender := email.NewNoopSender()
	app, err := web.NewServer(stores, web.Options{
		CSRFKey:  []byte("browser-test-csrf-key-32-bytes!!"),
		FlashKey: []byte("browser-test-flash-key-32-bytes!"),
		TrustedOrigins: []string{
			fmt.Sprintf("127.0.0.1:%d", port),
			fmt.Sprintf("localhost:%d", port),
		},
		Receipts: orchestrators.ReceiptDeps{Sender: sender, From: "kasir@lembah.test"},
		Ping:     db.PingContext,
	}, perf.NewCollector(100))
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: app.Handler(),
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		app.Close()
		db.Close()
	})

	return &testApp{
		BaseURL:   baseURL,
		DB:        db,
		Server:    srv,
		PW:        pw,
		Browser:   browser,
		Stores:    stores,
		Sender:    sender,
		ManagerID: boot.AccountID,
		TrainerID: trainerID,
	}
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in through the form and waits for the role's landing page.
func (a *testApp) login(t *testing.T, page playwright.Page, username, password, landing string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=username]").Fill(username); err != nil {
		t.Fatalf("failed to fill username: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(password); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("main button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+landing, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to %s: %v", landing, err)
	}
}

// loginManager signs in as the primary manager.
func (a *testApp) loginManager(t *testing.T, page playwright.Page) {
	t.Helper()
	a.login(t, page, "manager", managerPassword, "/admin")
}
