package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	html "github.com/gofiber/template/html/v2"
	"golang.org/x/crypto/bcrypt"

	"rebook/internal/http/handlers"
	"rebook/internal/repos"
	"rebook/internal/services"
)

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func postForm(app *fiber.App, path, body string, cookies ...*http.Cookie) (*http.Response, error) {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return app.Test(req)
}

func TestPasswordsSeededAreHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	var hashes []string
	if err := db.Select(&hashes, `SELECT password_hash FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) == 0 {
		t.Fatal("no users seeded")
	}
	for _, h := range hashes {
		if strings.Contains(h, "Passw0rd!") {
			t.Fatalf("hash contains plaintext password")
		}
		if !strings.HasPrefix(h, "$2") {
			t.Fatalf("unexpected hash format: %s", h)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("Passw0rd!")); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}
	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{Max: 2, Expiration: time.Minute}), authH.Login)

	// fetch csrf token
	respLogin, _ := app.Test(httptest.NewRequest("GET", "/login", nil))
	csrfTok := extractCookie(respLogin, "csrf_")
	if csrfTok == "" {
		t.Fatal("csrf token missing")
	}
	csrfCookie := &http.Cookie{Name: "csrf_", Value: csrfTok}

	// bad password -> 401
	respBad, err := postForm(app, "/login", "csrf="+csrfTok+"&email=asha@rebook.test&password=wrongpass!", csrfCookie)
	if err != nil {
		t.Fatal(err)
	}
	if respBad.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", respBad.StatusCode)
	}

	// good password -> redirect to home (buyer)
	respGood, err := postForm(app, "/login", "csrf="+csrfTok+"&email=asha@rebook.test&password=Passw0rd!", csrfCookie)
	if err != nil {
		t.Fatal(err)
	}
	if respGood.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on success, got %d", respGood.StatusCode)
	}

	// throttle after 2 attempts (a third should 429)
	respThird, err := postForm(app, "/login", "csrf="+csrfTok+"&email=asha@rebook.test&password=wrongpass!", csrfCookie)
	if err != nil {
		t.Fatal(err)
	}
	if respThird.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after throttle, got %d", respThird.StatusCode)
	}
}

func TestSignupCreatesSellerAndLogsIn(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}
	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	app.Get("/signup", authH.SignupForm)
	app.Post("/signup", authH.Signup)

	resp, _ := app.Test(httptest.NewRequest("GET", "/signup", nil))
	csrfTok := extractCookie(resp, "csrf_")
	csrfCookie := &http.Cookie{Name: "csrf_", Value: csrfTok}

	form := "csrf=" + csrfTok + "&name=Neha&email=neha@rebook.test&phone=%2B91+9800000009&role=seller&password=Str0ngPass1"
	respUp, err := postForm(app, "/signup", form, csrfCookie)
	if err != nil {
		t.Fatal(err)
	}
	if respUp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect after signup, got %d", respUp.StatusCode)
	}
	u, err := userRepo.ByEmail("neha@rebook.test")
	if err != nil {
		t.Fatalf("expected the account to exist: %v", err)
	}
	if u.Role != "seller" {
		t.Fatalf("expected seller role, got %s", u.Role)
	}

	// weak password is rejected and creates nothing
	respWeak, err := postForm(app, "/signup", "csrf="+csrfTok+"&name=Bad&email=bad@rebook.test&phone=%2B91+9800000010&role=buyer&password=short", csrfCookie)
	if err != nil {
		t.Fatal(err)
	}
	if respWeak.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for weak password, got %d", respWeak.StatusCode)
	}
	if _, err := userRepo.ByEmail("bad@rebook.test"); err == nil {
		t.Fatal("weak-password signup must not create an account")
	}
}
