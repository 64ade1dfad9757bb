package mangabuff

import (
	"context"
	"fmt"
	"mangabuff-tracker/internal/components/telemetry"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	testEmail     = "reader@example.com"
	testPassword  = "hunter2"
	testCsrf      = "csrf-token-value"
	testAccountId = 42
	testDelay     = 2 * time.Second
)

// fakeClock records sleeps instead of sleeping.
type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time {
	return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// fakeOrigin serves the handful of pages the client reads. Listing pages are keyed
// by "<rank>/<page>", a listing page that is not set has a container but no items.
type fakeOrigin struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []string

	loginPage   string
	loginStatus int
	landingPage string
	market      map[string]string
	wishlist    map[string]string
	cardPages   map[string]string
}

func newFakeOrigin(t *testing.T) *fakeOrigin {
	o := &fakeOrigin{
		loginPage:   fmt.Sprintf(`<html><head><meta name="csrf-token" content="%s"></head><body></body></html>`, testCsrf),
		loginStatus: http.StatusOK,
		landingPage: fmt.Sprintf(`<html><head><script>window.user_id = %d;</script></head><body></body></html>`, testAccountId),
		market:      map[string]string{},
		wishlist:    map[string]string{},
		cardPages:   map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login/", func(w http.ResponseWriter, r *http.Request) {
		o.write(w, o.loginPage)
	})
	mux.HandleFunc("POST /login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Csrf-Token") != testCsrf ||
			r.FormValue("email") != testEmail ||
			r.FormValue("password") != testPassword {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "mangabuff_session", Value: "abc", Path: "/"})
		w.WriteHeader(o.loginStatus)
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		o.write(w, o.landingPage)
	})
	mux.HandleFunc("GET /market", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("rank") + "/" + r.URL.Query().Get("page")
		o.writeListing(w, o.market, key)
	})
	mux.HandleFunc("GET /cards/{account}/offers", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("account") != fmt.Sprint(testAccountId) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		key := r.URL.Query().Get("type") + "/" + r.URL.Query().Get("page")
		o.writeListing(w, o.wishlist, key)
	})
	mux.HandleFunc("GET /market/card/{id}", func(w http.ResponseWriter, r *http.Request) {
		o.mu.Lock()
		page, ok := o.cardPages[r.PathValue("id")]
		o.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		o.write(w, page)
	})

	o.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o.mu.Lock()
		o.requests = append(o.requests, r.Method+" "+r.URL.RequestURI())
		o.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(o.server.Close)
	return o
}

func (o *fakeOrigin) write(w http.ResponseWriter, page string) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (o *fakeOrigin) writeListing(w http.ResponseWriter, pages map[string]string, key string) {
	o.mu.Lock()
	page, ok := pages[key]
	o.mu.Unlock()
	if !ok {
		page = `<html><body><div class="manga-cards market-list__cards market-list__cards--all"></div></body></html>`
	}
	o.write(w, page)
}

func (o *fakeOrigin) Requests() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.requests...)
}

func (o *fakeOrigin) ResetRequests() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = nil
}

func (o *fakeOrigin) Options() ClientOptions {
	return ClientOptions{
		BaseUrl:      o.server.URL,
		RequestDelay: testDelay,
	}
}

// login returns a logged in session, the login requests are cleared from the origin.
func (o *fakeOrigin) login(t *testing.T) (*Session, *fakeClock, *telemetry.Recorder) {
	clock := &fakeClock{}
	tel := &telemetry.Recorder{}
	s, err := Login(context.Background(), testEmail, testPassword, o.Options(), clock, tel)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	o.ResetRequests()
	return s, clock, tel
}

func marketPage(ids ...string) string {
	var items strings.Builder
	for _, id := range ids {
		items.WriteString(fmt.Sprintf(`<div class="manga-cards__item-wrapper" data-id="%s"><div class="manga-cards__item"></div></div>`, id))
	}
	return fmt.Sprintf(
		`<html><body><div class="market-list"><div class="manga-cards market-list__cards market-list__cards--all">%s</div></div></body></html>`,
		items.String(),
	)
}

type wishItem struct {
	id, name, workName string
}

func wishlistPage(items ...wishItem) string {
	var out strings.Builder
	for _, item := range items {
		out.WriteString(fmt.Sprintf(
			`<div class="manga-cards__item-wrapper" data-id="%s" data-name="%s" data-manga-name="%s"></div>`,
			item.id, item.name, item.workName,
		))
	}
	return fmt.Sprintf(`<html><body><div class="manga-cards">%s</div></body></html>`, out.String())
}

func cardPage(name string, prices ...string) string {
	var lots strings.Builder
	for _, price := range prices {
		lots.WriteString(fmt.Sprintf(
			`<div class="market-show__item"><div class="market-show__item-seller">seller</div><div class="market-show__item-price">%s</div></div>`,
			price,
		))
	}
	return fmt.Sprintf(
		`<html><body><div class="card-show" data-name="%s"></div><div class="market-show__items">%s</div></body></html>`,
		name, lots.String(),
	)
}
