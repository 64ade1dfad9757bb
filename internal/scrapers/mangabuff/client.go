// client.go holds the authenticated session: building the HTTP client, logging in and
// fetching pages. The crawlers in the other files all go through a *Session.

package mangabuff

import (
	"bytes"
	"context"
	"fmt"
	"mangabuff-tracker/internal/components/assert"
	"mangabuff-tracker/internal/components/chrono"
	"mangabuff-tracker/internal/components/telemetry"
	"mangabuff-tracker/pkg/htmlutil"
	"net/http"
	"net/http/cookiejar"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_session_login        = "session.login"
	report_session_crawl_market = "session.crawl-market"
	report_session_crawl_wish   = "session.crawl-wishlist"
	report_session_enrich_lots  = "session.enrich-lots"
	report_session_get_lots     = "session.get-cards-lots"
)

const (
	DefaultBaseUrl      = "https://mangabuff.ru"
	DefaultRequestDelay = 2 * time.Second
	DefaultTimeout      = 10 * time.Second
	DefaultMaxPages     = 100
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:139.0) Gecko/20100101 Firefox/139.0"

	authorizationErrorCode = http.StatusUnprocessableEntity
)

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// waited before every crawl request (market pages, wishlist pages, card pages), zero means no delay
	RequestDelay time.Duration
	// per request timeout, defaults to DefaultTimeout
	Timeout time.Duration
	// pages crawled per rank before giving up, defaults to DefaultMaxPages
	MaxPages int
	// defaults to DefaultUserAgent
	UserAgent string
	// wraps the transport with cloudflare-bp-go
	BypassCloudflare bool
	// if set, every HTTP exchange is written to it in full
	HttpDump telemetry.MessageOutput
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.BaseUrl == "" {
		o.BaseUrl = DefaultBaseUrl
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	return o
}

// Session is an authenticated connection to the site. It owns its cookies and must
// not be shared between concurrent callers. Call Close once done with it.
type Session struct {
	BaseUrl   *url.URL
	Http      *resty.Client
	AccountId int64

	opts ClientOptions
	time chrono.API
	tel  telemetry.API
}

func newSession(opts ClientOptions, clock chrono.API, tel telemetry.API) (*Session, error) {
	assert.NotNil(clock)
	assert.NotNil(tel)
	assert.NonNegative(opts.RequestDelay)

	opts = opts.withDefaults()
	tel = telemetry.NewScopedAPI("mangabuff", tel)

	parsedBaseUrl, err := url.Parse(strings.TrimRight(opts.BaseUrl, "/"))
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(parsedBaseUrl.String())
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetHeader("accept-language", "ru-RU,ru;q=0.8,en-US;q=0.5,en;q=0.3")
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(httpClient, tel, opts.HttpDump)

	return &Session{
		BaseUrl: parsedBaseUrl,
		Http:    httpClient,
		opts:    opts,
		time:    clock,
		tel:     tel,
	}, nil
}

// Login validates the credentials, logs in and returns the resulting session.
// Every failure is reported as critical and returned unchanged, use KindOf to tell
// bad credentials apart from a site that changed.
func Login(ctx context.Context, email, password string, opts ClientOptions, clock chrono.API, tel telemetry.API) (*Session, error) {
	err := validateCredentials(email, password)
	if err != nil {
		telemetry.NewScopedAPI("mangabuff", tel).ReportCritical(report_session_login, err)
		return nil, err
	}

	s, err := newSession(opts, clock, tel)
	if err != nil {
		telemetry.NewScopedAPI("mangabuff", tel).ReportCritical(
			report_session_login,
			fmt.Errorf("create client: %w", err),
		)
		return nil, err
	}

	err = s.login(ctx, email, password)
	if err != nil {
		s.tel.ReportCritical(report_session_login, err, email)
		s.Close()
		return nil, err
	}
	return s, nil
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return ErrInvalidCredentialsFormat
	}
	// ParseAddress also accepts "Name <addr>" forms, only a bare address is valid here
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidCredentialsFormat
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	if !strings.Contains(domain, ".") {
		return ErrInvalidCredentialsFormat
	}
	return nil
}

var userIdRegex = regexp.MustCompile(`window\.user_id\s*=\s*(\d+)\s*;`)

func (s *Session) login(ctx context.Context, email, password string) error {
	s.tel.ReportDebug("logging in", email)

	doc, err := s.getDocument(ctx, "/login/")
	if err != nil {
		return fmt.Errorf("fetch login page: %w", err)
	}
	csrfToken := htmlutil.Attr(doc.Find("meta[name='csrf-token']").First(), "content")
	if csrfToken == "" {
		return ErrCsrfTokenMissing
	}

	res, err := s.Http.R().
		SetContext(ctx).
		SetHeader("X-Csrf-Token", csrfToken).
		SetFormData(map[string]string{
			"email":    email,
			"password": password,
		}).
		Post("/login/")
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	if res.StatusCode() == authorizationErrorCode {
		return ErrNotAuthorized
	}
	if res.IsError() {
		return statusError(res)
	}

	doc, err = s.getDocument(ctx, "/")
	if err != nil {
		return fmt.Errorf("fetch landing page: %w", err)
	}
	rawId := htmlutil.FindInScripts(doc, userIdRegex)
	if rawId == "" {
		return ErrAccountIdMissing
	}
	accountId, err := strconv.ParseInt(rawId, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAccountIdMissing, err)
	}
	s.AccountId = accountId

	s.tel.ReportDebug("logged in", email, accountId)
	return nil
}

// Close releases the session's idle connections.
func (s *Session) Close() {
	s.Http.GetClient().CloseIdleConnections()
	s.tel.ReportDebug("session closed")
}

func statusError(res *resty.Response) *StatusError {
	return &StatusError{
		Method:     res.Request.Method,
		Url:        res.Request.URL,
		StatusCode: res.StatusCode(),
	}
}

// getDocument fetches and parses a page, non-2xx statuses are errors.
func (s *Session) getDocument(ctx context.Context, endpoint string) (*goquery.Document, error) {
	res, err := s.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, statusError(res)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", endpoint, err)
	}
	return doc, nil
}

// crawlDocument is getDocument preceded by the request delay.
func (s *Session) crawlDocument(ctx context.Context, endpoint string) (*goquery.Document, error) {
	s.time.Sleep(s.opts.RequestDelay)
	return s.getDocument(ctx, endpoint)
}
