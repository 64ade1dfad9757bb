package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	tel := NewScopedAPI("mangabuff", rec)

	tel.ReportCritical("session.login", "boom")
	tel.ReportBroken("session.crawl-market")
	tel.ReportWarning("session.enrich-lots")
	tel.ReportDebug("crawl market page")
	tel.ReportCount("session.market-cards", 3)

	reports := rec.Reports("")
	require.Len(t, reports, 5)
	require.Equal(t, "mangabuff: session.login", reports[0].Id)
	require.Equal(t, []any{"boom"}, reports[0].Params)
	require.Equal(t, "mangabuff: session.crawl-market", reports[1].Id)
	require.Equal(t, "mangabuff: crawl market page", reports[3].Id)
	require.Equal(t, []any{int64(3)}, reports[4].Params)

	require.Len(t, rec.Reports("critical"), 1)
	require.Len(t, rec.Reports("count"), 1)
}

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (m *memoryOutput) Write(id string, contents string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[id] = contents
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "1")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	defer server.Close()

	rec := &Recorder{}
	out := &memoryOutput{messages: map[string]string{}}

	client := resty.New()
	InstrumentResty(client, rec, out)

	_, err := client.R().Get(server.URL + "/pot")
	require.NoError(t, err)
	_, err = client.R().SetFormData(map[string]string{"a": "b"}).Post(server.URL + "/pot")
	require.NoError(t, err)

	debug := rec.Reports("debug")
	require.Len(t, debug, 4)
	require.Equal(t, report_resty_request, debug[0].Id)
	require.Equal(t, uint64(1), debug[0].Params[0])
	require.Equal(t, report_resty_response, debug[1].Id)
	require.Equal(t, uint64(2), debug[2].Params[0])

	require.Len(t, out.messages, 2)
	first := out.messages["1"]
	require.True(t, strings.HasPrefix(first, "---- REQUEST ----\n\nGET "+server.URL+"/pot"))
	require.Contains(t, first, "418")
	require.Contains(t, first, "X-Test: 1")
	require.Contains(t, first, "short and stout")
	require.Contains(t, out.messages["2"], "a=b")
}

func TestInstrumentRestyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec, nil)

	_, err := client.R().Get(url)
	require.Error(t, err)

	broken := rec.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, report_resty_response, broken[0].Id)
}
