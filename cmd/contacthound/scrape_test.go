package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/harvester"
	"github.com/aleister1102/contacthound/internal/httpclient"
	"github.com/aleister1102/contacthound/internal/models"
	"github.com/aleister1102/contacthound/internal/renderer"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHarvester struct {
	urls  []string
	err   error
	query string
	limit int
}

func (s *stubHarvester) Harvest(ctx context.Context, query string, limit int) ([]string, error) {
	s.query, s.limit = query, limit
	return s.urls, s.err
}

func newWebsite(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestConfig(t *testing.T) *config.GlobalConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewDefaultGlobalConfig()
	cfg.FetcherConfig.TimeoutSecs = 2
	cfg.DiscoveryConfig.CommonPaths = []string{"/contact"}
	cfg.RendererConfig.Enabled = false
	cfg.OutputConfig.Dir = filepath.Join(dir, "out")
	cfg.HistoryConfig = config.HistoryConfig{Enabled: true, SQLiteDBPath: filepath.Join(dir, "history.db")}
	return cfg
}

func newTestApp(t *testing.T, cfg *config.GlobalConfig, h harvester.Harvester) *app {
	t.Helper()
	a, err := newApp(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(a.close)
	if h != nil {
		a.newHarvester = func(config.HarvesterConfig, *httpclient.HTTPClient, *renderer.Host, zerolog.Logger) (harvester.Harvester, error) {
			return h, nil
		}
	}
	return a
}

func TestScrapeOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    scrapeOptions
		wantErr bool
	}{
		{"url", scrapeOptions{URL: "https://a.test", Number: 4}, false},
		{"keywords", scrapeOptions{Keywords: "schools", Number: 4}, false},
		{"neither", scrapeOptions{Number: 4}, true},
		{"both", scrapeOptions{URL: "https://a.test", Keywords: "schools", Number: 4}, true},
		{"zero number", scrapeOptions{Keywords: "schools"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, errorwrapper.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScrapeOptions_Apply(t *testing.T) {
	cfg := config.NewDefaultGlobalConfig()
	scrapeOptions{Harvester: "maps", NoRender: true, OutputDir: "results"}.apply(cfg)
	assert.Equal(t, "maps", cfg.HarvesterConfig.Provider)
	assert.False(t, cfg.RendererConfig.Enabled)
	assert.Equal(t, "results", cfg.OutputConfig.Dir)

	cfg = config.NewDefaultGlobalConfig()
	scrapeOptions{}.apply(cfg)
	assert.Equal(t, config.NewDefaultGlobalConfig(), cfg)
}

func TestApp_RunSingleURL(t *testing.T) {
	site := newWebsite(t, `<p>Write to info@school.test or call 01-4412345</p>`)
	cfg := newTestConfig(t)
	a := newTestApp(t, cfg, nil)

	records, err := a.run(context.Background(), scrapeOptions{URL: site.URL, Number: 4, Log: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"info@school.test"}, records[0].Emails)
	assert.Equal(t, []string{"014412345"}, records[0].Numbers)

	files, err := filepath.Glob(filepath.Join(cfg.OutputConfig.Dir, `contacts_\[single\]_*.json`))
	require.NoError(t, err)
	require.Len(t, files, 1)

	run, err := a.history.LastCompletedRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "url", run.Source)
	assert.Equal(t, 1, run.RecordCount)
	assert.Equal(t, files[0], run.OutputPath.String)

	outcomes, err := a.history.Outcomes(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "STATIC_MODE", outcomes[0].Outcome)
	assert.GreaterOrEqual(t, outcomes[0].PagesFetched, 1)
}

func TestApp_RunKeywords(t *testing.T) {
	one := newWebsite(t, `<p>one@first.test</p>`)
	two := newWebsite(t, `<p>two@second.test</p>`)
	h := &stubHarvester{urls: []string{one.URL, two.URL}}
	a := newTestApp(t, newTestConfig(t), h)

	records, err := a.run(context.Background(), scrapeOptions{Keywords: "schools in pokhara", Number: 2})
	require.NoError(t, err)
	assert.Equal(t, "schools in pokhara", h.query)
	assert.Equal(t, 2, h.limit)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"one@first.test"}, records[0].Emails)
	assert.Equal(t, []string{"two@second.test"}, records[1].Emails)
}

func TestApp_NoTargets(t *testing.T) {
	a := newTestApp(t, newTestConfig(t), &stubHarvester{})

	records, err := a.run(context.Background(), scrapeOptions{Keywords: "nothing here", Number: 4})
	assert.ErrorIs(t, err, errorwrapper.ErrNoTargets)
	assert.Empty(t, records)

	_, err = a.history.LastCompletedRun(context.Background())
	assert.Error(t, err, "no run is recorded without targets")
}

func TestApp_PartialHarvestIsUsed(t *testing.T) {
	site := newWebsite(t, `<p>desk@partial.test</p>`)
	h := &stubHarvester{urls: []string{site.URL}, err: errorwrapper.NewHTTPErrorWithURL(429, "quota", "https://places.test")}
	a := newTestApp(t, newTestConfig(t), h)

	records, err := a.run(context.Background(), scrapeOptions{Keywords: "desks", Number: 4})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"desk@partial.test"}, records[0].Emails)
}

func TestApp_HistoryDisabled(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.HistoryConfig.Enabled = false
	a := newTestApp(t, cfg, nil)
	assert.Nil(t, a.history)
	assert.Nil(t, a.renderer)
	assert.Nil(t, a.host)
}

func TestRunScrape_WithConfigFile(t *testing.T) {
	site := newWebsite(t, `<p>office@config.test</p>`)
	dir := t.TempDir()
	outDir := filepath.Join(dir, "records")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.Join([]string{
		"log_config:",
		"  log_level: error",
		"renderer_config:",
		"  enabled: false",
		"discovery_config:",
		"  common_paths: [\"/contact\"]",
		"output_config:",
		"  dir: " + outDir,
	}, "\n")), 0644))

	var stdout bytes.Buffer
	err := runScrape(context.Background(), scrapeOptions{URL: site.URL, Number: 4, Log: true, ConfigFile: cfgPath}, &stdout)
	require.NoError(t, err)

	var printed models.ContactRecord
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &printed))
	assert.Equal(t, site.URL, printed.Website)
	assert.Equal(t, []string{"office@config.test"}, printed.Emails)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunScrape_MissingConfigFile(t *testing.T) {
	err := runScrape(context.Background(), scrapeOptions{URL: "https://a.test", Number: 4, ConfigFile: "/nonexistent/contacthound.yaml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPrintRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRecords(&buf, []models.ContactRecord{
		models.NewContactRecord("https://a.test", nil, []string{"014412345"}),
	}))
	assert.Contains(t, buf.String(), `"emails": "Not found"`)
	assert.Contains(t, buf.String(), `"014412345"`)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "contacthound dev\n", buf.String())
}
