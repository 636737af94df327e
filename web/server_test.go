package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/callebjorkell/musicbox/box"
	"github.com/callebjorkell/musicbox/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	playing string
}

func (p *fakePlayer) Play(track card.Track) error {
	p.playing = track.Path
	return nil
}

func (p *fakePlayer) Stop() error {
	p.playing = ""
	return nil
}

func (p *fakePlayer) WaitUntilDone() error {
	return nil
}

func testServer(t *testing.T, configContents string) (*Server, *httptest.Server) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "musicbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContents), 0644))

	id, err := card.ParseID("0102")
	require.NoError(t, err)
	library := card.NewLibrary([]card.Entry{
		{Card: id, Track: card.Track{Path: "/music/song1.mp3"}},
	})

	srv := &Server{
		Mu:         &sync.Mutex{},
		Controller: box.New(library, &fakePlayer{}),
		Status:     box.NewStatus(),
		Metrics:    NewMetrics(),
		ConfigPath: path,
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(out))
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestStatusStartsIdle(t *testing.T) {
	_, ts := testServer(t, "cards: {}\n")

	var status statusPayload
	getJSON(t, ts.URL+"/api/status", &status)
	assert.Zero(t, status.IdleEvents)
	assert.Nil(t, status.LastAction)
	assert.Nil(t, status.ActiveCard)
}

func TestPlayStartsTrackAndUpdatesStatus(t *testing.T) {
	_, ts := testServer(t, "cards: {}\n")

	res := postJSON(t, ts.URL+"/api/play", map[string]string{"card_hex": "0102"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var cmd commandResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&cmd))
	require.NotNil(t, cmd.Status.ActiveCard)
	assert.Equal(t, "0102", *cmd.Status.ActiveCard)
	assert.Equal(t, "/music/song1.mp3", *cmd.Status.ActiveTrack)
	assert.Contains(t, cmd.Message, "started")
}

func TestPlayUnknownCardIs404(t *testing.T) {
	_, ts := testServer(t, "cards: {}\n")

	res := postJSON(t, ts.URL+"/api/play", map[string]string{"card_hex": "0909"})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPlayMalformedHexIs400(t *testing.T) {
	_, ts := testServer(t, "cards: {}\n")

	res := postJSON(t, ts.URL+"/api/play", map[string]string{"card_hex": "zz"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestPauseWithoutPlayback(t *testing.T) {
	_, ts := testServer(t, "cards: {}\n")

	res := postJSON(t, ts.URL+"/api/pause", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var cmd commandResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&cmd))
	assert.Equal(t, "No active playback to pause", cmd.Message)
}

func TestPauseStopsPlayback(t *testing.T) {
	_, ts := testServer(t, "cards: {}\n")

	postJSON(t, ts.URL+"/api/play", map[string]string{"card_hex": "0102"})
	res := postJSON(t, ts.URL+"/api/pause", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var cmd commandResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&cmd))
	assert.Contains(t, cmd.Message, "stopped")
	assert.Nil(t, cmd.Status.ActiveCard)
}

func TestLibraryListsEntries(t *testing.T) {
	_, ts := testServer(t, "cards: {}\n")

	var library struct {
		Entries []libraryEntry `json:"entries"`
	}
	getJSON(t, ts.URL+"/api/library", &library)
	require.Len(t, library.Entries, 1)
	assert.Equal(t, "0102", library.Entries[0].Card)
}

func TestConfigRoundTrip(t *testing.T) {
	contents := "music_dir: /music\ncards:\n  \"0102\": song1.mp3\n"
	srv, ts := testServer(t, contents)

	var cfg configPayload
	getJSON(t, ts.URL+"/api/config", &cfg)
	assert.Equal(t, srv.ConfigPath, cfg.Path)
	assert.Equal(t, contents, cfg.Contents)
}

func TestPutConfigReplacesLibrary(t *testing.T) {
	srv, ts := testServer(t, "cards: {}\n")

	updated := "music_dir: /music\ncards:\n  \"0304\": song2.mp3\n  \"0506\": song3.mp3\n"
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/config", bytes.NewReader(mustBody(t, updated)))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	written, err := os.ReadFile(srv.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, updated, string(written))

	var library struct {
		Entries []libraryEntry `json:"entries"`
	}
	getJSON(t, ts.URL+"/api/library", &library)
	require.Len(t, library.Entries, 2)
	assert.Equal(t, "0304", library.Entries[0].Card)
	assert.Equal(t, "/music/song2.mp3", library.Entries[0].Track)
}

func TestPutConfigRejectsBadDocument(t *testing.T) {
	srv, ts := testServer(t, "cards: {}\n")

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/config", bytes.NewReader(mustBody(t, "cards:\n  \"zz\": nope.mp3\n")))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// the broken document must not reach the disk
	written, err := os.ReadFile(srv.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "cards: {}\n", string(written))
}

func TestMetricsCountActions(t *testing.T) {
	_, ts := testServer(t, "cards: {}\n")

	postJSON(t, ts.URL+"/api/play", map[string]string{"card_hex": "0102"})

	res, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(res.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `musicbox_actions_total{action="started"} 1`)
}

func mustBody(t *testing.T, contents string) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]string{"contents": contents})
	require.NoError(t, err)
	return data
}
