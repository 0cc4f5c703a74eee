package steam

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("", time.Second)
	assert.Error(t, err)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", time.Second, WithBaseURL(srv.URL))
	require.NoError(t, err)
	return client
}

func TestAppList(t *testing.T) {
	var gotPath, gotKey, gotLast string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotLast = r.URL.Query().Get("last_appid")
		fmt.Fprint(w, `{"response": {
			"apps": [
				{"appid": 400, "name": "Portal", "last_modified": 1600000000},
				{"appid": 620, "name": "Portal 2", "last_modified": 1600000001}
			],
			"have_more_results": true,
			"last_appid": 620
		}}`)
	})

	page, err := client.AppList(context.Background(), 0, 100)
	require.NoError(t, err)

	assert.Equal(t, "/IStoreService/GetAppList/v1/", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Empty(t, gotLast)

	require.Len(t, page.Apps, 2)
	assert.Equal(t, int64(400), page.Apps[0].AppID)
	assert.Equal(t, "Portal", page.Apps[0].Name)
	assert.True(t, page.HaveMoreApps)
	assert.Equal(t, int64(620), page.LastAppID)
}

func TestAppList_Cursor(t *testing.T) {
	var gotLast string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLast = r.URL.Query().Get("last_appid")
		fmt.Fprint(w, `{"response": {"apps": [], "have_more_results": false}}`)
	})

	_, err := client.AppList(context.Background(), 620, 100)
	require.NoError(t, err)
	assert.Equal(t, "620", gotLast)
}

func TestAppList_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.AppList(context.Background(), 0, 100)
	assert.Error(t, err)
}

func TestAllApps_WalksPages(t *testing.T) {
	pages := []string{
		`{"response": {"apps": [{"appid": 400, "name": "Portal"}], "have_more_results": true, "last_appid": 400}}`,
		`{"response": {"apps": [{"appid": 620, "name": "Portal 2"}], "have_more_results": false}}`,
	}
	var call int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pages[call])
		call++
	})

	var names []string
	err := client.AllApps(context.Background(), 1, func(apps []App) error {
		for _, a := range apps {
			names = append(names, a.Name)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Portal", "Portal 2"}, names)
	assert.Equal(t, 2, call)
}

func TestAllApps_StopsOnCallbackError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response": {"apps": [{"appid": 400, "name": "Portal"}], "have_more_results": true, "last_appid": 400}}`)
	})

	wantErr := fmt.Errorf("stop")
	err := client.AllApps(context.Background(), 1, func([]App) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}
