package release

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListReleases(t *testing.T) {
	var zipballURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/Arvernus/iRock-Modbus/releases":
			assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
			fmt.Fprintf(w, `[
				{"tag_name": "v2.0.0", "name": "2.0.0", "zipball_url": "%s/zipball/v2.0.0", "published_at": "2024-06-01T10:00:00Z"},
				{"tag_name": "v1.0.0", "name": "1.0.0", "zipball_url": "%s/zipball/v1.0.0", "published_at": "2024-01-01T10:00:00Z"}
			]`, zipballURL, zipballURL)
		case "/zipball/v2.0.0":
			w.Write([]byte("zip-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	zipballURL = server.URL

	client := NewClient(server.URL, "Arvernus", "iRock-Modbus", "")

	releases, err := client.ListReleases(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 2)
	assert.Equal(t, "v2.0.0", releases[0].TagName)
	assert.Equal(t, "v1.0.0", releases[1].TagName)

	v, err := releases[0].Version()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.Major())

	data, err := client.DownloadZipball(context.Background(), releases[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("zip-bytes"), data)
}

func TestClient_ListReleasesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "Arvernus", "iRock-Modbus", "")

	_, err := client.ListReleases(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestClient_TokenHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "Arvernus", "iRock-Modbus", "secret")

	_, err := client.ListReleases(context.Background())
	require.NoError(t, err)
}

func TestClient_DownloadZipballWithoutURL(t *testing.T) {
	client := NewClient("http://example.invalid", "Arvernus", "iRock-Modbus", "")

	_, err := client.DownloadZipball(context.Background(), Release{TagName: "v1.0.0"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no zipball url")
}

func TestFilter(t *testing.T) {
	releases := []Release{
		{TagName: "v2.0.0"},
		{TagName: "v2.0.0-rc.1", Prerelease: true},
		{TagName: "v1.9.0", Draft: true},
		{TagName: "v1.0.0"},
	}

	kept := Filter(releases, false)
	require.Len(t, kept, 2)
	assert.Equal(t, "v2.0.0", kept[0].TagName)
	assert.Equal(t, "v1.0.0", kept[1].TagName)

	kept = Filter(releases, true)
	require.Len(t, kept, 3)
}

func TestRelease_VersionInvalidTag(t *testing.T) {
	_, err := Release{TagName: "not-a-version"}.Version()
	assert.Error(t, err)
}
