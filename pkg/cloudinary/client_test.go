package cloudinary

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipskill/equipskill-dashboard/pkg/httpclient"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantErr    bool
		wantSigned bool
	}{
		{name: "missing cloud", cfg: Config{UploadPreset: "p"}, wantErr: true},
		{name: "unsigned needs preset", cfg: Config{CloudName: "demo"}, wantErr: true},
		{name: "unsigned", cfg: Config{CloudName: "demo", UploadPreset: "p"}},
		{name: "signed", cfg: Config{CloudName: "demo", APIKey: "k", APISecret: "s"}, wantSigned: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.cfg, httpclient.NewStandardClient())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSigned, c.Signed())
			assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
		})
	}
}

func TestUpload_Unsigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo/auto/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "equipment", r.FormValue("upload_preset"))
		assert.Equal(t, "listings", r.FormValue("folder"))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "digger.jpg", header.Filename)
		assert.Equal(t, "jpeg-bytes", string(data))

		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/image/upload/v1/listings/digger.jpg"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		CloudName:    "demo",
		UploadPreset: "equipment",
		Folder:       "listings",
		BaseURL:      srv.URL + "/v1_1/",
	}, httpclient.NewStandardClient())
	require.NoError(t, err)

	url, err := c.Upload(context.Background(), "digger.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/listings/digger.jpg", url)
}

func TestUpload_UnsignedRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{CloudName: "demo", UploadPreset: "nope", BaseURL: srv.URL}, httpclient.NewStandardClient())
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), "a.png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Upload preset not found")
}
