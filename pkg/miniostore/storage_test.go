package miniostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		endpoint   string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{"minio:9000", false, "minio:9000", false},
		{"minio:9000", true, "minio:9000", true},
		{"http://localhost:9000/", true, "localhost:9000", false},
		{"https://s3.example.com", false, "s3.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			host, secure := splitEndpoint(tt.endpoint, tt.useSSL)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantSecure, secure)
		})
	}
}

func TestPublicURL(t *testing.T) {
	s, err := New(Config{Endpoint: "http://localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "media"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/media/equipment/x.jpg", s.PublicURL("equipment/x.jpg"))

	s, err = New(Config{Endpoint: "localhost:9000", Bucket: "media", PublicBaseURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/equipment/x.jpg", s.PublicURL("equipment/x.jpg"))
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}
