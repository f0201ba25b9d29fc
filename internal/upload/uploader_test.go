package upload_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/equipskill/equipskill-dashboard/config"
	"github.com/equipskill/equipskill-dashboard/internal/imagehost"
	"github.com/equipskill/equipskill-dashboard/internal/upload"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
)

// MockHost is a mock implementation of imagehost.Host
type MockHost struct {
	mock.Mock
}

func (m *MockHost) Upload(ctx context.Context, f imagehost.File) (string, error) {
	args := m.Called(ctx, f.Name)
	return args.String(0), args.Error(1)
}

// countingHost records how many uploads were attempted.
type countingHost struct {
	mu    sync.Mutex
	calls int
	fail  string
}

func (h *countingHost) Upload(_ context.Context, f imagehost.File) (string, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	if f.Name == h.fail {
		return "", errors.New("503 from image host")
	}
	return "https://img.example.com/" + f.Name, nil
}

func sized(name string, size int64) imagehost.File {
	f := imagehost.FromBytes(name, []byte("x"))
	f.Size = size
	return f
}

func batch(n int, size int64) []imagehost.File {
	files := make([]imagehost.File, n)
	for i := range files {
		files[i] = sized(fmt.Sprintf("img-%d.jpg", i), size)
	}
	return files
}

func TestCheck(t *testing.T) {
	const mb = 1024 * 1024

	tests := []struct {
		name     string
		existing int
		files    []imagehost.File
		c        upload.Constraints
		wantErr  any
	}{
		{"empty selection", 0, nil, upload.EquipmentImages, &apperrors.ValidationError{}},
		{"count exactly at limit", 2, batch(3, 1), upload.EquipmentImages, nil},
		{"count over limit", 2, batch(4, 1), upload.EquipmentImages, &apperrors.TooManyFilesError{}},
		{"bytes exactly at limit", 0, []imagehost.File{sized("a.jpg", 6*mb), sized("b.jpg", 4*mb)}, upload.EquipmentImages, nil},
		{"bytes over limit", 0, []imagehost.File{sized("a.jpg", 6*mb), sized("b.jpg", 4*mb+1)}, upload.EquipmentImages, &apperrors.PayloadTooLargeError{}},
		{"existing files do not count toward bytes", 4, []imagehost.File{sized("a.jpg", 10*mb)}, upload.EquipmentImages, nil},
		{"second cv", 1, batch(1, 1), upload.CV, &apperrors.TooManyFilesError{}},
		{"cv over 5MB", 0, []imagehost.File{sized("cv.pdf", 5*mb+1)}, upload.CV, &apperrors.PayloadTooLargeError{}},
		{"many certificates", 40, batch(20, 1024), upload.Certificates, nil},
		{"certificates over 10MB", 0, batch(11, mb), upload.Certificates, &apperrors.PayloadTooLargeError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := upload.Check(tt.existing, tt.files, tt.c)
			switch want := tt.wantErr.(type) {
			case nil:
				assert.NoError(t, err)
			case *apperrors.ValidationError:
				assert.ErrorAs(t, err, &want)
			case *apperrors.TooManyFilesError:
				assert.ErrorAs(t, err, &want)
			case *apperrors.PayloadTooLargeError:
				assert.ErrorAs(t, err, &want)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			}
		})
	}
}

func TestUpload_RejectedBatchMakesNoCalls(t *testing.T) {
	host := new(MockHost)
	u := upload.NewUploader(host)

	urls, err := u.Upload(context.Background(), 3, batch(3, 1), upload.EquipmentImages)

	var tooMany *apperrors.TooManyFilesError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, 5, tooMany.Max)
	assert.Nil(t, urls)
	host.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestUpload_PreservesOrder(t *testing.T) {
	host := new(MockHost)
	host.On("Upload", mock.Anything, "img-0.jpg").Return("https://img/0", nil).Once()
	host.On("Upload", mock.Anything, "img-1.jpg").Return("https://img/1", nil).Once()
	host.On("Upload", mock.Anything, "img-2.jpg").Return("https://img/2", nil).Once()

	urls, err := upload.NewUploader(host).Upload(context.Background(), 2, batch(3, 10), upload.EquipmentImages)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/0", "https://img/1", "https://img/2"}, urls)
	host.AssertExpectations(t)
}

func TestUpload_OneFailureFailsBatch(t *testing.T) {
	host := &countingHost{fail: "img-1.jpg"}

	urls, err := upload.NewUploader(host).Upload(context.Background(), 0, batch(3, 10), upload.EquipmentImages)

	var uerr *apperrors.UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "img-1.jpg", uerr.File)
	assert.Contains(t, err.Error(), "503 from image host")
	assert.Nil(t, urls)
}

func TestLimitsFromConfig(t *testing.T) {
	l := upload.LimitsFromConfig(config.UploadConfig{EquipmentMaxImages: 8, CVMaxBytes: 1024})

	assert.Equal(t, 8, l.EquipmentImages.MaxCount)
	assert.Equal(t, upload.EquipmentImages.MaxTotalBytes, l.EquipmentImages.MaxTotalBytes)
	assert.Equal(t, int64(1024), l.CV.MaxTotalBytes)
	assert.Equal(t, 1, l.CV.MaxCount)
	assert.Equal(t, upload.Certificates, l.Certificates)
}
