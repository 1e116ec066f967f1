package images

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAWS replaces the AWS seams for the duration of a test.
func stubAWS(t *testing.T, presign func(in *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error)) {
	t.Helper()
	oldLoad, oldPresign := loadDefaultAWSConfig, presignPutObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, presignPutObject = oldLoad, oldPresign
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return presign(in)
	}
}

func writeImage(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey(time.Date(2024, 3, 7, 23, 0, 0, 0, time.UTC), ".JPG")
	assert.Regexp(t, regexp.MustCompile(`^incidents/2024/03/07/[0-9a-f-]{36}\.jpg$`), key)
}

func TestNewS3Uploader_DisabledWithoutEndpoint(t *testing.T) {
	u := NewS3Uploader(S3Config{Bucket: "b"})
	assert.Nil(t, u)

	_, err := u.Upload(context.Background(), "whatever.jpg")
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}

func TestUpload_Success(t *testing.T) {
	var gotBody []byte
	var gotCT, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCT = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	var gotKey, gotBucket string
	stubAWS(t, func(in *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error) {
		gotKey, gotBucket = *in.Key, *in.Bucket
		return &v4.PresignedHTTPRequest{URL: ts.URL + "/upload?X-Amz-Signature=abc", Method: http.MethodPut}, nil
	})

	u := NewS3Uploader(S3Config{Bucket: "incident-images", Region: "us-east-1", Endpoint: "http://minio:9000/"})
	u.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	path := writeImage(t, "photo.png", []byte("png bytes"))
	url, err := u.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "incident-images", gotBucket)
	assert.True(t, strings.HasPrefix(gotKey, "incidents/2024/05/01/"))
	assert.Equal(t, "http://minio:9000/incident-images/"+gotKey, url)

	assert.Equal(t, "/upload", gotPath)
	assert.Equal(t, "image/png", gotCT)
	assert.Equal(t, []byte("png bytes"), gotBody)
}

func TestUpload_Failures(t *testing.T) {
	u := NewS3Uploader(S3Config{Bucket: "b", Endpoint: "http://minio:9000"})

	t.Run("missing file", func(t *testing.T) {
		stubAWS(t, func(in *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error) {
			t.Fatal("presign must not be called")
			return nil, nil
		})
		_, err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.jpg"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("presign error", func(t *testing.T) {
		boom := errors.New("presign boom")
		stubAWS(t, func(in *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error) {
			return nil, boom
		})
		_, err := u.Upload(context.Background(), writeImage(t, "a.jpg", []byte("x")))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("upload rejected", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()
		stubAWS(t, func(in *s3.PutObjectInput) (*v4.PresignedHTTPRequest, error) {
			return &v4.PresignedHTTPRequest{URL: ts.URL}, nil
		})
		_, err := u.Upload(context.Background(), writeImage(t, "a.jpg", []byte("x")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upload failed: 403")
	})
}
