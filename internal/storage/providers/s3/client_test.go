package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/jobportal/internal/config"
	"github.com/mrlokans/jobportal/internal/storage"
)

var _ storage.Client = (*Client)(nil)

type fakeAPI struct {
	mu      sync.Mutex
	objects map[string][]byte
	buckets []string
	failPut error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{objects: make(map[string][]byte)}
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.buckets = append(f.buckets, aws.ToString(in.Bucket))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

// onlyReader hides any Seek method of the wrapped reader.
type onlyReader struct{ io.Reader }

func TestClient_UploadExistsDelete(t *testing.T) {
	api := newFakeAPI()
	c := NewClient(api, "resumes")
	ctx := context.Background()

	exists, err := c.Exists(ctx, "uploads/resumes/cv.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.Upload(ctx, "uploads/resumes/cv.pdf", onlyReader{strings.NewReader("%PDF")}))
	assert.Equal(t, []byte("%PDF"), api.objects["uploads/resumes/cv.pdf"])
	assert.Equal(t, []string{"resumes"}, api.buckets)

	exists, err = c.Exists(ctx, "uploads/resumes/cv.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "uploads/resumes/cv.pdf"))
	exists, err = c.Exists(ctx, "uploads/resumes/cv.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_UploadError(t *testing.T) {
	api := newFakeAPI()
	api.failPut = errors.New("access denied")
	c := NewClient(api, "resumes")

	err := c.Upload(context.Background(), "a.pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestClient_InvalidKey(t *testing.T) {
	c := NewClient(newFakeAPI(), "resumes")
	err := c.Upload(context.Background(), "../a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, storage.ErrInvalidPath)
}

func TestNewFromConfig_RequiresBucket(t *testing.T) {
	_, err := NewFromConfig(context.Background(), config.S3{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	c, err := NewFromConfig(context.Background(), config.S3{
		Region:       "us-east-1",
		Bucket:       "resumes",
		BaseEndpoint: "http://localhost:9000",
		AccessKey:    "minio",
		SecretKey:    "minio123",
	})
	require.NoError(t, err)
	assert.Equal(t, "resumes", c.bucket)
}
