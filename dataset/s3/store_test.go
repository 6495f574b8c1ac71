package s3

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/otsob/musii-kit/dataset"
)

// MockS3Client mocks the Client interface with testify.
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.GetObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.DeleteObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.ListObjectsV2Output), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.UploadPartOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.CreateMultipartUploadOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.CompleteMultipartUploadOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.AbortMultipartUploadOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestStoreOpen(t *testing.T) {
	mockClient := new(MockS3Client)
	mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
		return *input.Bucket == "test-bucket" && *input.Key == "datasets/jku/bach.csv"
	})).Return(&s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader("0.0,60.0\n")),
		ContentLength: aws.Int64(9),
	}, nil)

	store := NewStore(mockClient, "test-bucket", "datasets/jku")

	blob, err := store.Open(context.Background(), "bach.csv")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(9), blob.Size())
	data, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, "0.0,60.0\n", string(data))
	mockClient.AssertExpectations(t)
}

func TestStoreOpenNotFound(t *testing.T) {
	mockClient := new(MockS3Client)
	mockClient.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

	store := NewStore(mockClient, "test-bucket", "datasets/jku")

	_, err := store.Open(context.Background(), "missing.csv")
	assert.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestStorePut(t *testing.T) {
	var uploaded []byte

	mockClient := new(MockS3Client)
	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Key == "datasets/jku/manifests/abc.json"
	})).Run(func(args mock.Arguments) {
		input := args.Get(1).(*s3.PutObjectInput)
		data, err := io.ReadAll(input.Body)
		require.NoError(t, err)
		uploaded = data
	}).Return(&s3.PutObjectOutput{}, nil)

	store := NewStore(mockClient, "test-bucket", "datasets/jku")

	err := store.Put(context.Background(), "manifests/abc.json", []byte(`{"id":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"id":"abc"}`, string(uploaded))
	mockClient.AssertExpectations(t)
}

func TestStoreCreate(t *testing.T) {
	var uploaded bytes.Buffer

	mockClient := new(MockS3Client)
	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Key == "datasets/jku/bach.csv"
	})).Run(func(args mock.Arguments) {
		input := args.Get(1).(*s3.PutObjectInput)
		_, err := io.Copy(&uploaded, input.Body)
		require.NoError(t, err)
	}).Return(&s3.PutObjectOutput{}, nil)

	store := NewStore(mockClient, "test-bucket", "datasets/jku")

	blob, err := store.Create(context.Background(), "bach.csv")
	require.NoError(t, err)

	_, err = blob.Write([]byte("0.0,60.0\n"))
	require.NoError(t, err)
	_, err = blob.Write([]byte("1.0,62.0\n"))
	require.NoError(t, err)
	require.NoError(t, blob.Close())

	assert.Equal(t, "0.0,60.0\n1.0,62.0\n", uploaded.String())

	// Double close reports the pipe as closed.
	assert.ErrorIs(t, blob.Close(), io.ErrClosedPipe)
	mockClient.AssertExpectations(t)
}

func TestStoreDelete(t *testing.T) {
	mockClient := new(MockS3Client)
	mockClient.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return *input.Key == "datasets/jku/bach.csv"
	})).Return(&s3.DeleteObjectOutput{}, nil)

	store := NewStore(mockClient, "test-bucket", "datasets/jku")

	require.NoError(t, store.Delete(context.Background(), "bach.csv"))
	mockClient.AssertExpectations(t)
}

func TestStoreList(t *testing.T) {
	mockClient := new(MockS3Client)
	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken == nil && *input.Prefix == "datasets/jku/bach"
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("datasets/jku/bach/csv/wtc2f20.csv")},
		},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page-2"),
	}, nil)
	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken != nil && *input.ContinuationToken == "page-2"
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("datasets/jku/bach/analysis.csv")},
		},
	}, nil)

	store := NewStore(mockClient, "test-bucket", "datasets/jku")

	names, err := store.List(context.Background(), "bach")
	require.NoError(t, err)
	assert.Equal(t, []string{"bach/analysis.csv", "bach/csv/wtc2f20.csv"}, names)
	mockClient.AssertExpectations(t)
}
