package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"docregister/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "plain", filename: "plan.pdf", want: "registers/org-a/A%2F100/blob-1/plan.pdf"},
		{name: "path stripped", filename: "../../etc/passwd", want: "registers/org-a/A%2F100/blob-1/passwd"},
		{name: "windows path", filename: `C:\drawings\A-100.dwg`, want: "registers/org-a/A%2F100/blob-1/A-100.dwg"},
		{name: "empty", filename: "", want: "registers/org-a/A%2F100/blob-1/file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ObjectKey("org-a", "A/100", "blob-1", tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ObjectKey("", "A/100", "blob-1", "x")
	assert.Error(t, err)
}

func TestValidateMinIO(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MinIOConfig
		wantErr string
	}{
		{name: "missing endpoint", cfg: config.MinIOConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}, wantErr: "endpoint"},
		{name: "missing credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}, wantErr: "credentials"},
		{name: "missing bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, wantErr: "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinIO(context.Background(), tt.cfg)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMinioErr(t *testing.T) {
	assert.NoError(t, minioErr(nil))
	assert.ErrorIs(t, minioErr(minio.ErrorResponse{Code: "NoSuchKey"}), ErrObjectNotFound)
	assert.NotErrorIs(t, minioErr(minio.ErrorResponse{Code: "AccessDenied"}), ErrObjectNotFound)
}

func TestNewS3_Validation(t *testing.T) {
	_, err := NewS3(context.Background(), config.S3Config{Region: "eu-west-1"})
	assert.ErrorContains(t, err, "bucket")

	_, err = NewS3(context.Background(), config.S3Config{Bucket: "b"})
	assert.ErrorContains(t, err, "region")
}

type fakeS3 struct {
	objects map[string][]byte
	putIn   *s3.PutObjectInput
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.putIn = in
	f.objects[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{ETag: aws.String(`"etag"`)}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(b)),
		ContentLength: aws.Int64(int64(len(b))),
		ContentType:   aws.String("text/plain"),
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct{ err error }

func (f fakePresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &v4.PresignedHTTPRequest{
		URL: "https://blobs.example/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key) + "?ttl=" + opts.Expires.String(),
	}, nil
}

func TestS3Storage_RoundTrip(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	s := &s3Storage{client: fake, presign: fakePresigner{}, bucket: "register"}
	ctx := context.Background()

	info, err := s.Put(ctx, "k1", bytes.NewBufferString("hello"), PutObjectOptions{Size: 5, ContentType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, `"etag"`, info.ETag)
	assert.Equal(t, int64(5), aws.ToInt64(fake.putIn.ContentLength))
	assert.Equal(t, "register", aws.ToString(fake.putIn.Bucket))

	_, err = s.Put(ctx, "k2", bytes.NewBufferString("x"), PutObjectOptions{Size: -1})
	require.NoError(t, err)
	assert.Nil(t, fake.putIn.ContentLength)

	rc, info, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, int64(5), info.Size)

	url, err := s.PresignGet(ctx, "k1", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://blobs.example/register/k1?ttl=15m0s", url)

	require.NoError(t, s.Delete(ctx, "k1"))
	_, _, err = s.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	s.presign = fakePresigner{err: errors.New("no creds")}
	_, err = s.PresignGet(ctx, "k2", time.Minute)
	assert.Error(t, err)
}
