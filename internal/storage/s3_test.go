package storage_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/anonto42/recipe-share/backend/internal/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	existing map[string]bool
}

func (f *fakeS3) HeadObjectWithContext(ctx aws.Context, in *s3.HeadObjectInput, opts ...request.Option) (*s3.HeadObjectOutput, error) {
	if f.existing[aws.StringValue(in.Key)] {
		return &s3.HeadObjectOutput{}, nil
	}
	return nil, awserr.NewRequestFailure(awserr.New("NotFound", "Not Found", nil), http.StatusNotFound, "req-1")
}

type fakeUploader struct {
	s3manageriface.UploaderAPI
	inputs []*s3manager.UploadInput
	bodies []string
	err    error
}

func (f *fakeUploader) UploadWithContext(ctx aws.Context, in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3manager.UploadOutput{}, nil
}

func TestS3Bucket_Upload(t *testing.T) {
	uploader := &fakeUploader{}
	store := storage.NewS3StoreWithClients(&fakeS3{}, uploader, "recipes", "https://cdn.example.com/")
	bucket := store.Bucket("images")

	err := bucket.Upload(context.Background(), "postImages/u1/1-cake.jpg", strings.NewReader("jpeg"),
		storage.UploadOptions{ContentType: "image/jpeg", Upsert: true})
	require.NoError(t, err)

	require.Len(t, uploader.inputs, 1)
	in := uploader.inputs[0]
	assert.Equal(t, "recipes", aws.StringValue(in.Bucket))
	assert.Equal(t, "images/postImages/u1/1-cake.jpg", aws.StringValue(in.Key))
	assert.Equal(t, "image/jpeg", aws.StringValue(in.ContentType))
	assert.Equal(t, s3.ObjectCannedACLPublicRead, aws.StringValue(in.ACL))
	assert.Equal(t, "jpeg", uploader.bodies[0])

	assert.Equal(t, "https://cdn.example.com/images/postImages/u1/1-cake.jpg", bucket.PublicURL("postImages/u1/1-cake.jpg"))
}

func TestS3Bucket_NoUpsertChecksExistence(t *testing.T) {
	uploader := &fakeUploader{}
	client := &fakeS3{existing: map[string]bool{"avatars/taken.png": true}}
	bucket := storage.NewS3StoreWithClients(client, uploader, "recipes", "https://cdn.example.com").Bucket("avatars")
	ctx := context.Background()

	err := bucket.Upload(ctx, "taken.png", strings.NewReader("x"), storage.UploadOptions{})
	assert.ErrorIs(t, err, storage.ErrObjectExists)
	assert.Empty(t, uploader.inputs)

	require.NoError(t, bucket.Upload(ctx, "free.png", strings.NewReader("x"), storage.UploadOptions{}))
	assert.Len(t, uploader.inputs, 1)
}

func TestS3Bucket_UploadErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	bucket := storage.NewS3StoreWithClients(&fakeS3{}, &fakeUploader{err: boom}, "recipes", "https://cdn.example.com").Bucket("images")

	err := bucket.Upload(context.Background(), "a.jpg", strings.NewReader("x"), storage.UploadOptions{Upsert: true})
	assert.ErrorIs(t, err, boom)
}
