package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Store writes into one S3 bucket. Logical bucket names become key prefixes.
type S3Store struct {
	client   s3iface.S3API
	uploader s3manageriface.UploaderAPI
	bucket   string
	baseURL  string
}

// NewS3Store builds the S3 clients from the default credential chain
func NewS3Store(region, bucket, publicBaseURL string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return NewS3StoreWithClients(s3.New(sess), s3manager.NewUploader(sess), bucket, publicBaseURL), nil
}

// NewS3StoreWithClients is NewS3Store with caller supplied clients
func NewS3StoreWithClients(client s3iface.S3API, uploader s3manageriface.UploaderAPI, bucket, publicBaseURL string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: uploader,
		bucket:   bucket,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *S3Store) Bucket(name string) Bucket {
	return &s3Bucket{store: s, prefix: name}
}

type s3Bucket struct {
	store  *S3Store
	prefix string
}

func (b *s3Bucket) key(p string) string {
	return b.prefix + "/" + p
}

func (b *s3Bucket) Upload(ctx context.Context, objectPath string, body io.Reader, opts UploadOptions) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	key := b.key(p)

	// S3 has no conditional put here; check first.
	if !opts.Upsert {
		exists, err := b.exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return ErrObjectExists
		}
	}

	input := &s3manager.UploadInput{
		Bucket: aws.String(b.store.bucket),
		Key:    aws.String(key),
		Body:   body,
		ACL:    aws.String(s3.ObjectCannedACLPublicRead),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.CacheControl != "" {
		input.CacheControl = aws.String(opts.CacheControl)
	}

	if _, err := b.store.uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("upload object: %w", err)
	}
	return nil
}

func (b *s3Bucket) exists(ctx context.Context, key string) (bool, error) {
	_, err := b.store.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.store.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == "NotFound" {
		return false, nil
	}
	return false, fmt.Errorf("head object: %w", err)
}

func (b *s3Bucket) PublicURL(objectPath string) string {
	return b.store.baseURL + "/" + b.key(strings.TrimPrefix(objectPath, "/"))
}
