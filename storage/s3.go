package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/ruteri/legal-document-registry/interfaces"
)

// S3Backend archives files in Amazon S3 or a compatible service, keyed by
// the SHA-256 of their content.
type S3Backend struct {
	client         *s3.S3
	bucketName     string
	prefix         string
	log            *slog.Logger
	locationURI    string
	hasWriteAccess bool
}

// NewS3Backend creates a new S3 storage backend. Uploads require accessKey
// and secretKey; without them Upload fails with interfaces.ErrConfig.
func NewS3Backend(bucketName, prefix, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3Backend, error) {
	// Secrets never appear in the location URI.
	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, prefix, region)
	if accessKey != "" {
		uri = fmt.Sprintf("s3://%s:***@%s/%s?region=%s", accessKey, bucketName, prefix, region)
	}
	if endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", endpoint)
	}

	cfg := &aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	hasWriteAccess := accessKey != "" && secretKey != ""
	if hasWriteAccess {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, interfaces.ConfigErrorf("failed to create AWS session: %v", err)
	}

	return &S3Backend{
		client:         s3.New(sess),
		bucketName:     bucketName,
		prefix:         strings.Trim(prefix, "/"),
		log:            log,
		locationURI:    uri,
		hasWriteAccess: hasWriteAccess,
	}, nil
}

// Upload stores the file and returns the hex SHA-256 of its content.
func (b *S3Backend) Upload(ctx context.Context, file interfaces.FileUpload) (string, error) {
	if !b.hasWriteAccess {
		return "", interfaces.ConfigErrorf("s3 credentials missing for bucket %s", b.bucketName)
	}

	hash := sha256.Sum256(file.Data)
	contentHash := hex.EncodeToString(hash[:])
	key := b.objectKey(contentHash)

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(file.Data),
		Metadata: map[string]*string{
			"filename": aws.String(file.Name),
		},
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}

	if _, err := b.client.PutObjectWithContext(ctx, input); err != nil {
		b.log.Warn("Failed to upload object to S3",
			slog.String("bucket", b.bucketName),
			slog.String("key", key),
			"err", err)
		return "", &interfaces.UploadError{StatusCode: requestFailureStatus(err), Err: err}
	}

	b.log.Debug("Stored file in S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key))

	return contentHash, nil
}

// Name returns a unique identifier for this storage backend.
func (b *S3Backend) Name() string {
	return fmt.Sprintf("s3-%s", b.bucketName)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *S3Backend) LocationURI() string {
	return b.locationURI
}

func (b *S3Backend) objectKey(contentHash string) string {
	if b.prefix == "" {
		return contentHash
	}
	return path.Join(b.prefix, contentHash)
}

func requestFailureStatus(err error) int {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode()
	}
	return 0
}
