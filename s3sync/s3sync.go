// Package s3sync mirrors the account snapshot to a single S3 object. It is
// an alternative to the git backend for operators who would rather keep the
// remote copy in a bucket than in a repository.
package s3sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/ezhou/ledger"
)

// api is the slice of the S3 client the syncer uses; tests substitute a fake.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Options configures the S3 backend.
type Options struct {
	Bucket      string
	Key         string
	Region      string
	EndpointURL string // empty in prod, set to LocalStack URL in dev
	AccessKeyID string
	SecretKey   string
}

// Syncer implements ledger.Syncer over one S3 object.
type Syncer struct {
	client    api
	bucket    string
	key       string
	localPath string
}

// New builds an S3-backed syncer for the snapshot at localPath.
func New(ctx context.Context, localPath string, opts Options) (*Syncer, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("could not load AWS config: %w", err)
	}

	clientOpts := []func(*s3.Options){}
	if opts.EndpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.EndpointURL)
			o.UsePathStyle = true
		})
	}

	return &Syncer{
		client:    s3.NewFromConfig(awsCfg, clientOpts...),
		bucket:    opts.Bucket,
		key:       opts.Key,
		localPath: localPath,
	}, nil
}

// Push uploads the local snapshot to the bucket.
func (s *Syncer) Push(ctx context.Context, snapshotPath string) (string, error) {
	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		return "", fmt.Errorf("could not read snapshot %q: %w", snapshotPath, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return fmt.Sprintf("pushed to s3://%s/%s", s.bucket, s.key), nil
}

// Pull downloads the remote snapshot over the local file. A missing remote
// object is not an error; there is simply nothing to pull yet.
func (s *Syncer) Pull(ctx context.Context) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			return "no remote snapshot yet", nil
		}
		return "", fmt.Errorf("s3 get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("could not read remote snapshot: %w", err)
	}
	if err := os.WriteFile(s.localPath, data, 0644); err != nil {
		return "", fmt.Errorf("could not write snapshot %q: %w", s.localPath, err)
	}
	return fmt.Sprintf("pulled s3://%s/%s", s.bucket, s.key), nil
}

// Status reports whether the remote object exists and whether the local
// snapshot is newer than it.
func (s *Syncer) Status(ctx context.Context) (ledger.SyncStatus, error) {
	status := ledger.SyncStatus{Remote: fmt.Sprintf("s3://%s/%s", s.bucket, s.key)}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			info, statErr := os.Stat(s.localPath)
			status.Dirty = statErr == nil && info.Size() > 0
			return status, nil
		}
		return ledger.SyncStatus{}, fmt.Errorf("s3 head object: %w", err)
	}
	status.HasRemote = true

	if info, err := os.Stat(s.localPath); err == nil && head.LastModified != nil {
		status.Dirty = info.ModTime().After(*head.LastModified)
	}
	return status, nil
}

// isNotFound matches the service error codes for a missing object.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
