package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/novavoice/nova-voice/pkg/logging"
)

// S3API is the subset of the S3 client used by S3Archiver.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ManifestEntry is one line of the monthly export manifest.
type ManifestEntry struct {
	Key        string   `json:"key"`
	Rows       int      `json:"rows"`
	Since      string   `json:"since,omitempty"`
	RiskLevels []string `json:"risk_levels,omitempty"`
	ArchivedAt string   `json:"archived_at"`
}

// S3Archiver stores exported workbooks under exports/ and keeps a JSONL
// manifest per month.
type S3Archiver struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewS3Archiver creates an archiver. If bucket is empty, Enabled reports false.
func NewS3Archiver(s3Client S3API, bucket string, logger *logging.Logger) *S3Archiver {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Archiver{bucket: bucket, s3Client: s3Client, logger: logger}
}

func (a *S3Archiver) Enabled() bool {
	return a != nil && a.bucket != "" && a.s3Client != nil
}

// ExportKey is the object key for a workbook archived at ts.
func ExportKey(ts time.Time) string {
	return fmt.Sprintf("exports/assessments-%s.xlsx", ts.UTC().Format("20060102T150405Z"))
}

// Archive uploads data and records it in the manifest. A manifest failure is
// logged; the workbook is already stored.
func (a *S3Archiver) Archive(ctx context.Context, data []byte, entry ManifestEntry, now time.Time) (string, error) {
	if !a.Enabled() {
		return "", ErrArchiveDisabled
	}
	key := ExportKey(now)
	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentTypeXLSX),
	})
	if err != nil {
		return "", fmt.Errorf("reports: s3 put %s: %w", key, err)
	}
	a.logger.Info("archived assessment export", "s3_key", key, "rows", entry.Rows)

	entry.Key = key
	entry.ArchivedAt = now.UTC().Format(time.RFC3339)
	if err := a.appendManifest(ctx, entry, now); err != nil {
		a.logger.Warn("failed to append export manifest", "error", err, "s3_key", key)
	}
	return key, nil
}

// appendManifest does a read-modify-write since S3 has no append.
func (a *S3Archiver) appendManifest(ctx context.Context, entry ManifestEntry, now time.Time) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("reports: marshal manifest entry: %w", err)
	}
	manifestKey := fmt.Sprintf("exports/manifests/%d-%02d.jsonl", now.UTC().Year(), now.UTC().Month())

	var existing []byte
	getResp, err := a.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(manifestKey),
	})
	if err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("reports: read manifest: %w", err)
		}
	} else {
		existing, _ = io.ReadAll(getResp.Body)
		getResp.Body.Close()
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(manifestKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("reports: s3 put manifest: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "404") || strings.Contains(msg, "not found")
}
