package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/patrimonio/internal/apimodel"
	"github.com/dmitrijs2005/patrimonio/internal/common"
	sc "github.com/dmitrijs2005/patrimonio/internal/server/config"
	"github.com/dmitrijs2005/patrimonio/internal/server/metrics"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ExportService writes a CSV of the user's entries to object storage and
// hands back a presigned download URL.
type ExportService struct {
	entries *EntryService
	config  *sc.Config
	now     func() time.Time
}

func NewExportService(entries *EntryService, cfg *sc.Config) *ExportService {
	return &ExportService{entries: entries, config: cfg, now: time.Now}
}

// GetExportStorageKey builds a unique object key under the user's prefix.
func GetExportStorageKey(userID string, d time.Time) string {
	return fmt.Sprintf("exports/%s/%04d/%02d/%02d/%v.csv", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// Export uploads the CSV and returns its key and a presigned GET URL.
func (s *ExportService) Export(ctx context.Context, user *models.User) (string, string, error) {
	if !s.config.ExportsEnabled() {
		return "", "", common.ErrExportsDisabled
	}
	if user == nil {
		return "", "", common.ErrorUnauthorized
	}

	profits, err := s.entries.List(ctx, user, models.KindProfit)
	if err != nil {
		return "", "", err
	}
	expenses, err := s.entries.List(ctx, user, models.KindExpense)
	if err != nil {
		return "", "", err
	}

	body, err := EntriesCSV(append(profits, expenses...))
	if err != nil {
		return "", "", err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		return "", "", err
	}

	now := s.now()
	bucket := s.config.S3Bucket
	key := GetExportStorageKey(user.ID, now)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:             &bucket,
		Key:                &key,
		Body:               bytes.NewReader(body),
		ContentType:        aws.String("text/csv"),
		ContentDisposition: aws.String(`attachment; filename="` + exportFilename(now) + `"`),
	})
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		return "", "", fmt.Errorf("upload export: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.ExportURLTTL))
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		return "", "", fmt.Errorf("presign export: %w", err)
	}

	metrics.ExportsTotal.WithLabelValues("ok").Inc()
	return key, req.URL, nil
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		// MinIO and most self-hosted stores want path-style URLs
		o.UsePathStyle = true
	}), nil
}

// EntriesCSV renders entries as CSV with a header row.
func EntriesCSV(entries []*models.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{{"date", "kind", "category", "description", "amount"}}
	for _, e := range entries {
		rows = append(rows, []string{
			e.Date.Format(apimodel.DateLayout),
			string(e.Kind),
			e.CategoryName,
			e.Description,
			apimodel.Money(e.AmountCents).String(),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// exportFilename is the suggested download name.
func exportFilename(d time.Time) string {
	return "patrimonio-" + d.Format(apimodel.DateLayout) + ".csv"
}
