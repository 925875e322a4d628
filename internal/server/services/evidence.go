package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/stickyhabits/internal/common"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/dmitrijs2005/stickyhabits/internal/server/config"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

// Seams for tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// HabitReader is the part of the engine evidence storage needs.
type HabitReader interface {
	Habit(ctx context.Context, user string, index int) (*escrow.Habit, error)
}

// EvidenceUpload is where a client should PUT its evidence file, and the
// URI to record with UpdateEvidence afterwards.
type EvidenceUpload struct {
	URI string
	URL string
}

// EvidenceLink is either a presigned download URL (stored evidence) or the
// evidence text itself.
type EvidenceLink struct {
	URL  string
	Text string
}

// EvidenceService hands out presigned URLs for evidence kept in the
// evidence bucket.
type EvidenceService struct {
	habits HabitReader
	config *config.Config
}

func NewEvidenceService(habits HabitReader, cfg *config.Config) *EvidenceService {
	return &EvidenceService{habits: habits, config: cfg}
}

func (s *EvidenceService) bucketPrefix() string {
	return common.EvidenceScheme + s.config.S3Bucket + "/"
}

// storageKey places evidence under the owning habit. The random suffix lets
// a user replace evidence without overwriting the earlier object.
func storageKey(user string, index int) string {
	return fmt.Sprintf("habits/%s/%d/%s", user, index, uuid.NewString())
}

func (s *EvidenceService) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})
	return newS3PresignClient(client), nil
}

// UploadURL presigns a PUT for new evidence of the caller's own habit.
func (s *EvidenceService) UploadURL(ctx context.Context, caller string, index int) (*EvidenceUpload, error) {
	h, err := s.habits.Habit(ctx, caller, index)
	if err != nil {
		return nil, err
	}
	if h.Settled() {
		return nil, escrow.ErrHabitSettled
	}

	pc, err := s.presignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := storageKey(caller, index)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &EvidenceUpload{URI: s.bucketPrefix() + key, URL: req.URL}, nil
}

// DownloadURL lets the user or the beneficiary of a habit read its
// evidence.
func (s *EvidenceService) DownloadURL(ctx context.Context, caller, user string, index int) (*EvidenceLink, error) {
	h, err := s.habits.Habit(ctx, user, index)
	if err != nil {
		return nil, err
	}
	if caller != user && caller != h.Beneficiary {
		return nil, escrow.ErrPermissionDenied
	}

	key, ok := strings.CutPrefix(h.Evidence, s.bucketPrefix())
	if !ok || key == "" {
		return &EvidenceLink{Text: h.Evidence}, nil
	}

	pc, err := s.presignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}

	return &EvidenceLink{URL: req.URL}, nil
}
