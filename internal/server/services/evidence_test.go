package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHabits map[string][]escrow.Habit

func (f fakeHabits) Habit(ctx context.Context, user string, index int) (*escrow.Habit, error) {
	list := f[user]
	if len(list) == 0 {
		return nil, escrow.ErrNoHabits
	}
	if index < 0 || index >= len(list) {
		return nil, escrow.ErrIndexOutOfRange
	}
	h := list[index]
	return &h, nil
}

// stubPresign replaces the AWS seams for the duration of the test and
// records the requested object keys.
func stubPresign(t *testing.T) (puts, gets *[]string) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	puts, gets = &[]string{}, &[]string{}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		*puts = append(*puts, *in.Bucket+"/"+*in.Key)
		return &v4.PresignedHTTPRequest{URL: "https://s3.local/put/" + *in.Key, Method: "PUT"}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		*gets = append(*gets, *in.Bucket+"/"+*in.Key)
		return &v4.PresignedHTTPRequest{URL: "https://s3.local/get/" + *in.Key, Method: "GET"}, nil
	}
	return puts, gets
}

func TestEvidenceService_UploadURL(t *testing.T) {
	puts, _ := stubPresign(t)
	habits := fakeHabits{"alice.near": {
		{Beneficiary: "bob.near", Deposit: 10},
		{Beneficiary: "bob.near", Deposit: 0},
	}}
	s := NewEvidenceService(habits, testConfig())

	up, err := s.UploadURL(context.Background(), "alice.near", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.URI, "s3://evidence/habits/alice.near/0/"), up.URI)
	assert.True(t, strings.HasPrefix(up.URL, "https://s3.local/put/habits/alice.near/0/"), up.URL)
	require.Len(t, *puts, 1)
	assert.Equal(t, strings.TrimPrefix(up.URI, "s3://"), (*puts)[0])

	_, err = s.UploadURL(context.Background(), "alice.near", 1)
	assert.ErrorIs(t, err, escrow.ErrHabitSettled)

	_, err = s.UploadURL(context.Background(), "alice.near", 2)
	assert.ErrorIs(t, err, escrow.ErrIndexOutOfRange)

	_, err = s.UploadURL(context.Background(), "bob.near", 0)
	assert.ErrorIs(t, err, escrow.ErrNoHabits)
}

func TestEvidenceService_DownloadURL(t *testing.T) {
	_, gets := stubPresign(t)
	habits := fakeHabits{"alice.near": {
		{Beneficiary: "bob.near", Deposit: 10, Evidence: "s3://evidence/habits/alice.near/0/abc"},
		{Beneficiary: "bob.near", Deposit: 10, Evidence: "ran 5k, see strava"},
		{Beneficiary: "bob.near", Deposit: 10, Evidence: "s3://other-bucket/x"},
	}}
	s := NewEvidenceService(habits, testConfig())
	ctx := context.Background()

	link, err := s.DownloadURL(ctx, "bob.near", "alice.near", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/get/habits/alice.near/0/abc", link.URL)
	assert.Empty(t, link.Text)
	assert.Equal(t, []string{"evidence/habits/alice.near/0/abc"}, *gets)

	link, err = s.DownloadURL(ctx, "alice.near", "alice.near", 1)
	require.NoError(t, err)
	assert.Empty(t, link.URL)
	assert.Equal(t, "ran 5k, see strava", link.Text)

	link, err = s.DownloadURL(ctx, "alice.near", "alice.near", 2)
	require.NoError(t, err)
	assert.Equal(t, "s3://other-bucket/x", link.Text)

	_, err = s.DownloadURL(ctx, "carol.near", "alice.near", 0)
	assert.ErrorIs(t, err, escrow.ErrPermissionDenied)
}

func TestEvidenceService_PresignClientOptions(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
	})
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	var region string
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		region = lo.Region
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	s := NewEvidenceService(fakeHabits{}, testConfig())
	pc, err := s.presignClient(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, pc)
	assert.Equal(t, "us-east-1", region)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no credentials")
	}
	_, err = s.presignClient(context.Background())
	assert.Error(t, err)
}
