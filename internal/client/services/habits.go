package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/client/client"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
	"github.com/dmitrijs2005/stickyhabits/internal/filex"
	"github.com/dmitrijs2005/stickyhabits/internal/netx"
)

type HabitService interface {
	Add(ctx context.Context, description string, extension time.Duration, beneficiary string, deposit uint64) (int, error)
	SetEvidence(ctx context.Context, index int, text string) error
	UploadEvidence(ctx context.Context, index int, path string) (string, error)
	FetchEvidence(ctx context.Context, user string, index int, dir string) (*FetchedEvidence, error)
	Approve(ctx context.Context, user string, index int) error
	Unlock(ctx context.Context, user string, index int) (string, error)
	Habits(ctx context.Context, user string, from, limit int) ([]escrow.Habit, error)
	Watching(ctx context.Context, beneficiary string, from, limit int) (map[string][]escrow.Habit, error)
	Balance(ctx context.Context) (uint64, error)
	Contract(ctx context.Context) (*client.Contract, error)
}

// FetchedEvidence is either a downloaded file (Path) or inline evidence text.
type FetchedEvidence struct {
	Path string
	Text string
}

type habitService struct {
	client client.Client
	http   *http.Client
}

func NewHabitService(c client.Client, httpClient *http.Client) HabitService {
	return &habitService{client: c, http: httpClient}
}

func (s *habitService) Add(ctx context.Context, description string, extension time.Duration, beneficiary string, deposit uint64) (int, error) {
	return s.client.AddHabit(ctx, description, extension, beneficiary, deposit)
}

func (s *habitService) SetEvidence(ctx context.Context, index int, text string) error {
	return s.client.UpdateEvidence(ctx, index, text)
}

// UploadEvidence stores the file at path in the evidence bucket and records
// its URI as the habit evidence.
func (s *habitService) UploadEvidence(ctx context.Context, index int, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read evidence: %w", err)
	}

	uri, url, err := s.client.EvidenceUploadURL(ctx, index)
	if err != nil {
		return "", err
	}

	if err := netx.UploadToS3PresignedURL(ctx, s.http, url, data); err != nil {
		return "", err
	}

	if err := s.client.UpdateEvidence(ctx, index, uri); err != nil {
		return "", err
	}
	return uri, nil
}

// FetchEvidence downloads stored evidence into dir. Evidence that is plain
// text comes back as Text and nothing is written.
func (s *habitService) FetchEvidence(ctx context.Context, user string, index int, dir string) (*FetchedEvidence, error) {
	url, text, err := s.client.EvidenceDownloadURL(ctx, user, index)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return &FetchedEvidence{Text: text}, nil
	}

	data, err := netx.DownloadFromS3PresignedURL(ctx, s.http, url)
	if err != nil {
		return nil, err
	}

	target, err := filex.EnsureSubdDir(dir)
	if err != nil {
		return nil, err
	}

	path, err := filex.WriteFileIn(target, fmt.Sprintf("%s-%d", user, index), data)
	if err != nil {
		return nil, err
	}
	return &FetchedEvidence{Path: path}, nil
}

func (s *habitService) Approve(ctx context.Context, user string, index int) error {
	return s.client.ApproveHabit(ctx, user, index)
}

func (s *habitService) Unlock(ctx context.Context, user string, index int) (string, error) {
	return s.client.UnlockDeposit(ctx, user, index)
}

func (s *habitService) Habits(ctx context.Context, user string, from, limit int) ([]escrow.Habit, error) {
	return s.client.HabitsOfUser(ctx, user, from, limit)
}

func (s *habitService) Watching(ctx context.Context, beneficiary string, from, limit int) (map[string][]escrow.Habit, error) {
	return s.client.HabitsOfBeneficiary(ctx, beneficiary, from, limit)
}

func (s *habitService) Balance(ctx context.Context) (uint64, error) {
	return s.client.Balance(ctx)
}

func (s *habitService) Contract(ctx context.Context) (*client.Contract, error) {
	return s.client.Contract(ctx)
}
