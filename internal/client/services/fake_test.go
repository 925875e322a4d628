package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/client/client"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
)

type fakeClient struct {
	salt    []byte
	saltErr error

	regUser     string
	regSalt     []byte
	regVerifier []byte

	loginUser     string
	loginVerifier []byte
	loginErr      error

	evidenceIndex int
	evidence      string

	uploadURI   string
	uploadURL   string
	downloadURL string
	downloadTxt string

	receiver string
	err      error
}

func (f *fakeClient) Close() error { return nil }
func (f *fakeClient) Register(ctx context.Context, username string, salt []byte, key []byte) error {
	f.regUser, f.regSalt, f.regVerifier = username, salt, key
	return f.err
}
func (f *fakeClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	return f.salt, f.saltErr
}
func (f *fakeClient) Login(ctx context.Context, username string, key []byte) error {
	f.loginUser, f.loginVerifier = username, key
	return f.loginErr
}
func (f *fakeClient) Ping(ctx context.Context) error { return f.err }
func (f *fakeClient) AddHabit(ctx context.Context, description string, extension time.Duration, beneficiary string, deposit uint64) (int, error) {
	return 0, f.err
}
func (f *fakeClient) UpdateEvidence(ctx context.Context, index int, evidence string) error {
	f.evidenceIndex, f.evidence = index, evidence
	return f.err
}
func (f *fakeClient) ApproveHabit(ctx context.Context, user string, index int) error { return f.err }
func (f *fakeClient) UnlockDeposit(ctx context.Context, user string, index int) (string, error) {
	return f.receiver, f.err
}
func (f *fakeClient) HabitsOfUser(ctx context.Context, user string, from, limit int) ([]escrow.Habit, error) {
	return nil, f.err
}
func (f *fakeClient) HabitsOfBeneficiary(ctx context.Context, beneficiary string, from, limit int) (map[string][]escrow.Habit, error) {
	return nil, f.err
}
func (f *fakeClient) Balance(ctx context.Context) (uint64, error)           { return 0, f.err }
func (f *fakeClient) Contract(ctx context.Context) (*client.Contract, error) { return nil, f.err }
func (f *fakeClient) EvidenceUploadURL(ctx context.Context, index int) (string, string, error) {
	return f.uploadURI, f.uploadURL, f.err
}
func (f *fakeClient) EvidenceDownloadURL(ctx context.Context, user string, index int) (string, string, error) {
	return f.downloadURL, f.downloadTxt, f.err
}
