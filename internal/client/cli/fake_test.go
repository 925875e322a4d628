package cli

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/client/client"
	"github.com/dmitrijs2005/stickyhabits/internal/client/config"
	"github.com/dmitrijs2005/stickyhabits/internal/client/services"
	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
)

type fakeAuth struct {
	user     string
	password string
	err      error
	pingErr  error
}

func (f *fakeAuth) Login(_ context.Context, username string, password []byte) error {
	f.user, f.password = username, string(password)
	return f.err
}

func (f *fakeAuth) Register(_ context.Context, username string, password []byte) error {
	f.user, f.password = username, string(password)
	return f.err
}

func (f *fakeAuth) Ping(context.Context) error  { return f.pingErr }
func (f *fakeAuth) Close(context.Context) error { return nil }

type addCall struct {
	description string
	extension   time.Duration
	beneficiary string
	deposit     uint64
}

type refCall struct {
	user  string
	index int
}

type pageCall struct {
	who         string
	from, limit int
}

type fakeHabits struct {
	err error

	added    *addCall
	evidence map[int]string
	uploaded map[int]string
	fetched  *refCall
	fetchDir string
	approved *refCall
	unlocked *refCall
	listed   *pageCall
	watched  *pageCall

	index    int
	receiver string
	habits   []escrow.Habit
	byUser   map[string][]escrow.Habit
	fetch    *services.FetchedEvidence
	balance  uint64
	contract *client.Contract
}

func (f *fakeHabits) Add(_ context.Context, description string, extension time.Duration, beneficiary string, deposit uint64) (int, error) {
	f.added = &addCall{description, extension, beneficiary, deposit}
	return f.index, f.err
}

func (f *fakeHabits) SetEvidence(_ context.Context, index int, text string) error {
	if f.evidence == nil {
		f.evidence = map[int]string{}
	}
	f.evidence[index] = text
	return f.err
}

func (f *fakeHabits) UploadEvidence(_ context.Context, index int, path string) (string, error) {
	if f.uploaded == nil {
		f.uploaded = map[int]string{}
	}
	f.uploaded[index] = path
	return "s3://evidence/obj", f.err
}

func (f *fakeHabits) FetchEvidence(_ context.Context, user string, index int, dir string) (*services.FetchedEvidence, error) {
	f.fetched = &refCall{user, index}
	f.fetchDir = dir
	return f.fetch, f.err
}

func (f *fakeHabits) Approve(_ context.Context, user string, index int) error {
	f.approved = &refCall{user, index}
	return f.err
}

func (f *fakeHabits) Unlock(_ context.Context, user string, index int) (string, error) {
	f.unlocked = &refCall{user, index}
	return f.receiver, f.err
}

func (f *fakeHabits) Habits(_ context.Context, user string, from, limit int) ([]escrow.Habit, error) {
	f.listed = &pageCall{user, from, limit}
	return f.habits, f.err
}

func (f *fakeHabits) Watching(_ context.Context, beneficiary string, from, limit int) (map[string][]escrow.Habit, error) {
	f.watched = &pageCall{beneficiary, from, limit}
	return f.byUser, f.err
}

func (f *fakeHabits) Balance(context.Context) (uint64, error) { return f.balance, f.err }

func (f *fakeHabits) Contract(context.Context) (*client.Contract, error) {
	return f.contract, f.err
}

// newTestApp builds an App reading input and writing to the returned buffer.
func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer, *fakeAuth, *fakeHabits) {
	t.Helper()

	out := &bytes.Buffer{}
	auth := &fakeAuth{}
	habits := &fakeHabits{}
	a := &App{
		config:       &config.Config{DownloadDir: "downloads", OnlineCheckInterval: time.Hour},
		authService:  auth,
		habitService: habits,
		reader:       rdr(input),
		out:          out,
	}
	return a, out, auth, habits
}

// stubPassword makes getPassword return pw for the duration of the test.
func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	t.Cleanup(func() { getPassword = old })
	getPassword = func(io.Writer) ([]byte, error) {
		return []byte(pw), nil
	}
}
