package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/emzola/librarian/config"
	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/internal/clock"
	"github.com/emzola/librarian/internal/jsonlog"
	"github.com/emzola/librarian/repository/memory"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	recipient string
	template  string
	data      interface{}
}

type mailRecorder struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *mailRecorder) Send(recipient, templateFile string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{recipient, templateFile, data})
	return nil
}

func (m *mailRecorder) templates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		names = append(names, s.template)
	}
	return names
}

type objectRecorder struct {
	keys []string
}

func (o *objectRecorder) Put(_ context.Context, key, contentType string, body []byte) (string, error) {
	o.keys = append(o.keys, key)
	return "https://covers.example/" + key, nil
}

type fixture struct {
	svc    *service
	repo   *memory.Store
	clock  *clock.Fixed
	mailer *mailRecorder
	store  *objectRecorder
	wg     *sync.WaitGroup
	staff  *data.User
	alice  *data.User
	bob    *data.User
}

// day is the library date every fixture starts on.
var day = data.Date{Year: 2024, Month: time.March, Day: 10}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	var cfg config.Config
	cfg.Library.TokenTTL = time.Hour
	f := &fixture{
		repo:   memory.New(),
		clock:  clock.NewFixed(time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)),
		mailer: &mailRecorder{},
		store:  &objectRecorder{},
		wg:     &sync.WaitGroup{},
	}
	logger := jsonlog.New(io.Discard, jsonlog.LevelInfo)
	f.svc = New(cfg, f.wg, logger, f.repo, f.clock, f.mailer, f.store)
	f.staff = f.user(t, "Staff Member", "staff@example.com", true)
	f.alice = f.user(t, "Alice Reader", "alice@example.com", false)
	f.bob = f.user(t, "Bob Reader", "bob@example.com", false)
	return f
}

func (f *fixture) user(t *testing.T, name, email string, staff bool) *data.User {
	t.Helper()
	u := &data.User{Name: name, Email: email, IsStaff: staff}
	u.Password.Hash = []byte("not-a-real-hash")
	require.NoError(t, f.repo.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) book(t *testing.T, inventory int) *data.Book {
	t.Helper()
	ctx := context.Background()
	author := &data.Author{FirstName: "Frank", LastName: "Herbert"}
	require.NoError(t, f.repo.CreateAuthor(ctx, author))
	fee, err := data.NewFee("0.50")
	require.NoError(t, err)
	b := &data.Book{Title: "Dune", Authors: []int64{author.ID}, Cover: data.CoverHard, Inventory: inventory, DailyFee: fee}
	require.NoError(t, f.repo.CreateBook(ctx, b))
	return b
}

func (f *fixture) inventory(t *testing.T, bookID int64) int {
	t.Helper()
	b, err := f.repo.GetBook(context.Background(), bookID)
	require.NoError(t, err)
	return b.Inventory
}

func (f *fixture) borrowingCount(t *testing.T) int {
	t.Helper()
	_, metadata, err := f.repo.GetAllBorrowings(context.Background(), data.BorrowingQuery{}, allBorrowings)
	require.NoError(t, err)
	return metadata.TotalRecords
}

var allBorrowings = data.Filters{Page: 1, PageSize: 100, Sort: "id", SortSafeList: []string{"id"}}
