package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sujalbistaa/drumfeed/internal/auth"
	"github.com/sujalbistaa/drumfeed/internal/db"
	"github.com/sujalbistaa/drumfeed/internal/logging"
	"github.com/sujalbistaa/drumfeed/internal/models"
)

type recordedEvent struct {
	Type string
	Data any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(eventType string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Data: data})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	gdb    *gorm.DB
	repos  db.Repos
	posts  *PostService
	auth   *AuthService
	events *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := logging.Discard()

	gdb, err := db.Init(ctx, "sqlite://:memory:", log)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	repos := db.NewRepos(gdb)
	events := &recordingPublisher{}
	return &testEnv{
		gdb:    gdb,
		repos:  repos,
		events: events,
		posts:  NewPostService(repos, events, log),
		auth: NewAuthService(repos.Users(), auth.NewHasher(bcrypt.MinCost),
			auth.NewTokenManager("test-secret", time.Hour), log),
	}
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Username: name, PasswordHash: "x"}
	require.NoError(t, e.repos.Users().Create(context.Background(), u))
	return u
}

func (e *testEnv) post(t *testing.T, owner *models.User, name, album string) *models.Post {
	t.Helper()
	p, err := e.posts.Create(context.Background(), owner.ID, models.PostInput{DrummerName: name, Album: album})
	require.NoError(t, err)
	return p
}

// backdate pins a row's creation time so ordering tests do not depend on the clock.
func (e *testEnv) backdate(t *testing.T, model any, id string, at time.Time) {
	t.Helper()
	require.NoError(t, e.gdb.Model(model).Where("id = ?", id).UpdateColumn("created_at", at).Error)
}

func str(s string) *string { return &s }
