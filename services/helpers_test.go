package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"socialgraph/db"
	"socialgraph/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB - отдельная SQLite в памяти на каждый тест
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), "error")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return database
}

type testEnv struct {
	db        *gorm.DB
	profiles  *ProfileService
	friends   *FriendService
	messages  *MessageService
	publisher *recordingPublisher
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	database := setupTestDB(t)
	publisher := &recordingPublisher{}
	profiles := NewProfileService(database, nil)
	return &testEnv{
		db:        database,
		profiles:  profiles,
		friends:   NewFriendService(database, profiles, publisher),
		messages:  NewMessageService(database, publisher),
		publisher: publisher,
	}
}

// createProfiles создает n профилей со случайными именами
func (e *testEnv) createProfiles(t *testing.T, n int) []models.Profile {
	t.Helper()
	profiles := make([]models.Profile, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s_%d", gofakeit.Username(), i)
		profile, err := e.profiles.Register(context.Background(), username, "")
		require.NoError(t, err)
		profiles = append(profiles, *profile)
	}
	return profiles
}

func (e *testEnv) makeFriends(t *testing.T, a, b models.Profile) {
	t.Helper()
	ctx := context.Background()
	_, err := e.friends.SendRequest(ctx, a.ID, b.Username)
	require.NoError(t, err)
	_, err = e.friends.AcceptRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)
}

func (e *testEnv) status(t *testing.T, me, other int64) models.RelationshipStatus {
	t.Helper()
	resp, err := e.friends.GetStatus(context.Background(), me, other)
	require.NoError(t, err)
	return resp.Status
}

// assertGraphInvariants: ребра всегда парные, а заявка и дружба для одной
// пары не существуют одновременно
func assertGraphInvariants(t *testing.T, database *gorm.DB) {
	t.Helper()

	var edges []models.FriendshipEdge
	require.NoError(t, database.Find(&edges).Error)
	edgeSet := make(map[[2]int64]bool, len(edges))
	for _, e := range edges {
		edgeSet[[2]int64{e.OwnerID, e.PeerID}] = true
	}
	for _, e := range edges {
		assert.True(t, edgeSet[[2]int64{e.PeerID, e.OwnerID}], "edge %d->%d has no reverse edge", e.OwnerID, e.PeerID)
		assert.NotEqual(t, e.OwnerID, e.PeerID, "self edge")
	}

	var requests []models.FriendRequest
	require.NoError(t, database.Where("accepted = ?", false).Find(&requests).Error)
	pending := make(map[[2]int64]bool, len(requests))
	for _, r := range requests {
		pending[[2]int64{r.FromID, r.ToID}] = true
	}
	for _, r := range requests {
		assert.False(t, edgeSet[[2]int64{r.FromID, r.ToID}], "pending request %d->%d between friends", r.FromID, r.ToID)
		assert.False(t, pending[[2]int64{r.ToID, r.FromID}], "crossing pending requests %d<->%d", r.FromID, r.ToID)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}
