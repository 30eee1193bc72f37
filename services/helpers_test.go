package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"

	"github.com/an-furnish/furnish-api/models"
	"github.com/an-furnish/furnish-api/testutil"
)

// setupTestDB opens an in-memory sqlite database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	require.NoError(t, NewGormOrderStore(db, 1, nil).Migrate())
	require.NoError(t, NewGormAdminStore(db).Migrate())
	require.NoError(t, NewGormCatalogStore(db).Migrate())
	return db
}

// setupTestMongo connects to MONGO_TEST_URI and returns a throwaway database,
// skipping the test when no server is configured
func setupTestMongo(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping mongo store tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database("furnish_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

// sequenceCodes returns a generator that hands out codes in order, repeating the last one
func sequenceCodes(codes ...string) (CodeGenerator, func() int) {
	var mu sync.Mutex
	calls := 0
	gen := func(time.Time) string {
		mu.Lock()
		defer mu.Unlock()
		i := calls
		if i >= len(codes) {
			i = len(codes) - 1
		}
		calls++
		return codes[i]
	}
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return calls
	}
	return gen, count
}

// fixedClock returns a clock frozen at t that tests can advance
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(t time.Time) *fixedClock {
	return &fixedClock{now: t}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func validInput() NewOrderInput {
	return NewOrderInput{
		Contact: models.Contact{Name: "Nusrat Jahan", Phone: "+8801711000000", City: "Dhaka"},
		Specifications: models.Specifications{
			Style:     "Scandinavian",
			Materials: []string{"Oak"},
		},
	}
}

// failingStore fails every write, for storage error paths
type failingStore struct {
	OrderStore
	err error
}

func (s failingStore) Insert(context.Context, *models.DesignRequest) error { return s.err }

func (s failingStore) List(context.Context, ListOptions) ([]models.DesignRequest, error) {
	return nil, s.err
}

func (s failingStore) FindByID(context.Context, string) (*models.DesignRequest, error) {
	return nil, s.err
}

func (s failingStore) UpdateStatus(context.Context, string, StatusChange) (*models.DesignRequest, models.OrderStatus, error) {
	return nil, "", s.err
}
