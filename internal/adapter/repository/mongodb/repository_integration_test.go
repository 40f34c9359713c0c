package mongodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	listingdomain "github.com/estately/estate-service/internal/listing/domain"
	"github.com/estately/estate-service/internal/platform/logger"
	reviewdomain "github.com/estately/estate-service/internal/review/domain"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The container-backed tests exercise the aggregation pipelines, index
// behavior and session transactions against a real MongoDB. They run only
// when INTEGRATION_TESTS is set, since they need a local Docker daemon.
//
// mongod is started with --replSet and initiated as a single-node replica
// set: transactions refuse to run on a standalone server.

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration tests: INTEGRATION_TESTS not set")
	}

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)
	require.NoError(t, pool.Client.Ping())

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "5.0",
		Cmd:        []string{"--replSet", "rs0"},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	uri := fmt.Sprintf("mongodb://%s/?directConnection=true", resource.GetHostPort("27017/tcp"))
	var client *mongo.Client
	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		if err := c.Ping(ctx, nil); err != nil {
			_ = c.Disconnect(ctx)
			return err
		}
		initiate := bson.D{{Key: "replSetInitiate", Value: bson.M{
			"_id":     "rs0",
			"members": []bson.M{{"_id": 0, "host": "localhost:27017"}},
		}}}
		if err := c.Database("admin").RunCommand(ctx, initiate).Err(); err != nil {
			var cmdErr mongo.CommandError
			if !errors.As(err, &cmdErr) || cmdErr.Name != "AlreadyInitialized" {
				_ = c.Disconnect(ctx)
				return err
			}
		}
		// The node accepts writes only once it has elected itself primary.
		if _, err := c.Database("estate_service_test").Collection("healthcheck").InsertOne(ctx, bson.M{"ok": true}); err != nil {
			_ = c.Disconnect(ctx)
			return err
		}
		client = c
		return nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return client.Database("estate_service_test")
}

func TestReviewRepository_ReputationSummary(t *testing.T) {
	db := setupMongo(t)
	repo, err := NewReviewRepository(db, logger.NewLogger(), false)
	require.NoError(t, err)
	ctx := context.Background()

	// No reviews yet: explicit zero summary, not an error.
	summary, err := repo.GetReputationSummary(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, summary.AverageRating)
	assert.Zero(t, summary.TotalReviews)

	for _, rating := range []int32{3, 5} {
		review, err := reviewdomain.NewReview("reviewer", "target", "ok", rating, "")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, review))
	}

	summary, err = repo.GetReputationSummary(ctx, "target")
	require.NoError(t, err)
	assert.Equal(t, float64(4), summary.AverageRating)
	assert.Equal(t, int64(2), summary.TotalReviews)
}

func TestReviewRepository_UniquePairIndex(t *testing.T) {
	db := setupMongo(t)
	repo, err := NewReviewRepository(db, logger.NewLogger(), true)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := reviewdomain.NewReview("u1", "u2", "first", 5, "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := reviewdomain.NewReview("u1", "u2", "second", 1, "")
	require.NoError(t, err)
	err = repo.Create(ctx, second)
	assert.ErrorIs(t, err, reviewdomain.ErrReviewAlreadyExists)
}

func TestSavedListingRepository_ExistsAndCounts(t *testing.T) {
	db := setupMongo(t)
	repo, err := NewSavedListingRepository(db, logger.NewLogger())
	require.NoError(t, err)
	ctx := context.Background()

	saved := db.Collection(savedCollectionName)
	for _, pair := range []savedListingDocument{
		{UserID: "u1", ListingID: "l1", CreatedAt: time.Now()},
		{UserID: "u2", ListingID: "l1", CreatedAt: time.Now()},
		{UserID: "u1", ListingID: "l2", CreatedAt: time.Now()},
	} {
		_, err := saved.InsertOne(ctx, pair)
		require.NoError(t, err)
	}

	exists, err := repo.Exists(ctx, "u1", "l1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "u2", "l2")
	require.NoError(t, err)
	assert.False(t, exists)

	counts, err := repo.CountByListingIDs(ctx, []string{"l1", "l2", "l3"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["l1"])
	assert.Equal(t, int64(1), counts["l2"])
	assert.Zero(t, counts["l3"])
}

func TestListingRepository_AtomicViewIncrement(t *testing.T) {
	db := setupMongo(t)
	client := db.Client()
	repo, err := NewListingRepository(client, db, logger.NewLogger())
	require.NoError(t, err)
	ctx := context.Background()

	doc, err := fromDomainListing(&listingdomain.Listing{
		ID:        primitive.NewObjectID().Hex(),
		OwnerID:   "u1",
		Title:     "Loft downtown",
		City:      "Almaty",
		Type:      listingdomain.TypeRent,
		Price:     1200,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	_, err = db.Collection(listingCollectionName).InsertOne(ctx, doc)
	require.NoError(t, err)
	id := doc.ID.Hex()

	first, err := repo.FindByIDAndIncrementViews(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Views)

	second, err := repo.FindByIDAndIncrementViews(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Views)

	_, err = repo.FindByIDAndIncrementViews(ctx, "64b0c8f0a2e5c3d4e5f6a7b8")
	assert.ErrorIs(t, err, listingdomain.ErrListingNotFound)
}

func TestListingRepository_ConcurrentViewIncrements(t *testing.T) {
	db := setupMongo(t)
	repo, err := NewListingRepository(db.Client(), db, logger.NewLogger())
	require.NoError(t, err)
	ctx := context.Background()

	doc, err := fromDomainListing(&listingdomain.Listing{
		ID:        primitive.NewObjectID().Hex(),
		OwnerID:   "u1",
		Title:     "Studio near the park",
		City:      "Astana",
		Type:      listingdomain.TypeRent,
		Price:     900,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	_, err = db.Collection(listingCollectionName).InsertOne(ctx, doc)
	require.NoError(t, err)
	id := doc.ID.Hex()

	const fetchers = 25
	errs := make(chan error, fetchers)
	var wg sync.WaitGroup
	for i := 0; i < fetchers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.FindByIDAndIncrementViews(ctx, id); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Every fetch is counted: no increment lost to a concurrent one.
	final, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(fetchers), final.Views)
}

func TestListingRepository_DeleteRemovesDetail(t *testing.T) {
	db := setupMongo(t)
	repo, err := NewListingRepository(db.Client(), db, logger.NewLogger())
	require.NoError(t, err)
	ctx := context.Background()

	listing := &listingdomain.Listing{
		OwnerID: "u1",
		Title:   "House with a garden",
		City:    "Almaty",
		Type:    listingdomain.TypeSale,
		Price:   250000,
	}
	detail := &listingdomain.ListingDetail{Description: "Two floors", Size: 140}
	require.NoError(t, repo.CreateWithDetail(ctx, listing, detail))

	details := db.Collection(detailCollectionName)
	count, err := details.CountDocuments(ctx, bson.M{"listing_id": listing.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	require.NoError(t, repo.DeleteWithDetail(ctx, listing.ID))

	count, err = details.CountDocuments(ctx, bson.M{"listing_id": listing.ID})
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.FindByID(ctx, listing.ID)
	assert.ErrorIs(t, err, listingdomain.ErrListingNotFound)

	err = repo.DeleteWithDetail(ctx, listing.ID)
	assert.ErrorIs(t, err, listingdomain.ErrListingNotFound)
}

func TestListingRepository_CreateRollsBackOnDetailConflict(t *testing.T) {
	db := setupMongo(t)
	repo, err := NewListingRepository(db.Client(), db, logger.NewLogger())
	require.NoError(t, err)
	ctx := context.Background()

	// Occupy the unique listing_id slot in listing_details, then create a
	// listing with that exact ID. The listing insert succeeds inside the
	// transaction, the detail insert hits the index, and the abort must
	// take the listing row with it.
	oid := primitive.NewObjectID()
	_, err = db.Collection(detailCollectionName).InsertOne(ctx, &listingDetailDocument{
		ID:          primitive.NewObjectID(),
		ListingID:   oid.Hex(),
		Description: "already here",
	})
	require.NoError(t, err)

	listing := &listingdomain.Listing{
		ID:      oid.Hex(),
		OwnerID: "u1",
		Title:   "Never observable",
		City:    "Almaty",
		Type:    listingdomain.TypeRent,
		Price:   1000,
	}
	err = repo.CreateWithDetail(ctx, listing, &listingdomain.ListingDetail{Description: "new"})
	require.Error(t, err)

	count, err := db.Collection(listingCollectionName).CountDocuments(ctx, bson.M{"_id": oid})
	require.NoError(t, err)
	assert.Zero(t, count)
}
