package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/oilledger/internal/apperror"
	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/repository/store"
)

func newTestRepository(t *testing.T) (*Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := NewRepository(dir, nil)
	require.NoError(t, err)
	return repo, dir
}

func TestInsertFindUpdate(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	product := models.Product{ID: 7, Name: "Palmstar 1L Box", Category: "Palm", UnitType: models.UnitLitre, ConversionFactor: 0.9, IsActive: true}
	require.NoError(t, repo.Insert(ctx, store.Products, product.ID, product))

	var got models.Product
	require.NoError(t, repo.FindOne(ctx, store.Products, store.ByID(int64(7)), &got))
	assert.Equal(t, product, got)

	require.NoError(t, repo.Update(ctx, store.Products, int64(7), store.Fields{"isActive": false}))

	var all []models.Product
	require.NoError(t, repo.Find(ctx, store.Products, store.Filter{}, &all))
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)
	assert.Equal(t, "Palmstar 1L Box", all[0].Name)
}

func TestFindOnMissingFileIsEmpty(t *testing.T) {
	repo, _ := newTestRepository(t)

	var routes []models.Route
	require.NoError(t, repo.Find(context.Background(), store.Routes, store.Filter{}, &routes))
	assert.NotNil(t, routes)
	assert.Empty(t, routes)
}

func TestFindOneNotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	var route models.Route
	err := repo.FindOne(context.Background(), store.Routes, store.Filter{"name": "ECR"}, &route)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestInsertDuplicate(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	route := models.Route{ID: 1, Name: "ECR", IsActive: true}
	require.NoError(t, repo.Insert(ctx, store.Routes, route.ID, route))

	err := repo.Insert(ctx, store.Routes, route.ID, route)
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestUpdateMissingRecord(t *testing.T) {
	repo, _ := newTestRepository(t)

	err := repo.Update(context.Background(), store.Vehicles, int64(42), store.Fields{"isActive": false})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestFilterMatchesTypedValues(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	for i, date := range []string{"2024-01-01", "2024-01-01", "2024-01-02"} {
		entry := models.DailyStockEntry{
			ID:           string(rune('a' + i)),
			ProductID:    int64(i + 1),
			Date:         date,
			VehicleSales: map[string]int{},
		}
		require.NoError(t, repo.Insert(ctx, store.StockLog, entry.ID, entry))
	}

	var day []models.DailyStockEntry
	require.NoError(t, repo.Find(ctx, store.StockLog, store.Filter{"date": "2024-01-01"}, &day))
	assert.Len(t, day, 2)

	var one models.DailyStockEntry
	require.NoError(t, repo.FindOne(ctx, store.StockLog, store.Filter{"productId": int64(2), "date": "2024-01-01"}, &one))
	assert.Equal(t, "b", one.ID)
}

func TestDatedEntitiesArePartitionedByDate(t *testing.T) {
	repo, dir := newTestRepository(t)
	ctx := context.Background()

	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, date := range []string{"2024-01-01", "2024-01-02"} {
		entry := models.DispatchEntry{
			ID:            string(rune('x' + i)),
			Date:          date,
			RouteName:     "ECR",
			VehicleNumber: "2259",
			CreatedAt:     created,
			Lines:         []models.DispatchLine{{ProductID: 1, Quantity: 5}},
		}
		require.NoError(t, repo.Insert(ctx, store.DispatchLog, entry.ID, entry))
	}

	data, err := os.ReadFile(filepath.Join(dir, "dispatchLog.json"))
	require.NoError(t, err)

	var byDate map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &byDate))
	require.Len(t, byDate, 2)
	require.Len(t, byDate["2024-01-01"], 1)
	assert.Equal(t, "x", byDate["2024-01-01"][0]["id"])
	assert.Equal(t, "y", byDate["2024-01-02"][0]["id"])

	var entries []models.DispatchEntry
	require.NoError(t, repo.Find(ctx, store.DispatchLog, store.Filter{"date": "2024-01-02"}, &entries))
	require.Len(t, entries, 1)
	assert.True(t, created.Equal(entries[0].CreatedAt))
	assert.Equal(t, []models.DispatchLine{{ProductID: 1, Quantity: 5}}, entries[0].Lines)
}

func TestPlainEntitiesAreArrays(t *testing.T) {
	repo, dir := newTestRepository(t)

	require.NoError(t, repo.Insert(context.Background(), store.Vehicles, int64(1), models.Vehicle{ID: 1, Number: "2259", IsActive: true}))

	data, err := os.ReadFile(filepath.Join(dir, "vehicles.json"))
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "2259", rows[0]["number"])
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := models.Vehicle{ID: int64(i + 1), Number: string(rune('A' + i)), IsActive: true}
			assert.NoError(t, repo.Insert(ctx, store.Vehicles, v.ID, v))
		}(i)
	}
	wg.Wait()

	var vehicles []models.Vehicle
	require.NoError(t, repo.Find(ctx, store.Vehicles, store.Filter{}, &vehicles))
	assert.Len(t, vehicles, writers)
}

func TestNewRepositoryRequiresDir(t *testing.T) {
	_, err := NewRepository("", nil)
	require.Error(t, err)
}
