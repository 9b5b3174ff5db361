package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/oilledger/internal/apperror"
	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/repository/filestore"
	"github.com/mamadbah2/oilledger/internal/repository/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	repo, err := filestore.NewRepository(t.TempDir(), nil)
	require.NoError(t, err)
	return repo
}

func TestSeedAndLoad(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestStore(t), nil)

	res, err := svc.Seed(ctx, DefaultSeed())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Products: 20, Routes: 7, Vehicles: 6}, res)

	products := svc.Products()
	require.Len(t, products, 20)
	assert.Equal(t, "Lamp", products[0].Category)
	assert.Equal(t, "Sunflower", products[len(products)-1].Category)

	routes := svc.Routes()
	require.Len(t, routes, 7)
	assert.Equal(t, "Uthukottai", routes[0].Name)
	assert.Equal(t, "ECR", routes[6].Name)

	vehicles := svc.Vehicles()
	require.Len(t, vehicles, 6)
	assert.Equal(t, "2259", vehicles[0].Number)

	p, ok := svc.LookupProduct(3)
	require.True(t, ok)
	assert.Equal(t, 13.6, p.ConversionFactor)
}

func TestSeedTwiceSkipsExistingRows(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := NewService(st, nil).Seed(ctx, DefaultSeed())
	require.NoError(t, err)

	svc := NewService(st, nil)
	res, err := svc.Seed(ctx, DefaultSeed())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Skipped: 33}, res)
	assert.Len(t, svc.Products(), 20)
}

func TestInactiveEntriesResolveOnlyForReads(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	data := SeedData{
		Products: []models.Product{
			{ID: 1, Name: "Palm Oil 15kg Can", Category: "Palm", ConversionFactor: 15, IsActive: true},
			{ID: 2, Name: "Old Tin", Category: "Palm", ConversionFactor: 10, IsActive: false},
		},
		Routes:   []models.Route{{ID: 1, Name: "ECR", IsActive: true}, {ID: 2, Name: "Closed", IsActive: false}},
		Vehicles: []models.Vehicle{{ID: 1, Number: "2259", IsActive: true}, {ID: 2, Number: "9999", IsActive: false}},
	}
	svc := NewService(st, nil)
	_, err := svc.Seed(ctx, data)
	require.NoError(t, err)

	assert.Len(t, svc.Products(), 1)
	assert.Len(t, svc.Routes(), 1)
	assert.Len(t, svc.Vehicles(), 1)

	old, ok := svc.LookupProduct(2)
	require.True(t, ok)
	assert.Equal(t, "Old Tin", old.Name)

	_, err = svc.ActiveProduct(2)
	assert.True(t, apperror.IsNotFound(err))
	_, err = svc.ActiveRoute("Closed")
	assert.True(t, apperror.IsNotFound(err))
	_, err = svc.ActiveVehicle("9999")
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.ActiveRoute("ECR")
	assert.NoError(t, err)
	_, err = svc.ActiveVehicle("2259")
	assert.NoError(t, err)
}

func TestLookupUnknownProduct(t *testing.T) {
	svc := NewService(newTestStore(t), nil)
	require.NoError(t, svc.Load(context.Background()))

	_, ok := svc.LookupProduct(1)
	assert.False(t, ok)
	_, err := svc.ActiveProduct(1)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSortProducts(t *testing.T) {
	products := []models.Product{
		{ID: 3, Name: "B", Category: "Sunflower"},
		{ID: 2, Name: "A", Category: "Sunflower"},
		{ID: 1, Name: "Z", Category: "Lamp"},
	}
	SortProducts(products)

	assert.Equal(t, []int64{1, 2, 3}, []int64{products[0].ID, products[1].ID, products[2].ID})
}
