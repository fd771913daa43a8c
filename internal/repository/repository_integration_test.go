//go:build integration

package repository

// Integration tests against a real Postgres via testcontainers.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"testing"
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/infra"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("warestock_test"),
		tcPostgres.WithUsername("warestock"),
		tcPostgres.WithPassword("warestock"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	return db
}

func createProduct(t *testing.T, repo ProductRepository, name, barcode string, quantity, minStock int) *model.Product {
	t.Helper()
	p := &model.Product{
		ID:       uuid.New(),
		Barcode:  barcode,
		Name:     name,
		Category: "Gaseosas",
		Unit:     "botella",
		Quantity: quantity,
		MinStock: minStock,
		Active:   true,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestUpdateStockVersionConflict(t *testing.T) {
	db := setupDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	p := createProduct(t, repo, "Coca-Cola 2L", "7790895000430", 50, 12)

	// First writer wins and bumps the version.
	require.NoError(t, repo.UpdateStock(ctx, p.ID, 0, 70))

	// Second writer still holds the stale snapshot and must be rejected.
	err := repo.UpdateStock(ctx, p.ID, 0, 45)
	require.ErrorIs(t, err, ErrVersionConflict)

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, stored.Quantity)
	assert.Equal(t, 1, stored.Version)

	// Retrying with the fresh version succeeds.
	require.NoError(t, repo.UpdateStock(ctx, p.ID, 1, 45))
}

func TestNegativeQuantityRejectedBySchema(t *testing.T) {
	db := setupDB(t)
	repo := NewProductRepository(db)
	p := createProduct(t, repo, "Soda 2L", "7790070410132", 5, 2)

	err := repo.UpdateStock(context.Background(), p.ID, 0, -1)
	assert.Error(t, err) // CHECK (quantity >= 0)
}

func TestFindByBarcodeSkipsInactive(t *testing.T) {
	db := setupDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	p := createProduct(t, repo, "Agua Mineral 1.5L", "7790742000117", 60, 15)

	found, err := repo.FindByBarcode(ctx, "7790742000117")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	require.NoError(t, repo.SoftDelete(ctx, p.ID))
	_, err = repo.FindByBarcode(ctx, "7790742000117")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Reactivate(ctx, p.ID))
	_, err = repo.FindByBarcode(ctx, "7790742000117")
	assert.NoError(t, err)
}

func TestListLowStockFilter(t *testing.T) {
	db := setupDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	createProduct(t, repo, "Cerveza Rubia 1L", "7793147000257", 36, 10)
	createProduct(t, repo, "Cerveza Negra 473ml", "7793147000264", 8, 18)

	products, total, err := repo.List(ctx, dto.ProductFilter{LowStock: true, Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Cerveza Negra 473ml", products[0].Name)
}

func TestChangeRecordsAppendOnly(t *testing.T) {
	db := setupDB(t)
	products := NewProductRepository(db)
	changes := NewChangeRecordRepository(db)
	ctx := context.Background()
	p := createProduct(t, products, "Jugo de Naranja 1L", "7794000960077", 30, 8)

	rec := &model.ChangeRecord{
		ProductID:        p.ID,
		ProductName:      p.Name,
		Type:             model.ChangeAdd,
		Quantity:         12,
		PreviousQuantity: 30,
		NewQuantity:      42,
		Operator:         "maria",
	}
	require.NoError(t, changes.Create(ctx, rec))

	// The audit trail is immutable: the trigger blocks both paths.
	err := db.Exec(`UPDATE change_records SET quantity = 99 WHERE id = ?`, rec.ID).Error
	assert.Error(t, err)
	err = db.Exec(`DELETE FROM change_records WHERE id = ?`, rec.ID).Error
	assert.Error(t, err)

	records, total, err := changes.List(ctx, dto.ChangeFilter{ProductID: p.ID.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, 12, records[0].Quantity)
}

func TestChangeListNewestFirst(t *testing.T) {
	db := setupDB(t)
	products := NewProductRepository(db)
	changes := NewChangeRecordRepository(db)
	ctx := context.Background()
	p := createProduct(t, products, "Coca-Cola 500ml", "7790895000416", 96, 24)

	for i, typ := range []string{model.ChangeAdd, model.ChangeRemove, model.ChangeUpdate} {
		time.Sleep(5 * time.Millisecond) // distinct created_at per record
		require.NoError(t, changes.Create(ctx, &model.ChangeRecord{
			ProductID:        p.ID,
			ProductName:      p.Name,
			Type:             typ,
			Quantity:         i + 1,
			PreviousQuantity: 96,
			NewQuantity:      96,
			Operator:         "pedro",
		}))
	}

	records, total, err := changes.List(ctx, dto.ChangeFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, records, 3)
	assert.Equal(t, model.ChangeUpdate, records[0].Type)

	filtered, _, err := changes.List(ctx, dto.ChangeFilter{Type: model.ChangeRemove})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].Quantity)
}
