package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/productattr/internal/config"
	"github.com/phenrril/productattr/internal/domain"
	"github.com/phenrril/productattr/internal/testutil"
	"github.com/phenrril/productattr/internal/usecase"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StorageDriver:      config.DriverMemory,
		SeedDemo:           true,
		JWTSecret:          testutil.JWTSecret,
		AdminAPIKey:        "key",
		AdminAllowedEmails: "admin@test.com",
		CORSOrigins:        "*",
	}
}

func TestNewAppRejectsPostgresWithoutDB(t *testing.T) {
	_, err := NewApp(&config.Config{StorageDriver: config.DriverPostgres}, nil)
	assert.Error(t, err)

	_, err = NewApp(&config.Config{StorageDriver: "sqlite"}, nil)
	assert.Error(t, err)
}

func TestMemoryAppSeedsAndServes(t *testing.T) {
	a, err := NewApp(memoryConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, a.MigrateAndSeed(context.Background()))
	// seeding twice keeps one copy of each attribute
	require.NoError(t, a.MigrateAndSeed(context.Background()))

	res, err := a.AttributeUC.List(context.Background(), usecase.ListParams{})
	require.NoError(t, err)
	require.Len(t, res.Data, 3)
	assert.Equal(t, "color", res.Data[0].Code)

	h := a.HTTPHandler()
	w := testutil.DoRequest(h, http.MethodGet, "/api/product-attribute/attributes/"+res.Data[1].ID+"/values", nil, testutil.ViewerToken())
	require.Equal(t, http.StatusOK, w.Code)
	vals := testutil.ParseResponse(w)["data"].([]any)
	require.Len(t, vals, 4)
	assert.Equal(t, "S", vals[0].(map[string]any)["code"])

	w = testutil.DoRequest(h, http.MethodPut, "/api/product-attribute/spus/"+demoSpuID+"/attributes",
		[]map[string]string{{"name": "brand", "value": "Acme"}}, testutil.AdminToken())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEnsureIndexesReportsFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, ensureIndexes(ctx, db))
	// idempotent
	require.NoError(t, ensureIndexes(ctx, db))

	require.NoError(t, db.Migrator().DropTable(&domain.SkuAttribute{}))
	err := ensureIndexes(ctx, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idx_sku_attributes_sku_name")
	assert.NotContains(t, err.Error(), "idx_spu_attributes_spu_name")
}

func TestPostgresMigrateCreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)

	a, err := NewApp(&config.Config{StorageDriver: config.DriverPostgres, JWTSecret: testutil.JWTSecret}, db)
	require.NoError(t, err)
	require.NoError(t, a.MigrateAndSeed(context.Background()))
	assert.True(t, db.Migrator().HasIndex(&domain.SpuAttribute{}, "idx_spu_attributes_spu_name"))
}

func TestManagersAreIndependent(t *testing.T) {
	a, err := NewApp(memoryConfig(), nil)
	require.NoError(t, err)
	m1 := a.NewAttributeManager()
	m2 := a.NewAttributeManager()
	assert.NotSame(t, m1, m2)
	assert.NotSame(t, m1.Entities, m2.Entities)
}
