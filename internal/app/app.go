package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/phenrril/productattr/internal/adapters/adminmenu"
	"github.com/phenrril/productattr/internal/adapters/httpserver"
	"github.com/phenrril/productattr/internal/adapters/repo/memory"
	"github.com/phenrril/productattr/internal/adapters/repo/postgres"
	"github.com/phenrril/productattr/internal/config"
	"github.com/phenrril/productattr/internal/domain"
	"github.com/phenrril/productattr/internal/usecase"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Store  *memory.Store

	Attributes  domain.AttributeRepo
	Assignments domain.AssignmentRepo
	Products    domain.ProductRepo
	AttributeUC *usecase.AttributeUC
	Menu        *adminmenu.Provider
	entities    func() domain.EntityManager
}

// NewApp wires the repositories for cfg.StorageDriver. db is only used by the
// postgres driver.
func NewApp(cfg *config.Config, db *gorm.DB) (*App, error) {
	a := &App{
		Config: cfg,
		Menu:   &adminmenu.Provider{Links: adminmenu.PathLinks{Base: "/admin/crud"}},
	}
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		if db == nil {
			return nil, errors.New("postgres driver needs a database")
		}
		a.DB = db
		a.Attributes = postgres.NewAttributeRepo(db)
		a.Assignments = postgres.NewAssignmentRepo(db)
		a.Products = postgres.NewProductRepo(db)
		a.entities = func() domain.EntityManager { return postgres.NewEntityManager(db) }
	case config.DriverMemory:
		store := memory.NewStore()
		a.Store = store
		a.Attributes = memory.NewAttributeRepo(store)
		a.Assignments = memory.NewAssignmentRepo(store)
		a.Products = memory.NewProductRepo(store)
		a.entities = func() domain.EntityManager { return memory.NewEntityManager(store) }
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	a.AttributeUC = &usecase.AttributeUC{Attributes: a.Attributes}
	return a, nil
}

// NewAttributeManager returns a manager with its own unit of work.
func (a *App) NewAttributeManager() *usecase.AttributeManager {
	return usecase.NewAttributeManager(a.entities(), a.Assignments)
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(httpserver.Options{
		Attributes:  a.AttributeUC,
		Managers:    a.NewAttributeManager,
		Products:    a.Products,
		Menu:        a.Menu,
		JWTSecret:   a.Config.JWTSecret,
		AdminAPIKey: a.Config.AdminAPIKey,
		AdminEmails: a.Config.AllowedEmails(),
		CORSOrigins: a.Config.Origins(),
	})
}

func (a *App) MigrateAndSeed(ctx context.Context) error {
	if a.DB != nil {
		models := []any{&domain.Attribute{}, &domain.AttributeValue{}}
		if a.Config.MigrateProductTables {
			models = append(models, &domain.Spu{}, &domain.Sku{})
		}
		models = append(models, &domain.SpuAttribute{}, &domain.SkuAttribute{})
		if err := a.DB.WithContext(ctx).AutoMigrate(models...); err != nil {
			return err
		}
		if err := ensureIndexes(ctx, a.DB); err != nil {
			log.Warn().Err(err).Msg("some indexes could not be created")
		}
	}

	if !a.Config.SeedDemo {
		return nil
	}
	if err := seedAttributes(ctx, a.Attributes); err != nil {
		return fmt.Errorf("seed attributes: %w", err)
	}
	if a.Store != nil {
		seedProducts(a.Store)
	} else if a.Config.MigrateProductTables {
		if err := seedProductRows(ctx, a.DB); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
	}
	return nil
}

var indexDDL = []string{
	"CREATE INDEX IF NOT EXISTS idx_spu_attributes_spu_name ON spu_attributes (spu_id, name)",
	"CREATE INDEX IF NOT EXISTS idx_sku_attributes_sku_name ON sku_attributes (sku_id, name)",
	"CREATE INDEX IF NOT EXISTS idx_attributes_type_status ON attributes (type, status)",
}

// ensureIndexes runs every statement in indexDDL and joins the failures.
// Assignment lookups by (owner, name) still work without them, only slower.
func ensureIndexes(ctx context.Context, db *gorm.DB) error {
	var errs []error
	for _, stmt := range indexDDL {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", stmt, err))
		}
	}
	return errors.Join(errs...)
}

func demoAttributes() []domain.Attribute {
	color := domain.Attribute{
		Code:         "color",
		Name:         "Color",
		Type:         domain.AttributeTypeSales,
		ValueType:    domain.ValueTypeSingle,
		InputType:    domain.InputTypeColor,
		IsRequired:   true,
		IsFilterable: true,
		SortOrder:    1,
		Config:       datatypes.JSON(`{"swatch":true}`),
		Status:       domain.StatusActive,
	}
	for i, c := range []struct{ code, hex, label string }{
		{"black", "#111827", "Black"},
		{"white", "#ffffff", "White"},
		{"blue", "#3b82f6", "Blue"},
		{"red", "#ef4444", "Red"},
	} {
		color.AddValue(domain.AttributeValue{Code: c.code, Value: c.hex, Label: c.label, SortOrder: 40 - i*10, Status: domain.StatusActive})
	}

	size := domain.Attribute{
		Code:         "size",
		Name:         "Size",
		Type:         domain.AttributeTypeSales,
		ValueType:    domain.ValueTypeSingle,
		InputType:    domain.InputTypeSelect,
		IsRequired:   true,
		IsFilterable: true,
		SortOrder:    2,
		Status:       domain.StatusActive,
	}
	for i, s := range []string{"S", "M", "L", "XL"} {
		size.AddValue(domain.AttributeValue{Code: s, Value: s, Label: s, SortOrder: 40 - i*10, Status: domain.StatusActive})
	}

	unit := "g"
	weight := domain.Attribute{
		Code:         "weight",
		Name:         "Weight",
		Type:         domain.AttributeTypeNonSales,
		ValueType:    domain.ValueTypeNumber,
		InputType:    domain.InputTypeNumber,
		Unit:         &unit,
		IsSearchable: true,
		SortOrder:    3,
		Status:       domain.StatusActive,
	}
	return []domain.Attribute{color, size, weight}
}

// seedAttributes stores the demo attributes whose code is not taken yet.
func seedAttributes(ctx context.Context, repo domain.AttributeRepo) error {
	for _, a := range demoAttributes() {
		if _, err := repo.FindByCode(ctx, a.Code); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		a := a
		if err := repo.Save(ctx, &a); err != nil {
			return err
		}
		log.Info().Str("code", a.Code).Int("values", len(a.Values)).Msg("seeded attribute")
	}
	return nil
}

const (
	demoSpuID = "00000000-0000-0000-0000-000000000001"
	demoSkuID = "00000000-0000-0000-0000-000000000002"
)

func seedProducts(store *memory.Store) {
	store.AddSpu(&domain.Spu{ID: demoSpuID, Title: "Demo T-Shirt"})
	store.AddSku(&domain.Sku{ID: demoSkuID, SpuID: demoSpuID, Code: "DEMO-TS-M"})
}

func seedProductRows(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&domain.Spu{ID: demoSpuID, Title: "Demo T-Shirt"}).Error; err != nil {
			return err
		}
		return tx.Save(&domain.Sku{ID: demoSkuID, SpuID: demoSpuID, Code: "DEMO-TS-M"}).Error
	})
}
