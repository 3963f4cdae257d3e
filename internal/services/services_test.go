package services

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cheeseshop/internal/config"
	"cheeseshop/internal/storage"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: "file:" + name + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close(db) })
	return db
}

func mustType(t *testing.T, db *gorm.DB, name string) *storage.CheeseType {
	t.Helper()
	ct, err := NewCheeseTypeService(db).Create(context.Background(), name)
	require.NoError(t, err)
	return ct
}

func mustCheese(t *testing.T, db *gorm.DB, title string, typeID uint64, pt storage.PackagingType) *storage.Cheese {
	t.Helper()
	c, err := NewCheeseService(db).Create(context.Background(), CheeseCreate{Title: title, CheeseTypeID: typeID, PackagingType: pt})
	require.NoError(t, err)
	return c
}

func titles(list []storage.Cheese) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Title)
	}
	return out
}

func TestCheeseTypeCreateAndFind(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewCheeseTypeService(db)

	soft := mustType(t, db, "Soft")
	require.NotZero(t, soft.ID)

	got, found, err := svc.FindByName(ctx, "Soft")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, soft.ID, got.ID)

	got, found, err = svc.FindByID(ctx, soft.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Soft", got.Name)

	_, found, err = svc.FindByName(ctx, "soft")
	require.NoError(t, err)
	require.False(t, found, "name lookup is exact")

	_, found, err = svc.FindByID(ctx, soft.ID+100)
	require.NoError(t, err)
	require.False(t, found)

	mustType(t, db, "Hard")
	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Soft", all[0].Name)
	require.Equal(t, "Hard", all[1].Name)
}

func TestCheeseTypeCreateDuplicateHitsUniqueConstraint(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustType(t, db, "Soft")

	_, err := NewCheeseTypeService(db).Create(ctx, "Soft")
	require.ErrorIs(t, err, ErrDuplicate)

	var n int64
	require.NoError(t, db.Model(&storage.CheeseType{}).Where("name = ?", "Soft").Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestCheeseCreateConstraints(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewCheeseService(db)
	soft := mustType(t, db, "Soft")
	mustCheese(t, db, "Brie", soft.ID, storage.PackagingWrapped)

	_, err := svc.Create(ctx, CheeseCreate{Title: "Brie", CheeseTypeID: soft.ID, PackagingType: storage.PackagingWaxed})
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Create(ctx, CheeseCreate{Title: "Camembert", CheeseTypeID: soft.ID + 42, PackagingType: storage.PackagingWrapped})
	require.ErrorIs(t, err, ErrMissingCheeseType)
}

func TestCheeseFindByIDAndTitle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewCheeseService(db)
	soft := mustType(t, db, "Soft")
	brie := mustCheese(t, db, "Brie", soft.ID, storage.PackagingWrapped)

	got, found, err := svc.FindByID(ctx, brie.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Brie", got.Title)
	require.Equal(t, soft.ID, got.CheeseTypeID)
	require.Equal(t, storage.PackagingWrapped, got.PackagingType)

	_, found, err = svc.FindByID(ctx, 9999)
	require.NoError(t, err)
	require.False(t, found)

	got, found, err = svc.FindByTitle(ctx, "Brie")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, brie.ID, got.ID)

	_, found, err = svc.FindByTitle(ctx, "Gouda")
	require.NoError(t, err)
	require.False(t, found)
}

func TestFindByIDOutsideSignedRange(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustType(t, db, "Soft")

	for _, id := range []uint64{math.MaxInt64 + 1, math.MaxUint64} {
		_, found, err := NewCheeseService(db).FindByID(ctx, id)
		require.NoError(t, err)
		require.False(t, found)

		_, found, err = NewCheeseTypeService(db).FindByID(ctx, id)
		require.NoError(t, err)
		require.False(t, found)
	}
}

func TestCheeseListFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewCheeseService(db)
	gouda := mustType(t, db, "Gouda")
	soft := mustType(t, db, "Soft")
	mustCheese(t, db, "Old Amsterdam", gouda.ID, storage.PackagingWaxed)
	mustCheese(t, db, "Beemster", gouda.ID, storage.PackagingVacuumPacked)
	mustCheese(t, db, "Brie", soft.ID, storage.PackagingWrapped)
	mustCheese(t, db, "Red Leicester Wax", soft.ID, storage.PackagingWaxed)

	all, err := svc.List(ctx, CheeseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	name := "Gouda"
	byType, err := svc.List(ctx, CheeseFilter{CheeseTypeName: &name})
	require.NoError(t, err)
	require.Equal(t, []string{"Old Amsterdam", "Beemster"}, titles(byType))

	waxed := storage.PackagingWaxed
	byPack, err := svc.List(ctx, CheeseFilter{PackagingType: &waxed})
	require.NoError(t, err)
	require.Equal(t, []string{"Old Amsterdam", "Red Leicester Wax"}, titles(byPack))

	both, err := svc.List(ctx, CheeseFilter{PackagingType: &waxed, CheeseTypeName: &name})
	require.NoError(t, err)
	require.Equal(t, []string{"Old Amsterdam"}, titles(both))

	unknown := "Blue"
	none, err := svc.List(ctx, CheeseFilter{CheeseTypeName: &unknown})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestLogServiceWriteAndRecent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	logs := NewLogService(db)
	logs.Write(ctx, EventCheeseTypeCreated, 1, "cheese type Soft created", "127.0.0.1", "rid-1")
	logs.Write(ctx, EventCheeseCreated, 1, "cheese Brie created", "127.0.0.1", "rid-2")

	recent, err := logs.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, EventCheeseCreated, recent[0].Event)
	require.Equal(t, "rid-2", recent[0].RequestID)
	require.Equal(t, EventCheeseTypeCreated, recent[1].Event)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	body := `
cheese_types: [Soft, Hard]
cheese:
  - title: Brie
    cheese_type: Soft
    packaging_type: wrapped
  - title: Gouda Jong
    cheese_type: Gouda
    packaging_type: waxed
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	sf, err := LoadSeedFile(path)
	require.NoError(t, err)

	res, err := Seed(ctx, db, sf)
	require.NoError(t, err)
	require.Equal(t, SeedResult{TypesCreated: 3, CheeseCreated: 2}, res)

	res, err = Seed(ctx, db, sf)
	require.NoError(t, err)
	require.Equal(t, SeedResult{TypesSkipped: 2, CheeseSkipped: 2}, res)

	name := "Gouda"
	list, err := NewCheeseService(db).List(ctx, CheeseFilter{CheeseTypeName: &name})
	require.NoError(t, err)
	require.Equal(t, []string{"Gouda Jong"}, titles(list))
}

func TestSeedRollsBackOnUnknownPackaging(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	sf := &SeedFile{
		CheeseTypes: []string{"Soft"},
		Cheese:      []SeedCheese{{Title: "Brie", CheeseType: "Soft", PackagingType: "tin"}},
	}
	_, err := Seed(ctx, db, sf)
	require.ErrorContains(t, err, "unknown packaging type")

	types, err := NewCheeseTypeService(db).List(ctx)
	require.NoError(t, err)
	require.Empty(t, types)
}
