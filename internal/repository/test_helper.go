package repository

import (
	"reflect"
	"testing"

	"github.com/nimasrn/webhook-gateway/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDB struct {
	*pg.DB
	rawDB *gorm.DB
}

func setupTestDB(t *testing.T) *testDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&VendorEntity{}, &ChannelEntity{}, &ProjectEntity{}, &BindingEntity{},
		&MessageEntity{}, &MessageEventEntity{}, &AnalyticsCacheEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return &testDB{
		DB:    pgDB,
		rawDB: db,
	}
}

// seedCatalog inserts one vendor, channel, project and binding and returns
// their ids in that order.
func seedCatalog(t *testing.T, db *testDB, slug, channelType string) (int64, int64, int64, int64) {
	vendor := &VendorEntity{Slug: slug, Name: slug, Active: true}
	require.NoError(t, db.rawDB.Create(vendor).Error)

	channel := &ChannelEntity{Type: channelType, Active: true}
	require.NoError(t, db.rawDB.Create(channel).Error)

	project := &ProjectEntity{UserID: 1, Name: "demo", Active: true}
	require.NoError(t, db.rawDB.Create(project).Error)

	binding := &BindingEntity{
		UserID:     1,
		ProjectID:  project.ID,
		VendorID:   vendor.ID,
		ChannelID:  channel.ID,
		WebhookURL: "https://gw.example.com/webhook/demo/" + slug + "/" + channelType + "?token=tok-1",
		Active:     true,
	}
	require.NoError(t, db.rawDB.Create(binding).Error)

	return vendor.ID, channel.ID, project.ID, binding.ID
}
