package repo

import (
	"fmt"
	"strings"

	"handscore/internal/config"
	"handscore/internal/model"
	"handscore/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Models lists every table the service migrates.
var Models = []interface{}{
	&model.Admin{},
	&model.ScoreRun{},
}

// Dialector picks the gorm driver for the configured database.
func Dialector(conf config.DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(conf.Driver) {
	case "postgres", "postgresql", "pgx":
		return postgres.Open(conf.DSN), nil
	case "mysql":
		return mysql.Open(conf.DSN), nil
	case "sqlite", "sqlite3", "":
		return sqlite.Open(conf.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
}

// Open connects to the database and migrates the schema.
func Open(conf config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(conf)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func InitDB() {
	conf := config.GlobalConfig.Database
	var err error
	DB, err = Open(conf)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database",
			zap.String("driver", conf.Driver),
			zap.Error(err),
		)
	}
}
