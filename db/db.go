package db

import (
	"fmt"
	"time"

	gorm_logrus "github.com/onrik/gorm-logrus"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const (
	DriverPostgres = "postgres"
	DriverMysql    = "mysql"
)

type Settings struct {
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string

	DebugMode      bool
	MigrateOnStart bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func Connect(settings Settings) error {
	if DB != nil {
		return nil
	}
	dialector, err := getDialector(settings)
	if err != nil {
		return err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gorm_logrus.New(),
	})
	if err != nil {
		return errors.Wrap(err, "database connection error")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "database pool error")
	}
	if settings.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(settings.MaxOpenConns)
	}
	if settings.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(settings.MaxIdleConns)
	}
	if settings.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(settings.ConnMaxLifetime)
	}
	if settings.DebugMode {
		db.Logger = logger.Default.LogMode(logger.Info)
		db = db.Debug()
	}
	DB = db
	if settings.MigrateOnStart {
		if err = AutoMigrateDB(); err != nil {
			return err
		}
	}
	log.
		WithField("driver", settings.Driver).
		WithField("host", settings.Host).
		WithField("database", settings.Name).
		Info("service connected to the database")
	return nil
}

func getDialector(settings Settings) (gorm.Dialector, error) {
	switch settings.Driver {
	case "", DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable password=%s TimeZone=UTC",
			settings.Host, settings.Port, settings.User, settings.Name, settings.Password)
		return postgres.Open(dsn), nil
	case DriverMysql:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			settings.User, settings.Password, settings.Host, settings.Port, settings.Name)
		return mysql.Open(dsn), nil
	}
	return nil, errors.Errorf("unsupported database driver: %v", settings.Driver)
}

func PingDB() error {
	db, err := DB.DB()
	if err != nil {
		return err
	}
	if err = db.Ping(); err != nil {
		return err
	}
	return nil
}
