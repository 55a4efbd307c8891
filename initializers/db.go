package initializers

import (
	"grc-backend/config"
	"grc-backend/db"
	"time"
)

func InitDBConnection() {
	dbConf := config.Conf.Database
	err := db.Connect(db.Settings{
		Driver:          dbConf.Driver,
		Host:            dbConf.Host,
		Port:            dbConf.Port,
		Name:            dbConf.Name,
		User:            dbConf.User,
		Password:        dbConf.Password,
		DebugMode:       *dbConf.DebugMode,
		MigrateOnStart:  *dbConf.MigrateOnStart,
		MaxOpenConns:    dbConf.MaxOpenConns,
		MaxIdleConns:    dbConf.MaxIdleConns,
		ConnMaxLifetime: time.Duration(dbConf.ConnMaxLifeSec) * time.Second,
	})
	if err != nil {
		panic(err.Error())
	}
}
