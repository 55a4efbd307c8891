package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr    string `default:"" env:"APP_HOST"`
		Port          int    `default:"8000"  env:"APP_PORT"`
		ErrNotifyAddr string `default:"" env:"APP_ERR_NOTIFY_ADDR"`
	}
	Log struct {
		Level        string `default:"info" env:"LOG_LEVEL"`
		RequestLevel string `default:"debug" env:"LOG_REQUEST_LEVEL"`
		LogBodies    *bool  `default:"true" env:"LOG_REQUEST_BODIES"`
	}
	Database struct {
		Driver         string `default:"postgres" env:"DB_DRIVER"` // postgres/mysql
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"grc" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
		MaxOpenConns   int    `default:"20" env:"DB_MAX_OPEN_CONNS"`
		MaxIdleConns   int    `default:"5" env:"DB_MAX_IDLE_CONNS"`
		ConnMaxLifeSec int    `default:"1800" env:"DB_CONN_MAX_LIFE_SEC"`
	}
	Auth struct {
		JWTSecret      string `default:"jwt-secret-key-change-in-production" env:"JWT_SECRET_KEY"`
		JWTExpireInSec int64  `default:"86400" env:"JWT_EXPIRE_IN_SEC"`
	}
	S3 struct {
		Endpoint        string `default:"127.0.0.1:9000" env:"MINIO_ENDPOINT"`
		AccessKeyID     string `default:"minioadmin" env:"MINIO_ACCESS_KEY"`
		SecretAccessKey string `default:"minioadmin" env:"MINIO_SECRET_KEY"`
		UseSSL          *bool  `default:"false" env:"MINIO_SECURE"`
		BucketName      string `default:"grc-evidence" env:"MINIO_BUCKET_NAME"`
		Region          string `default:"us-east-1" env:"MINIO_REGION"`
	}
	Smtp struct {
		User       string `default:"" env:"SMTP_USER"`
		Password   string `default:"" env:"SMTP_PASSWORD"`
		Host       string `default:"" env:"SMTP_HOST"`
		Port       string `default:"" env:"SMTP_PORT"`
		TLSEnabled *bool  `default:"true" env:"SMTP_TLS_ENABLED"`
		From       string `default:"grc-noreply@localhost" env:"SMTP_FROM"`
	}
	Approval struct {
		DefaultMaxLevels int      `default:"2" env:"APPROVAL_DEFAULT_MAX_LEVELS"`
		LevelRoles       []string `default:"[\"compliance-manager\",\"ciso\"]"` // approver role per level, starting from level 1
		StrictLevelRoles *bool    `default:"false" env:"APPROVAL_STRICT_LEVEL_ROLES"`
		OverdueFirstRun  int      `default:"60" env:"APPROVAL_OVERDUE_FIRST_RUN_SEC"`
		OverdueInterval  int      `default:"3600" env:"APPROVAL_OVERDUE_INTERVAL_SEC"`
	}
	Notification struct {
		RoleEmails map[string]string
	}
	Ws struct {
		PingIntervalSec int `default:"30" env:"WS_PING_INTERVAL_SEC"`
		PongWaitSec     int `default:"60" env:"WS_PONG_WAIT_SEC"`
	}
	Evidence struct {
		MaxUploadSize      int64    `default:"104857600" env:"EVIDENCE_MAX_UPLOAD_SIZE"`
		AllowedExtensions  []string `default:"[\"pdf\",\"docx\",\"xlsx\",\"txt\",\"json\",\"png\",\"jpg\",\"jpeg\",\"zip\",\"csv\"]"`
		PresignExpireInSec int      `default:"3600" env:"EVIDENCE_PRESIGN_EXPIRE_SEC"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
