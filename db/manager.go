package db

import (
	"context"
	"fmt"
	"time"

	"socialgraph/config"
	"socialgraph/logger"
	"socialgraph/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

var ORM *gorm.DB

func dsnFromConfig(dbConf config.DBConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.Port, dbConf.User, dbConf.Password, dbConf.DBName,
	)
}

func gormConfig(logLevel string) *gorm.Config {
	level := gormlogger.Error
	if logLevel == "debug" {
		level = gormlogger.Info
	}
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
			NoLowerCase:   false,
		},
	}
}

// ConnectDB открывает мастер (и реплики, если есть) по config.AppConfig,
// прогоняет миграции и сохраняет подключение в ORM
func ConnectDB() (err error) {
	if ORM != nil {
		logger.Warn("ORM is already initialized")
		return nil
	}

	conf := config.AppConfig
	if conf == nil {
		return fmt.Errorf("AppConfig is not loaded")
	}

	var database *gorm.DB
	switch conf.Databases.Driver {
	case "sqlite":
		database, err = OpenSQLite(conf.Databases.Path, conf.Logs.Level)
		if err != nil {
			return err
		}
	default:
		database, err = openPostgres(conf)
		if err != nil {
			return err
		}
	}

	if err = Migrate(database); err != nil {
		return err
	}

	ORM = database
	logger.Info("Database connected", "driver", conf.Databases.Driver, "replicas", len(conf.Databases.Replicas))
	return nil
}

func openPostgres(conf *config.ConfigSchema) (*gorm.DB, error) {
	if conf.Databases.Master.Host == "" {
		return nil, fmt.Errorf("master database configuration is missing")
	}

	masterDSN := dsnFromConfig(conf.Databases.Master)
	// Реплики
	replicaDSNs := make([]gorm.Dialector, 0, len(conf.Databases.Replicas))
	for _, r := range conf.Databases.Replicas {
		replicaDSNs = append(replicaDSNs, postgres.Open(dsnFromConfig(r)))
	}

	database, err := gorm.Open(postgres.Open(masterDSN), gormConfig(conf.Logs.Level))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if len(replicaDSNs) > 0 {
		err = database.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicaDSNs,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to register replicas: %w", err)
		}
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return database, nil
}

// OpenSQLite открывает SQLite (файл или "file:name?mode=memory&cache=shared").
// Одно соединение: SQLite не умеет блокировки строк, транзакции сериализуются пулом.
func OpenSQLite(path, logLevel string) (*gorm.DB, error) {
	database, err := gorm.Open(sqlite.Open(path), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return database, nil
}

// Migrate создает таблицы профилей, дружбы и заявок
func Migrate(database *gorm.DB) error {
	err := database.AutoMigrate(&models.Profile{}, &models.FriendshipEdge{}, &models.FriendRequest{})
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	if database.Dialector.Name() == "postgres" {
		if err := CreatePairConstraints(database); err != nil {
			return err
		}
	}
	return nil
}

// ReadOnlyDB возвращает подключение для чтения (слейвы). Новая сессия, поэтому
// результат можно переиспользовать для нескольких запросов.
func ReadOnlyDB(ctx context.Context, database *gorm.DB) *gorm.DB {
	return database.WithContext(ctx).Clauses(dbresolver.Read).Session(&gorm.Session{})
}

// WriteDB возвращает подключение для записи (мастер)
func WriteDB(ctx context.Context, database *gorm.DB) *gorm.DB {
	return database.WithContext(ctx).Clauses(dbresolver.Write).Session(&gorm.Session{})
}
