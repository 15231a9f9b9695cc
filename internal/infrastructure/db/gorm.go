package db

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lendingops-backend/internal/domain/inquiry"
	"lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/ledger"
	"lendingops-backend/internal/domain/loan"
	"lendingops-backend/internal/domain/proposal"
	"lendingops-backend/pkg/logger"
)

// gormWriter routes gorm's own logging through the app logger.
type gormWriter struct{ log *logger.Logger }

func (w gormWriter) Printf(format string, args ...any) { w.log.Infof(format, args...) }

func newGormLogger(log *logger.Logger) gormlogger.Interface {
	if log == nil {
		return gormlogger.Discard
	}
	return gormlogger.New(gormWriter{log}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func OpenGorm(dsn string, log *logger.Logger) (*gorm.DB, error) {
	db, err := open(mysql.Open(dsn), log)
	if err != nil {
		return nil, err
	}
	log.WithField("driver", "mysql").Info("gorm: connected")
	return db, nil
}

// OpenGormWithDialector opens and pings an arbitrary dialector with gorm logging discarded.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	return open(dial, nil)
}

func open(dial gorm.Dialector, log *logger.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:  newGormLogger(log),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Models lists every persisted entity, in migration order.
func Models() []any {
	return []any{
		&inquiry.Inquiry{},
		&proposal.Proposal{},
		&loan.BorrowerLoan{},
		&investment.InvestorInvestment{},
		&ledger.Record{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
