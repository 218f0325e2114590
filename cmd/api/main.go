package main

import (
	"context"
	"log"
	"math/big"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "microloan-client/internal/adapter/http"
	appmw "microloan-client/internal/adapter/middleware"
	"microloan-client/internal/adapter/repository/mysql"
	"microloan-client/internal/config"
	"microloan-client/internal/domain/txlog"
	"microloan-client/internal/infrastructure/cache"
	"microloan-client/internal/infrastructure/db"
	"microloan-client/internal/infrastructure/eth"
	"microloan-client/internal/usecase/gateway"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	factory := func(ctx context.Context) (*gateway.Session, error) {
		cli, err := eth.Dial(ctx, cfg.RPCURL, cfg.ContractAddress, cfg.SignerKey)
		if err != nil {
			return nil, err
		}
		return &gateway.Session{
			Account:  cli.Account(),
			ChainID:  cli.Chain(),
			Contract: cli,
			Provider: cli,
		}, nil
	}
	sessions := gateway.NewSessionManager(factory, big.NewInt(cfg.ExpectedChainID))

	var journal txlog.Repository
	if cfg.JournalEnabled() {
		gdb, err := db.OpenGorm(cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("journal database: %v", err)
		}
		if err := gdb.AutoMigrate(&txlog.Entry{}); err != nil {
			log.Fatalf("journal migrate: %v", err)
		}
		journal = mysql.NewTxLogRepository(gdb)
	} else {
		log.Print("journal disabled (no MYSQL_HOST)")
	}

	gw := gateway.New(sessions, journal)
	h := httpadp.NewLoanHandler(gw, journal)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	if cfg.IdempotencyEnabled() {
		rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.Fatalf("idempotency store: %v", err)
		}
		e.Use(appmw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))
	} else {
		log.Print("idempotency guard disabled (no REDIS_ADDR)")
	}

	h.Register(e)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
