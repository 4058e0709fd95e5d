package main

import (
	"itad/account"
	"itad/bizerror"
	"itad/board"
	"itad/client/es"
	"itad/common"
	"itad/config"
	"itad/domain/asset"
	"itad/domain/stock"
	"itad/domain/workorder"
	"itad/domain/workorder/workorderrest"
	"itad/event"
	"itad/evidence"
	"itad/indices"
	"itad/indices/search"
	"itad/infra/tracing"
	"itad/persistence"
	"itad/servehttp"
	"itad/session"
	"itad/sessions"
	"net/http"

	"github.com/gin-gonic/gin"
)

func main() {
	common.Log.Info("service start")

	cfg, err := config.LoadConfig(".")
	if err != nil {
		common.Log.Fatalf("load config failed %v", err)
	}

	closer, err := tracing.InitGlobalTracer(cfg.Tracing)
	if err != nil {
		common.Log.Fatalf("init tracer failed %v", err)
	}
	defer closer.Close()

	// create database (no conflict)
	if cfg.Database.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(cfg.Database.DriverArgs); err != nil {
			common.Log.Fatalf("failed to prepare database %v", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: &cfg.Database}
	if err := ds.Start(); err != nil {
		common.Log.Fatalf("database connection failed %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(&account.Technician{}, &asset.Asset{}, &stock.PartStock{},
		&workorder.WorkOrder{}, &workorder.PartRequest{}, &workorder.WorkOrderSequence{},
		&event.EventRecord{}).Error
	if err != nil {
		common.Log.Fatalf("database migration failed %v", err)
	}
	if err := account.DefaultSecurityConfiguration(); err != nil {
		common.Log.Fatalf("failed to prepare default security configuration %v", err)
	}

	workorder.NumberPrefix = cfg.WorkOrder.Prefix
	workorder.RemarketingWarehouse = cfg.WorkOrder.RemarketingWarehouse

	storage, err := evidence.NewStorage(cfg)
	if err != nil {
		common.Log.Fatalf("failed to create evidence storage %v", err)
	}
	evidence.ActiveStorage = storage

	if _, err := es.CreateClient(cfg.Elasticsearch.URL); err != nil {
		common.Log.Fatalf("failed to create elasticsearch client %v", err)
	}

	event.EventHandlers = append(event.EventHandlers,
		workorder.HandleAssetRelocation,
		indices.IndexWorkOrderEventHandle,
		board.HandleBoardEvent,
	)
	defer board.ActiveHub.Close()

	engine := gin.Default()
	engine.Use(tracing.TracingIngress())
	engine.Use(bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	sessions.RegisterSessionsHandler(engine)
	account.RegisterTechniciansRestAPI(engine, session.SimpleAuthFilter())
	asset.RegisterAssetsRestAPI(engine, session.SimpleAuthFilter())
	stock.RegisterPartStocksRestAPI(engine, session.SimpleAuthFilter())
	workorderrest.RegisterWorkOrdersRestAPI(engine, session.SimpleAuthFilter())
	evidence.RegisterEvidencesRestAPI(engine, session.SimpleAuthFilter())
	indices.RegisterIndicesRestAPI(engine, session.SimpleAuthFilter())
	search.RegisterSearchRestAPI(engine, session.SimpleAuthFilter())
	board.RegisterBoardRestAPI(engine, session.SimpleAuthFilter())

	if err := servehttp.StartHTTPServer(engine, ":"+cfg.Server.Port); err != nil {
		common.Log.Fatalf("http server failed %v", err)
	}
	common.Log.Info("service exiting")
}
