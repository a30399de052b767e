package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/mstojkov/fittracker/internal/config"
	"github.com/mstojkov/fittracker/internal/db"
	"github.com/mstojkov/fittracker/internal/exercises"
	"github.com/mstojkov/fittracker/internal/middleware"
	"github.com/mstojkov/fittracker/internal/programs"
	"github.com/mstojkov/fittracker/internal/telemetry/metrics"
	"github.com/mstojkov/fittracker/internal/telemetry/tracing"
	"github.com/mstojkov/fittracker/internal/workouts"
	"github.com/mstojkov/fittracker/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config   *config.Config
	dbPool   *pgxpool.Pool // set when the postgres backend is used
	sqliteDB *sql.DB       // set when the sqlite backend is used

	exercisesRepo exercises.Repo
	programsRepo  programs.Repo
	workoutsRepo  workouts.Repo

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fittracker-backend")
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:       params.Config,
		versionInfo:  params.VersionInfo,
		otelShutdown: otelShutdown,
	}

	var promCollectors []prometheus.Collector

	switch db.TargetKind(params.Config.DatabaseURL) {
	case db.KindPostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			ConnString:     params.Config.DatabaseURL,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		if err := db.EnsureSchemaPostgres(ctx, dbPool); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}

		s.dbPool = dbPool
		s.exercisesRepo = exercises.NewPostgresRepo(dbPool)
		s.programsRepo = programs.NewPostgresRepo(dbPool)
		s.workoutsRepo = workouts.NewPostgresRepo(dbPool)

		promCollectors = append(promCollectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": "fittracker_db"},
		))
	case db.KindSQLite:
		sqliteDB, err := db.OpenSQLite(params.Config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open sqlite db: %w", err)
		}
		if err := db.EnsureSchemaSQLite(ctx, sqliteDB); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}

		s.sqliteDB = sqliteDB
		s.exercisesRepo = exercises.NewSQLiteRepo(sqliteDB)
		s.programsRepo = programs.NewSQLiteRepo(sqliteDB)
		s.workoutsRepo = workouts.NewSQLiteRepo(sqliteDB)
	}

	// seeding must finish before any handler serves traffic
	if err := exercises.Seed(ctx, s.exercisesRepo); err != nil {
		return nil, fmt.Errorf("seed exercises: %w", err)
	}

	s.promRegistry = metrics.SetupPrometheus(promCollectors...)
	s.metricsManager = metrics.NewManager("fittracker", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteJSONResponseOK(w, `{"message":"Сервер работает!"}`)
	}).Methods("GET", "OPTIONS").Name("root")

	exercisesHandler := exercises.NewHandler(s.exercisesRepo)
	r.HandleFunc("/exercises", exercisesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")

	workoutsHandler := workouts.NewHandler(s.workoutsRepo, s.metricsManager)
	r.HandleFunc("/workouts/finish", workoutsHandler.HandleFinish).Methods("POST", "OPTIONS").Name("finish-workout")
	r.HandleFunc("/workouts/history", workoutsHandler.HandleHistory).Methods("GET", "OPTIONS").Name("workout-history")
	r.HandleFunc("/export-history", workoutsHandler.HandleExportHistory).Methods("GET", "OPTIONS").Name("export-history")

	programsHandler := programs.NewHandler(s.programsRepo, s.metricsManager)
	r.HandleFunc("/upload-program", programsHandler.HandleUpload).Methods("POST", "OPTIONS").Name("upload-program")
	r.HandleFunc("/programs", programsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-programs")
	r.HandleFunc("/programs/{id}", programsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-program")
	r.HandleFunc("/programs/{id}", programsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-program")
	r.HandleFunc("/programs/{id}", programsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-program")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins, s.config.CorsAllowAll))
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if s.sqliteDB != nil {
		if err := s.sqliteDB.Close(); err != nil {
			log.Errorf("failed to close sqlite db: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
