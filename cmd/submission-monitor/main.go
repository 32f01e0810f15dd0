package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/kartikmohta/submit-system/config"
	"github.com/kartikmohta/submit-system/handlers"
	"github.com/kartikmohta/submit-system/ledger"
	"github.com/kartikmohta/submit-system/metrics"
	"github.com/kartikmohta/submit-system/monitor"
	"github.com/kartikmohta/submit-system/notify"
	"github.com/kartikmohta/submit-system/report"

	"github.com/Noah-Huppert/golog"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// {{{1 Context
	ctx, ctxCancel := context.WithCancel(context.Background())

	// signals holds signals received by process
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() {
		<-signals

		ctxCancel()
	}()

	// {{{1 Logger
	logger := golog.NewStdLogger("submission-monitor")

	// {{{1 Configuration
	serve := flag.Bool("serve", false, "poll on an interval and serve status pages over HTTP")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-serve] <config.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	env, err := config.NewEnv()
	if err != nil {
		logger.Fatalf("failed to load environment configuration: %s", err.Error())
	}

	conf, err := config.LoadMonitor(flag.Arg(0))
	if err != nil {
		logger.Fatalf("failed to load configuration: %s", err.Error())
	}

	for _, project := range conf.Projects {
		logger.Infof("found project: %s (size limit %.1f MB, time limit %.1f s)",
			project.Name, project.SizeLimitMB, project.TimeLimitSecs)
	}

	for _, dir := range []string{conf.LogDir, conf.LedgerDir, conf.WebsitePath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatalf("unable to create directory %s: %s", dir, err.Error())
		}
	}

	// {{{1 Wire the pipeline
	monitorMetrics := metrics.NewMetrics()

	led := ledger.New(logger.GetChild("ledger"), conf.LedgerDir, conf.Username)

	projectNames := []string{}
	for _, project := range conf.Projects {
		projectNames = append(projectNames, project.Name)
	}

	reporter := &report.Reporter{
		Logger:       logger.GetChild("report"),
		Username:     conf.Username,
		WebsitePath:  conf.WebsitePath,
		HeaderPath:   conf.WebsiteHeader,
		FooterPath:   conf.WebsiteFooter,
		ProjectNames: projectNames,
		Ledger:       led,
	}
	led.SetPublisher(reporter.Publish)

	mon := &monitor.Monitor{
		Logger: logger.GetChild("monitor"),
		Env:    env,
		Conf:   conf,
		Ledger: led,
		Notifier: notify.SMTPNotifier{
			Logger:        logger.GetChild("notify"),
			Host:          env.SMTPHost,
			Port:          env.SMTPPort,
			From:          env.MailFrom,
			SubjectPrefix: conf.Username,
		},
		Metrics: monitorMetrics,
	}

	// {{{1 Single pass mode
	if !*serve {
		if err := mon.RunPass(ctx); err != nil {
			logger.Fatalf("monitor pass failed: %s", err.Error())
		}

		logger.Info("done")
		return
	}

	// {{{1 Serve mode: status server plus a polling loop
	baseHandler := handlers.BaseHandler{
		Logger: logger.GetChild("handlers"),
	}

	router := mux.NewRouter()

	router.Handle("/health", handlers.HealthHandler{
		BaseHandler: baseHandler.GetChild("health"),
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.PathPrefix("/").Handler(http.FileServer(http.Dir(conf.WebsitePath)))

	server := http.Server{
		Addr: env.HTTPAddr,
		Handler: handlers.PanicHandler{
			BaseHandler: baseHandler,
			Handler: handlers.ReqLoggerHandler{
				BaseHandler: baseHandler,
				Handler:     router,
			},
		},
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("failed to serve: %s", err.Error())
		}
	}()

	logger.Infof("started status server on %s, polling every %s",
		env.HTTPAddr, env.PollInterval)

	ticker := time.NewTicker(env.PollInterval)
	defer ticker.Stop()

	for run := true; run; {
		if err := mon.RunPass(ctx); err != nil {
			// A failed pass is retried on the next tick, the store
			// may only be briefly unreachable.
			logger.Errorf("monitor pass failed: %s", err.Error())
		}

		select {
		case <-ctx.Done():
			run = false
		case <-ticker.C:
		}
	}

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Fatalf("failed to shutdown server: %s", err.Error())
	}

	logger.Info("done")
}
