package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"drowsiness-guard/config"
	"drowsiness-guard/internal/alarm"
	"drowsiness-guard/internal/api"
	"drowsiness-guard/internal/api/handlers"
	"drowsiness-guard/internal/cleanup"
	"drowsiness-guard/internal/db"
	"drowsiness-guard/internal/db/repository"
	"drowsiness-guard/internal/i18n"
	"drowsiness-guard/internal/integrations/audio"
	"drowsiness-guard/internal/integrations/homeassistant"
	"drowsiness-guard/internal/integrations/mqtt"
	"drowsiness-guard/internal/integrations/opencv"
	"drowsiness-guard/internal/logger"
	"drowsiness-guard/internal/monitor"
	"drowsiness-guard/internal/sse"
	"drowsiness-guard/internal/util/timezone"

	log "github.com/sirupsen/logrus"
)

// Fenster-Operationen von gocv müssen auf dem Haupt-Thread laufen
func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFile, err := logger.Init(cfg.Log)
	if err != nil {
		log.Errorf("Failed to initialize logger completely: %v", err)
	}

	// defers in run laufen vor os.Exit
	if err := run(cfg); err != nil {
		log.Errorf("Drowsiness guard failed: %v", err)
		logFile.Close()
		os.Exit(1)
	}
	logFile.Close()
}

// sinkDrainTimeout begrenzt das Zustellen restlicher Ereignisse beim Beenden
const sinkDrainTimeout = 5 * time.Second

func closeAsync(sink *monitor.AsyncSink) {
	if err := sink.Close(sinkDrainTimeout); err != nil {
		log.Warnf("Event sink shutdown: %v", err)
	}
}

func run(cfg *config.Config) error {
	tr, err := i18n.NewTranslator(cfg.Display.Language)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	// Modelle zuerst laden: ohne Detektor ist kein Lauf möglich
	detector, err := opencv.NewCascadeDetector(cfg.Detector)
	if err != nil {
		return fmt.Errorf("failed to load detection models: %w", err)
	}
	defer detector.Close()

	var player alarm.Player
	if cfg.Alarm.Enabled {
		player = audio.NewBeepPlayer()
	}
	alarmCtl := alarm.NewController(player)
	if cfg.Alarm.Enabled {
		if err := alarmCtl.Load(cfg.Alarm.SoundPath); err != nil {
			log.Warnf("Could not load alarm sound, continuing with visual alerts only: %v", err)
		}
	} else {
		log.Info("Audible alarm is disabled in configuration")
	}
	defer alarmCtl.Close()

	log.Info("Opening video source...")
	camera, err := opencv.OpenCamera(cfg.Camera)
	if err != nil {
		return fmt.Errorf("failed to open video source: %w", err)
	}

	var renderer monitor.Renderer
	if cfg.Display.Enabled {
		title := cfg.Display.WindowTitle
		if title == "" {
			title = tr.T("window_title")
		}
		renderer = opencv.NewWindow(title, tr.T("alert_banner"), cfg.Display.ExitKey)
	} else {
		log.Info("Display disabled, running headless")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []monitor.EventSink

	// Episodenjournal
	var repo *repository.Repository
	if cfg.DB.Enabled {
		database, err := db.Initialize(cfg.DB)
		if err != nil {
			log.Errorf("Failed to initialize database, journal disabled: %v", err)
		} else {
			defer db.Close(database)
			repo = repository.New(database)
			journal := monitor.NewAsyncSink("journal", repository.NewRecorder(database, cfg.Detector), 64)
			defer closeAsync(journal)
			sinks = append(sinks, journal)

			cleanupService := cleanup.NewService(repo, cfg.DB.RetentionDays, 24*time.Hour)
			cleanupService.StartBackgroundCleanup()
			defer cleanupService.StopBackgroundCleanup()
		}
	}

	// MQTT und Home Assistant
	if cfg.MQTT.Enabled {
		mqttClient := mqtt.NewClient(cfg.MQTT)
		if cfg.MQTT.HomeAssistant.Enabled {
			discovery := homeassistant.NewDiscoveryManager(mqttClient, tr, cfg.MQTT.HomeAssistant.DiscoveryPrefix)
			mqttClient.OnConnect(func() {
				if err := discovery.Register(); err != nil {
					log.Errorf("Home Assistant discovery failed: %v", err)
				}
			})
		}
		if err := mqttClient.Start(); err != nil {
			log.Warnf("Failed to start MQTT client, continuing without MQTT: %v", err)
		} else {
			defer mqttClient.Stop()
			publisher := monitor.NewAsyncSink("mqtt", homeassistant.NewPublisher(mqttClient), 64)
			defer closeAsync(publisher)
			sinks = append(sinks, publisher)
		}
	}

	status := monitor.NewStatus()

	// Status-API
	var server *api.Server
	if cfg.Server.Enabled {
		hub := sse.NewHub()
		go hub.Run(ctx)
		sinks = append(sinks, hub)

		server = api.NewServer(cfg.Server, handlers.NewAPIHandler(status, repo, hub))
		server.Start()
	}

	mon := monitor.New(camera, detector, renderer, alarmCtl, monitor.Options{
		Threshold: cfg.Drowsiness.Threshold,
		Sinks:     sinks,
		Status:    status,
		Clock:     timezone.Clock(timezone.Load(cfg.Log.Timezone)),
	})

	log.WithFields(log.Fields{
		"session":   mon.SessionID(),
		"threshold": cfg.Drowsiness.Threshold,
		"audio":     alarmCtl.Loaded(),
		"language":  tr.Language(),
	}).Info("Monitoring started")

	runErr := mon.Run(ctx)

	log.Info("Stopping services...")
	stop()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Status API shutdown: %v", err)
		}
		cancel()
	}
	if runErr != nil {
		return fmt.Errorf("monitoring stopped: %w", runErr)
	}
	return nil
}
