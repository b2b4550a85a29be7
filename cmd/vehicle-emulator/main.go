package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"vehicle-emulator/internal/command"
	"vehicle-emulator/internal/config"
	"vehicle-emulator/internal/core"
	"vehicle-emulator/internal/hardware"
	"vehicle-emulator/internal/logger"
	"vehicle-emulator/internal/messaging"
	"vehicle-emulator/internal/model"
	"vehicle-emulator/internal/model/f150"
	"vehicle-emulator/internal/model/mustang"
)

func main() {
	defaults := config.Default()

	var configPath string
	flag.StringVar(&configPath, "config", "", "YAML configuration file; flags given explicitly override it")

	// Service log level
	var serviceLogLevel string
	flag.StringVar(&serviceLogLevel, "log", strconv.Itoa(defaults.LogLevel), "Service log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG, or the name)")

	modelName := flag.String("model", defaults.Model, "Vehicle model to emulate at startup (mustang, f150)")
	canDriver := flag.String("can-driver", defaults.CAN.Driver, "CAN driver (brutella, einride, none)")
	canIface := flag.String("can", defaults.CAN.Interface, "SocketCAN interface")
	redisHost := flag.String("redis-host", defaults.Redis.Host, "Redis host")
	redisPort := flag.Int("redis-port", defaults.Redis.Port, "Redis port")
	noRedis := flag.Bool("no-redis", false, "Do not connect to Redis")
	serialPort := flag.String("serial", defaults.Serial.Port, "Serial console device (empty disables)")
	serialBaud := flag.Int("baud", defaults.Serial.Baud, "Serial console baud rate")
	buttons := flag.Bool("buttons", defaults.Buttons.Enabled, "Read bench push-buttons from GPIO")
	buttonChip := flag.String("button-chip", defaults.Buttons.Chip, "GPIO chip for bench push-buttons")
	tick := flag.Duration("tick", defaults.Tick, "Emulator tick period")
	verbose := flag.Bool("verbose", defaults.Verbose, "Log every transmitted frame (rate limited)")
	logInterval := flag.Duration("log-interval", defaults.LogInterval, "Minimum spacing of verbose frame log lines")
	stdin := flag.Bool("stdin", defaults.Stdin, "Accept commands on standard input")

	flag.Parse()

	cfg := defaults
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log":
			level, ok := logger.ParseLevel(serviceLogLevel)
			if !ok {
				log.Fatalf("Invalid log level %q", serviceLogLevel)
			}
			cfg.LogLevel = int(level)
		case "model":
			cfg.Model = *modelName
		case "can-driver":
			cfg.CAN.Driver = *canDriver
		case "can":
			cfg.CAN.Interface = *canIface
		case "redis-host":
			cfg.Redis.Host = *redisHost
		case "redis-port":
			cfg.Redis.Port = *redisPort
		case "no-redis":
			cfg.Redis.Enabled = !*noRedis
		case "serial":
			cfg.Serial.Port = *serialPort
		case "baud":
			cfg.Serial.Baud = *serialBaud
		case "buttons":
			cfg.Buttons.Enabled = *buttons
		case "button-chip":
			cfg.Buttons.Chip = *buttonChip
		case "tick":
			cfg.Tick = *tick
		case "verbose":
			cfg.Verbose = *verbose
		case "log-interval":
			cfg.LogInterval = *logInterval
		case "stdin":
			cfg.Stdin = *stdin
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create standard logger with appropriate format
	var stdLogger *log.Logger
	if os.Getenv("INVOCATION_ID") != "" {
		// Running under systemd, use minimal format
		stdLogger = log.New(os.Stdout, "", 0)
	} else {
		// Running interactively, use timestamps
		stdLogger = log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds|log.Lmsgprefix)
	}

	// Create leveled logger
	l := logger.NewLogger(stdLogger, logger.LogLevel(cfg.LogLevel))
	gate := logger.NewGate(l.WithTag("CAN"), cfg.LogInterval.Milliseconds(), cfg.Verbose)

	l.Infof("Starting vehicle emulator...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport, err := hardware.OpenCAN(ctx, cfg.CAN.Driver, cfg.CAN.Interface, l.WithTag("CAN"))
	if err != nil {
		l.Fatalf("Failed to open CAN transport: %v", err)
	}
	defer transport.Close()

	registry := model.NewRegistry()
	registry.Register(mustang.Name, mustang.Factory(l, gate))
	registry.Register(f150.Name, f150.Factory(l))

	var redis *messaging.RedisClient
	var messagingClient core.MessagingClient
	if cfg.Redis.Enabled {
		redis = messaging.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, l.WithTag("REDIS"), messaging.Callbacks{})
		if err := redis.Connect(); err != nil {
			l.Fatalf("Failed to connect to Redis: %v", err)
		}
		messagingClient = redis
	}

	emulator, err := core.NewEmulator(core.Config{
		Registry:  registry,
		Model:     cfg.Model,
		Transport: transport,
		Clock:     hardware.MonotonicMillis,
		Gate:      gate,
		Messaging: messagingClient,
		Logger:    l.WithTag("EMULATOR"),
		Tick:      cfg.Tick,
	})
	if err != nil {
		l.Fatalf("Failed to create emulator: %v", err)
	}

	if redis != nil {
		if err := redis.StartListening(); err != nil {
			l.Fatalf("Failed to start Redis listeners: %v", err)
		}
		defer redis.Close()
	}

	consoleHandler := func(source string) command.Handler {
		return func(line string, reply func(error)) {
			if err := emulator.SubmitLine(ctx, source, line, reply); err != nil {
				l.Debugf("Line from %s not queued: %v", source, err)
			}
		}
	}

	if cfg.Serial.Port != "" {
		port, err := hardware.OpenSerialPort(cfg.Serial.Port, cfg.Serial.Baud, l.WithTag("SERIAL"))
		if err != nil {
			l.Fatalf("Failed to open serial console: %v", err)
		}
		defer port.Close()
		console := command.NewConsole("serial", port, port, l.WithTag("SERIAL"), consoleHandler("serial"))
		go func() {
			if err := console.Run(ctx); err != nil {
				l.Errorf("Serial console stopped: %v", err)
			}
		}()
	}

	if cfg.Stdin {
		console := command.NewConsole("stdin", os.Stdin, os.Stdout, l.WithTag("STDIN"), consoleHandler("stdin"))
		go func() {
			if err := console.Run(ctx); err != nil {
				l.Errorf("Stdin console stopped: %v", err)
			}
		}()
	}

	if cfg.Buttons.Enabled {
		lines := hardware.DefaultButtonLines
		if len(cfg.Buttons.Lines) > 0 {
			if lines, err = hardware.ParseButtonLines(cfg.Buttons.Lines); err != nil {
				l.Fatalf("Invalid button mapping: %v", err)
			}
		}
		panel, err := hardware.NewButtonPanel(cfg.Buttons.Chip, lines, l.WithTag("BUTTONS"), emulator.PressButton)
		if err != nil {
			l.Fatalf("Invalid button mapping: %v", err)
		}
		if err := panel.Start(); err != nil {
			l.Fatalf("Failed to start button panel: %v", err)
		}
		defer panel.Close()
	}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := emulator.Run(ctx); err != nil {
			l.Errorf("Emulator stopped: %v", err)
		}
	}()

	l.Infof("Emulator started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		l.Infof("Received signal %v, shutting down...", sig)
	case <-runDone:
	}
	cancel()

	select {
	case <-runDone:
	case <-time.After(5 * time.Second):
		l.Warnf("Timeout waiting for emulator loop to stop")
	}
	l.Infof("Shutdown complete")
}
