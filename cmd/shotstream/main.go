// Command shotstream runs live shot detection over IMU samples received on
// MQTT and publishes accepted shots and movement transitions back.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"

	"github.com/banshee-data/jumpshot/internal/calibration"
	"github.com/banshee-data/jumpshot/internal/config"
	"github.com/banshee-data/jumpshot/internal/db"
	"github.com/banshee-data/jumpshot/internal/engine"
	"github.com/banshee-data/jumpshot/internal/timeutil"
	"github.com/banshee-data/jumpshot/internal/version"
)

var (
	envFile        = flag.String("env", ".env", "Optional dotenv file with MQTT settings")
	configPath     = flag.String("config", "", "Tuning config JSON (defaults built in)")
	dbPath         = flag.String("db", "", "SQLite database holding calibration sets")
	calibrationKey = flag.String("key", "default", "Calibration set key")
	statusInterval = flag.Duration("status", 30*time.Second, "Interval between status log lines")
	showVersion    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("shotstream"))
		return
	}

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading %s: %v", *envFile, err)
	}
	settings := loadSettings(os.Getenv)

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(*configPath); err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
	}
	eng := engine.New(tuning)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *dbPath != "" {
		database, err := db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		eng.SetCalibration(calibration.Load(ctx, database, *calibrationKey))
		database.Close()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(settings.Broker).
		SetClientID(settings.ClientID).
		SetKeepAlive(60 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)
	if settings.Username != "" {
		opts.SetUsername(settings.Username)
		opts.SetPassword(settings.Password)
	}
	inbox := make(chan []byte, inboxSize)
	sess := newSession(eng, nil, settings.topics())

	opts.OnConnect = func(c mqtt.Client) {
		log.Printf("[MQTT] Connected to %s", settings.Broker)
		token := c.Subscribe(sess.topics.IMU, 0, func(_ mqtt.Client, msg mqtt.Message) {
			sess.enqueue(inbox, msg.Payload())
		})
		if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
			log.Printf("[MQTT] Subscribe to %s failed: %v", sess.topics.IMU, token.Error())
			return
		}
		log.Printf("[MQTT] Subscribed to %s", sess.topics.IMU)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Printf("[MQTT] Connection lost: %v (will auto-reconnect)", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Fatalf("MQTT connect timeout")
	}
	if err := token.Error(); err != nil {
		log.Fatalf("MQTT connect failed: %v", err)
	}
	defer client.Disconnect(1000)

	sess.pub = &pahoPublisher{client: client}
	clock := timeutil.RealClock{}
	ticker := clock.NewTicker(*statusInterval)
	defer ticker.Stop()

	log.Printf("shotstream %s: device %q, publishing to %s", version.Version, settings.Device, sess.topics.Shots)
	sess.loop(ctx, inbox, ticker)
	log.Printf("shotstream stopped: %s", sess.stats)
}
