package collector

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	_ "github.com/mattn/go-sqlite3"
)

// Sink receives every record read from the node.
type Sink interface {
	Write(Record) error
	Close() error
}

// ---- CSV ----

// CSVSink writes one row per record and flushes after each row.
type CSVSink struct {
	f *os.File
	w *csv.Writer
}

// OpenCSV creates (or truncates) path and writes the header.
func OpenCSV(path string) (*CSVSink, error) { return createCSV(path, Columns) }

func createCSV(path string, header []string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv create: %w", err)
	}
	s := &CSVSink{f: f, w: csv.NewWriter(f)}
	if err := s.writeRow(header); err != nil {
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

func (s *CSVSink) Write(r Record) error { return s.writeRow(r.Fields()) }

func (s *CSVSink) writeRow(row []string) error {
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}

func (s *CSVSink) Close() error {
	s.w.Flush()
	return errors.Join(s.w.Error(), s.f.Close())
}

// ---- SQLite ----

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS readings (
  station_id      TEXT NOT NULL,
  ts              TEXT NOT NULL,
  temperature_c   REAL,
  humidity_pct    REAL,
  ext_temperature REAL,
  accel_x         REAL,
  accel_y         REAL,
  accel_z         REAL,
  PRIMARY KEY (station_id, ts)
);
CREATE INDEX IF NOT EXISTS idx_readings_ts ON readings(ts);
`

const insertReadingSQL = `
INSERT OR REPLACE INTO readings
  (station_id, ts, temperature_c, humidity_pct, ext_temperature, accel_x, accel_y, accel_z)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteSink stores records in a readings table.
type SQLiteSink struct {
	db        *sql.DB
	stationID string
}

// OpenSQLite opens dsn with the sqlite3 driver and creates the schema.
// ":memory:" is accepted for tests.
func OpenSQLite(dsn, stationID string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db schema: %w", err)
	}
	return &SQLiteSink{db: db, stationID: stationID}, nil
}

func (s *SQLiteSink) Write(r Record) error {
	_, err := s.db.Exec(insertReadingSQL,
		s.stationID,
		r.Time.UTC().Format(time.RFC3339Nano),
		r.TemperatureC, r.HumidityPct, r.ExternalC,
		r.Accel.X, r.Accel.Y, r.Accel.Z,
	)
	if err != nil {
		return fmt.Errorf("db insert: %w", err)
	}
	return nil
}

// Count returns the number of stored readings.
func (s *SQLiteSink) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM readings WHERE station_id = ?`, s.stationID).Scan(&n)
	return n, err
}

func (s *SQLiteSink) Close() error { return s.db.Close() }

// ---- MQTT ----

// Telemetry is the JSON body published per record.
type Telemetry struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float32   `json:"temperature_c"`
	Humidity    float32   `json:"humidity_pct"`
	External    float32   `json:"ext_temperature_c"`
	AccelX      float32   `json:"accel_x"`
	AccelY      float32   `json:"accel_y"`
	AccelZ      float32   `json:"accel_z"`
	DeviceName  string    `json:"device,omitempty"`
}

// TelemetryTopic returns nanosense/<station>/telemetry.
func TelemetryTopic(stationID string) string {
	return "nanosense/" + stationID + "/telemetry"
}

func telemetryPayload(stationID, device string, r Record) ([]byte, error) {
	return json.Marshal(Telemetry{
		StationID:   stationID,
		Timestamp:   r.Time,
		Temperature: r.TemperatureC,
		Humidity:    r.HumidityPct,
		External:    r.ExternalC,
		AccelX:      r.Accel.X,
		AccelY:      r.Accel.Y,
		AccelZ:      r.Accel.Z,
		DeviceName:  device,
	})
}

// MQTTSink publishes telemetry with QoS 1.
type MQTTSink struct {
	client    mqtt.Client
	stationID string
	device    string
	logger    *slog.Logger
}

// DialMQTT connects to the broker named in cfg, waiting up to timeout for
// the first connection.
func DialMQTT(cfg Config, logger *slog.Logger, timeout time.Duration) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(timeout) {
		c.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect: timeout after %v", timeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &MQTTSink{client: c, stationID: cfg.StationID, device: cfg.DeviceName, logger: logger}, nil
}

func (s *MQTTSink) Write(r Record) error {
	data, err := telemetryPayload(s.stationID, s.device, r)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}
	topic := TelemetryTopic(s.stationID)
	tok := s.client.Publish(topic, 1, false, data)
	if !tok.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish telemetry: %w", err)
	}
	s.logger.Debug("published telemetry", "topic", topic)
	return nil
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
