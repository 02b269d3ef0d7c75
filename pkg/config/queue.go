package config

import (
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// InitNATS initializes the NATS connection backing the relationship queue
func InitNATS(cfg *Config) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.NatsURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, err
	}

	log.Println("Successfully connected to NATS!")
	return nc, nil
}
