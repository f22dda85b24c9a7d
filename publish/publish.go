// Package publish sends every reading the clock shows to an MQTT broker as JSON.
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ajanata/deskclock/clockapp"
	"github.com/ajanata/deskclock/readout"
)

const publishTimeout = 5 * time.Second

// Payload is the JSON document published per reading.
type Payload struct {
	Time        string  `json:"time"`
	Meridiem    string  `json:"meridiem,omitempty"`
	Date        string  `json:"date"`
	Day         string  `json:"day"`
	Temperature float64 `json:"temperature"`
	SensorOK    bool    `json:"sensor_ok"`
}

func NewPayload(r clockapp.Reading) Payload {
	return Payload{
		Time:        readout.Time(r.DateTime),
		Meridiem:    readout.Meridiem(r.DateTime, r.HourFormat),
		Date:        readout.Date(r.DateTime),
		Day:         r.DateTime.Weekday.String(),
		Temperature: r.Temperature,
		SensorOK:    r.SensorOK,
	}
}

type Publisher struct {
	client mqtt.Client
	topic  string
}

// New prepares a client for broker, a URL such as tcp://host:1883. Nothing connects until Connect.
func New(broker, clientID, topic string) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	opts.OnConnect = func(_ mqtt.Client) {
		log.Info().Str("broker", broker).Msg("publish: connected")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("publish: connection lost")
	}

	return NewWithClient(mqtt.NewClient(opts), topic)
}

func NewWithClient(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

func (p *Publisher) Connect() error {
	token := p.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish: failed to connect to MQTT broker: %w", token.Error())
	}
	return nil
}

// Publish sends r at QoS 0, retained so a new subscriber sees the latest reading.
func (p *Publisher) Publish(r clockapp.Reading) error {
	payload, err := json.Marshal(NewPayload(r))
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	token := p.client.Publish(p.topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("publish: timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	log.Debug().Str("topic", p.topic).Msg("publish: reading sent")
	return nil
}

func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
