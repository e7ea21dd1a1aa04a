package main

import (
	"fmt"
)

type settings struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Device   string
}

// loadSettings reads the MQTT settings from the environment.
func loadSettings(getenv func(string) string) settings {
	s := settings{
		Broker:   getenv("MQTT_BROKER"),
		ClientID: getenv("MQTT_CLIENT_ID"),
		Username: getenv("MQTT_USERNAME"),
		Password: getenv("MQTT_PASSWORD"),
		Device:   getenv("JUMPSHOT_DEVICE"),
	}
	if s.Broker == "" {
		s.Broker = "tcp://localhost:1883"
	}
	if s.Device == "" {
		s.Device = "phone"
	}
	if s.ClientID == "" {
		s.ClientID = fmt.Sprintf("jumpshot-%s", s.Device)
	}
	return s
}

type topics struct {
	IMU      string
	Shots    string
	Movement string
}

func (s settings) topics() topics {
	base := "jumpshot/" + s.Device
	return topics{
		IMU:      base + "/imu",
		Shots:    base + "/shots",
		Movement: base + "/movement",
	}
}
