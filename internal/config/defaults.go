package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "campuseats",
}

var defaultKafka = Kafka{
	Brokers:            nil,
	ShopStatusTopic:    "shop-status",
	NotificationsTopic: "notifications",
	GroupID:            "service-order",
}

var defaultAssignment = Assignment{
	AcceptWindow:  60 * time.Second,
	SweepInterval: 15 * time.Second,
}

var defaultOtp = Otp{
	TTL: 10 * time.Minute,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default kafka settings.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultAssignment returns the default assignment engine settings.
func DefaultAssignment() Assignment {
	return defaultAssignment
}

// DefaultOtp returns the default hand-off code settings.
func DefaultOtp() Otp {
	return defaultOtp
}
