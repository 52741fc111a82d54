package main

type config struct {
	API              apiConfig              `yaml:"api"`
	ServiceDiscovery serviceDiscoveryConfig `yaml:"serviceDiscovery"`
	Jaeger           jaegerConfig           `yaml:"jaeger"`
	Kafka            kafkaConfig            `yaml:"kafka"`
	Database         databaseConfig         `yaml:"database"`
}

type apiConfig struct {
	Port int `yaml:"port"`
}

type serviceDiscoveryConfig struct {
	Consul consulConfig `yaml:"consul"`
}

type consulConfig struct {
	Address string `yaml:"address"`
}

type jaegerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type kafkaConfig struct {
	Address string `yaml:"address"`
	GroupID string `yaml:"groupId"`
	Topic   string `yaml:"topic"`
}

type databaseConfig struct {
	// DSN of the MySQL store. Empty selects the in-memory store.
	DSN string `yaml:"dsn"`
}
