package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	AWS struct {
		Region          string `env:"REGION" envDefault:"ap-southeast-2"`
		AccessKeyID     string `env:"ACCESS_KEY_ID"`
		SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	} `envPrefix:"AWS_"`
	DynamoDB struct {
		// Endpoint overrides the SDK endpoint, for DynamoDB Local.
		Endpoint            string `env:"ENDPOINT"`
		ShiftsTable         string `env:"SHIFTS_TABLE" envDefault:"Shifts"`
		WorkInfosTable      string `env:"WORK_INFOS_TABLE" envDefault:"WorkInfos"`
		ShiftTemplatesTable string `env:"SHIFT_TEMPLATES_TABLE" envDefault:"ShiftTemplates"`
		QueryTimeout        int    `env:"QUERY_TIMEOUT" envDefault:"10"`
	} `envPrefix:"DYNAMODB_"`
	JWT struct {
		Secret string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// return only the first error to keep the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
