/*
Copyright 2024 Ledgerbook Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/wacul/ptr"
)

const (
	DEFAULT_CONFIG_FILE  = "ledgerbook.json"
	DEFAULT_DATA_FILE    = "ledger.json"
	DEFAULT_SQLITE_DSN   = "ledger.db"
	DEFAULT_SAVE_RETRIES = 3
)

var ConfigStore atomic.Value

type StorageConfig struct {
	Driver      string `json:"driver" envconfig:"LEDGERBOOK_STORAGE_DRIVER"`
	DSN         string `json:"dsn" envconfig:"LEDGERBOOK_STORAGE_DSN"`
	SaveRetries *int   `json:"save_retries" envconfig:"LEDGERBOOK_STORAGE_SAVE_RETRIES"`
}

type LogConfig struct {
	Level  string `json:"level" envconfig:"LEDGERBOOK_LOG_LEVEL"`
	Format string `json:"format" envconfig:"LEDGERBOOK_LOG_FORMAT"`
}

type SessionConfig struct {
	// Accessible switches the menu to plain line prompts, for screen readers and pipes.
	Accessible bool `json:"accessible" envconfig:"LEDGERBOOK_SESSION_ACCESSIBLE"`
}

type MetricsConfig struct {
	Textfile string `json:"textfile" envconfig:"LEDGERBOOK_METRICS_TEXTFILE"`
}

type Configuration struct {
	ProjectName string        `json:"project_name" envconfig:"LEDGERBOOK_PROJECT_NAME"`
	DataFile    string        `json:"data_file" envconfig:"LEDGERBOOK_DATA_FILE"`
	Storage     StorageConfig `json:"storage"`
	Log         LogConfig     `json:"log"`
	Session     SessionConfig `json:"session"`
	Metrics     MetricsConfig `json:"metrics"`
}

func (s StorageConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required, validation.In("json", "sqlite")),
		validation.Field(&s.DSN, validation.When(s.Driver == "sqlite", validation.Required)),
		validation.Field(&s.SaveRetries, validation.Min(0), validation.Max(10)),
	)
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&l.Format, validation.In("text", "json")),
	)
}

func (cnf Configuration) Validate() error {
	return validation.ValidateStruct(&cnf,
		validation.Field(&cnf.DataFile, validation.When(cnf.Storage.Driver == "json", validation.Required)),
		validation.Field(&cnf.Storage),
		validation.Field(&cnf.Log),
	)
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not found, will use defaults and env variables")
	} else {
		return fmt.Errorf("read config file %s: %w", file, err)
	}

	// override config from environment variables
	err = envconfig.Process("ledgerbook", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return nil
}

// InitConfig loads configFile, applies environment overrides and stores the result for Fetch.
func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded. Create a json file called ledgerbook.json or set LEDGERBOOK_ env variables")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.DataFile = strings.TrimSpace(cnf.DataFile)
	cnf.Storage.Driver = strings.ToLower(strings.TrimSpace(cnf.Storage.Driver))
	cnf.Storage.DSN = strings.TrimSpace(cnf.Storage.DSN)
	cnf.Log.Level = strings.ToLower(strings.TrimSpace(cnf.Log.Level))
	cnf.Log.Format = strings.ToLower(strings.TrimSpace(cnf.Log.Format))

	if cnf.ProjectName == "" {
		cnf.ProjectName = "Ledgerbook"
	}
	if cnf.Storage.Driver == "" {
		cnf.Storage.Driver = "json"
	}
	if cnf.DataFile == "" {
		cnf.DataFile = DEFAULT_DATA_FILE
	}
	if cnf.Storage.Driver == "sqlite" && cnf.Storage.DSN == "" {
		cnf.Storage.DSN = DEFAULT_SQLITE_DSN
		log.Printf("Warning: sqlite dsn not specified. Setting default value: %s", DEFAULT_SQLITE_DSN)
	}
	if cnf.Storage.SaveRetries == nil {
		cnf.Storage.SaveRetries = ptr.Int(DEFAULT_SAVE_RETRIES)
	}
	if cnf.Log.Level == "" {
		cnf.Log.Level = "warn"
	}
	if cnf.Log.Format == "" {
		cnf.Log.Format = "text"
	}

	return cnf.Validate()
}

// SetupLogging configures the standard logrus logger from the log section.
func (cnf *Configuration) SetupLogging() error {
	level, err := logrus.ParseLevel(cnf.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	if cnf.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	log.SetFlags(0)
	log.SetOutput(logrus.StandardLogger().WriterLevel(logrus.InfoLevel))
}
