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
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wacul/ptr"
)

func TestValidateAndAddDefaults(t *testing.T) {
	cnf := Configuration{}

	require.NoError(t, cnf.validateAndAddDefaults())
	assert.Equal(t, "Ledgerbook", cnf.ProjectName)
	assert.Equal(t, DEFAULT_DATA_FILE, cnf.DataFile)
	assert.Equal(t, "json", cnf.Storage.Driver)
	require.NotNil(t, cnf.Storage.SaveRetries)
	assert.Equal(t, DEFAULT_SAVE_RETRIES, *cnf.Storage.SaveRetries)
	assert.Equal(t, "warn", cnf.Log.Level)
	assert.Equal(t, "text", cnf.Log.Format)
}

func TestValidateAndAddDefaults_SQLite(t *testing.T) {
	cnf := Configuration{Storage: StorageConfig{Driver: " SQLite "}}

	require.NoError(t, cnf.validateAndAddDefaults())
	assert.Equal(t, "sqlite", cnf.Storage.Driver)
	assert.Equal(t, DEFAULT_SQLITE_DSN, cnf.Storage.DSN)
}

func TestValidateAndAddDefaults_KeepsExplicitRetries(t *testing.T) {
	cnf := Configuration{Storage: StorageConfig{SaveRetries: ptr.Int(0)}}

	require.NoError(t, cnf.validateAndAddDefaults())
	assert.Equal(t, 0, *cnf.Storage.SaveRetries)
}

func TestValidateAndAddDefaults_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cnf  Configuration
	}{
		{name: "unknown driver", cnf: Configuration{Storage: StorageConfig{Driver: "postgres"}}},
		{name: "negative retries", cnf: Configuration{Storage: StorageConfig{SaveRetries: ptr.Int(-1)}}},
		{name: "unknown log level", cnf: Configuration{Log: LogConfig{Level: "loud"}}},
		{name: "unknown log format", cnf: Configuration{Log: LogConfig{Format: "xml"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cnf.validateAndAddDefaults())
		})
	}
}

func writeConfig(t *testing.T, cnf Configuration) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DEFAULT_CONFIG_FILE)
	data, err := json.Marshal(cnf)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, Configuration{
		ProjectName: "Temp Project",
		DataFile:    "accounts.json",
		Log:         LogConfig{Level: "debug"},
	})
	t.Setenv("LEDGERBOOK_PROJECT_NAME", "Env Project")
	t.Setenv("LEDGERBOOK_STORAGE_SAVE_RETRIES", "5")

	require.NoError(t, loadConfigFromFile(path))

	loaded, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "Env Project", loaded.ProjectName)
	assert.Equal(t, "accounts.json", loaded.DataFile)
	assert.Equal(t, "debug", loaded.Log.Level)
	assert.Equal(t, 5, *loaded.Storage.SaveRetries)
}

func TestLoadConfigFromFile_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("LEDGERBOOK_DATA_FILE", "from-env.json")

	require.NoError(t, loadConfigFromFile(filepath.Join(t.TempDir(), "absent.json")))

	loaded, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", loaded.DataFile)
	assert.Equal(t, "json", loaded.Storage.Driver)
}

func TestLoadConfigFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), DEFAULT_CONFIG_FILE)
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	assert.Error(t, loadConfigFromFile(path))
}

func TestLoadConfigFromFile_UnreadablePath(t *testing.T) {
	// A path through a regular file fails to stat with ENOTDIR, not ENOENT.
	parent := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(parent, []byte("{}"), 0o600))

	err := loadConfigFromFile(filepath.Join(parent, DEFAULT_CONFIG_FILE))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestInitConfig(t *testing.T) {
	path := writeConfig(t, Configuration{ProjectName: "InitConfig Test", Session: SessionConfig{Accessible: true}})

	require.NoError(t, InitConfig(path))

	loaded, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "InitConfig Test", loaded.ProjectName)
	assert.True(t, loaded.Session.Accessible)
}

func TestMockConfig(t *testing.T) {
	mock := &Configuration{ProjectName: "mocked"}
	MockConfig(mock)

	loaded, err := Fetch()
	require.NoError(t, err)
	assert.Same(t, mock, loaded)
}

func TestSetupLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	defer logrus.SetFormatter(&logrus.TextFormatter{})

	cnf := &Configuration{Log: LogConfig{Level: "debug", Format: "json"}}
	require.NoError(t, cnf.SetupLogging())
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)

	cnf.Log.Level = "chatty"
	assert.Error(t, cnf.SetupLogging())
}
