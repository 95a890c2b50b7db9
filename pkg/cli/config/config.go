/* Copyright 2025 SolarCareer Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config reads and writes the cli config file
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/solarcareer/solarcareer/pkg/cli/consts"
	"github.com/solarcareer/solarcareer/pkg/cli/context"
	"gopkg.in/yaml.v2"
)

// S3 configures the S3 backup destination
type S3 struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	Prefix       string `yaml:"prefix,omitempty"`
	UsePathStyle bool   `yaml:"usePathStyle,omitempty"`
}

// SMTP configures the investor update mailer
type SMTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	From     string `yaml:"from"`
}

// Config holds the cli configuration
type Config struct {
	Editor             string `yaml:"editor"`
	APIEndpoint        string `yaml:"apiEndpoint"`
	EnableUpgradeCheck bool   `yaml:"enableUpgradeCheck"`
	BackupDir          string `yaml:"backupDir,omitempty"`
	BackupSchedule     string `yaml:"backupSchedule,omitempty"`
	S3                 S3     `yaml:"s3,omitempty"`
	SMTP               SMTP   `yaml:"smtp,omitempty"`
	GenAIKey           string `yaml:"genaiKey,omitempty"`
	GenAIModel         string `yaml:"genaiModel,omitempty"`
}

// GetPath returns the path to the config file
func GetPath(paths context.Paths) string {
	return filepath.Join(paths.ConfigDir(), consts.ConfigFilename)
}

// Read reads the config file
func Read(paths context.Paths) (Config, error) {
	var ret Config

	b, err := os.ReadFile(GetPath(paths))
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	if err := yaml.Unmarshal(b, &ret); err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return ret, nil
}

// Write writes the config to the config file
func Write(paths context.Paths, cf Config) error {
	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	if err := os.WriteFile(GetPath(paths), b, 0600); err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}
