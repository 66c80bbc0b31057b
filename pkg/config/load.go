// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"sigs.k8s.io/yaml"
)

// ErrNoCredentials is returned when neither the environment nor a config file
// provide the vCenter connection.
var ErrNoCredentials = errors.New(
	"vCenter credentials must be provided in environment variables or a config file")

// MissingFieldsError is returned when a source of configuration lacks one or
// more required settings.
type MissingFieldsError struct {
	Source string
	Fields []string
}

func (e MissingFieldsError) Error() string {
	return fmt.Sprintf(
		"%s is missing the following required settings: %s",
		e.Source, strings.Join(e.Fields, ", "))
}

type fileConfig struct {
	VCenter VCenter `json:"vcenter"`
}

// LoadEnvFile loads the variables from a dotenv file into the process
// environment. Variables that are already set are not overwritten.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %q: %w", path, err)
	}
	return nil
}

// Load returns a Config initialized from the environment. The vCenter
// connection comes from the VCENTER_* variables when any of the required ones
// is set, and otherwise from the YAML file at path.
func Load(path string) (Config, error) {
	config := FromEnv()

	if HasVCenterEnv() {
		if missing := missingVCenterEnv(); len(missing) > 0 {
			return Config{}, MissingFieldsError{
				Source: "environment",
				Fields: missing,
			}
		}
		return config, nil
	}

	if path == "" {
		return Config{}, ErrNoCredentials
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s does not exist", ErrNoCredentials, path)
		}
		return Config{}, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	vc, err := parseFile(data, config.VCenter)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	if missing := vc.Missing(); len(missing) > 0 {
		return Config{}, MissingFieldsError{
			Source: path,
			Fields: missing,
		}
	}
	config.VCenter = vc

	return config, nil
}

func parseFile(data []byte, defaults VCenter) (VCenter, error) {
	fc := fileConfig{VCenter: defaults}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return VCenter{}, err
	}
	return fc.VCenter, nil
}

// Missing returns the names of the required fields that are empty.
func (v VCenter) Missing() []string {
	var missing []string
	if v.Host == "" {
		missing = append(missing, "host")
	}
	if v.User == "" {
		missing = append(missing, "user")
	}
	if v.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}
