// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator instance. The instance caches
// struct metadata, so sharing one across calls is both safe and faster.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration for structural and semantic errors.
// Struct tags cover per-field constraints; cross-field rules are checked
// by hand below.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return translateValidationErrors(verrs)
		}
		return err
	}

	if !c.Database.All && c.Database.Name == "" {
		return fmt.Errorf("database.name is required unless database.all is set")
	}

	if !c.Database.All && c.Database.Name == ServerWideName {
		return fmt.Errorf("database.name %q is reserved for server-wide dumps", ServerWideName)
	}

	// A named target alongside database.all would dump one database but
	// publish it under the server-wide label. Reject instead of guessing.
	if c.Database.All && c.Database.Name != "" {
		return fmt.Errorf("database.name must be empty when database.all is set")
	}

	// A server-wide connection selects no default database, so an
	// unqualified probe table can never resolve.
	if c.Database.All && !strings.Contains(c.Database.ProbeTable, ".") {
		return fmt.Errorf("database.probe_table must be schema-qualified (db.table) when database.all is set")
	}

	if strings.ContainsAny(c.Database.Name, "/\\ ") {
		return fmt.Errorf("database.name must not contain path separators or spaces")
	}

	return nil
}

// translateValidationErrors flattens validator errors into one readable error.
func translateValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Namespace(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s fails validation %s", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
