// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package mariadb

import (
	"fmt"
	"os"
	"strings"

	"github.com/tomtom215/snapkeeper/internal/snapshot"
)

// ReadPassword reads the database password from the secret file at path.
// The file is read once per invocation; trailing whitespace is stripped
// so files written with a final newline work as-is.
//
// Any failure wraps snapshot.ErrNoCredential: without a credential no
// dump or restore is attempted at all.
func ReadPassword(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", snapshot.ErrNoCredential, path, err)
	}

	password := strings.TrimRight(string(data), "\r\n")
	if password == "" {
		return "", fmt.Errorf("%w: %s is empty", snapshot.ErrNoCredential, path)
	}

	return password, nil
}
