// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package mariadb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/snapkeeper/internal/snapshot"
)

func TestReadPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "root-password")
	if err := os.WriteFile(path, []byte("s3cret\n"), 0o600); err != nil {
		t.Fatalf("failed to write secret: %v", err)
	}

	got, err := ReadPassword(path)
	if err != nil {
		t.Fatalf("ReadPassword() error: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("ReadPassword() = %q, want trailing newline stripped", got)
	}
}

func TestReadPasswordPreservesInnerWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "root-password")
	if err := os.WriteFile(path, []byte("pa ss!word\r\n"), 0o600); err != nil {
		t.Fatalf("failed to write secret: %v", err)
	}

	got, err := ReadPassword(path)
	if err != nil {
		t.Fatalf("ReadPassword() error: %v", err)
	}
	if got != "pa ss!word" {
		t.Errorf("ReadPassword() = %q", got)
	}
}

func TestReadPasswordMissingFile(t *testing.T) {
	_, err := ReadPassword(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, snapshot.ErrNoCredential) {
		t.Errorf("expected ErrNoCredential, got %v", err)
	}
}

func TestReadPasswordEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "root-password")
	if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
		t.Fatalf("failed to write secret: %v", err)
	}

	_, err := ReadPassword(path)
	if !errors.Is(err, snapshot.ErrNoCredential) {
		t.Errorf("expected ErrNoCredential for empty secret, got %v", err)
	}
}
