// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package mariadb

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/tomtom215/snapkeeper/internal/logging"
)

// dumpArgs builds the mysqldump argument list. --databases (and
// --all-databases) embed the CREATE DATABASE and USE statements, so a
// later load needs no target database selected.
func (e *Engine) dumpArgs() []string {
	args := append(e.hostArgs(),
		"--single-transaction",
		"--quick",
		"--routines",
		"--triggers",
	)
	if e.opts.Database == "" {
		return append(args, "--all-databases")
	}
	return append(args, "--databases", e.opts.Database)
}

// Dump streams the full logical contents of the target through xz into
// the file at path. It implements snapshot.Dumper: path is a temp file
// owned by the Producer, never a canonical name.
func (e *Engine) Dump(ctx context.Context, path string) error {
	password, err := ReadPassword(e.opts.PasswordFile)
	if err != nil {
		return err
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // Path is a producer-owned temp file
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}
	defer out.Close() //nolint:errcheck // Double close after pipeline success is harmless

	dump := exec.CommandContext(ctx, "mysqldump", e.dumpArgs()...)
	dump.Env = append(os.Environ(), "MYSQL_PWD="+password)

	compress := exec.CommandContext(ctx, "xz", "--compress", "--stdout")
	compress.Stdout = out

	var dumpStderr, xzStderr bytes.Buffer
	dump.Stderr = &dumpStderr
	compress.Stderr = &xzStderr

	pipe, err := dump.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create dump pipe: %w", err)
	}
	compress.Stdin = pipe

	if err := compress.Start(); err != nil {
		return fmt.Errorf("failed to start xz: %w", err)
	}
	if err := dump.Start(); err != nil {
		// Reap the already-started compressor.
		pipe.Close()       //nolint:errcheck // Unblocks xz stdin
		compress.Wait()    //nolint:errcheck // Exit status is irrelevant here
		return fmt.Errorf("failed to start mysqldump: %w", err)
	}

	dumpErr := dump.Wait()
	compressErr := compress.Wait()

	if dumpErr != nil {
		logging.Error().
			Err(dumpErr).
			Str("stderr", dumpStderr.String()).
			Msg("mysqldump exited with failure")
		return fmt.Errorf("mysqldump: %w: %s", dumpErr, dumpStderr.String())
	}
	if compressErr != nil {
		logging.Error().
			Err(compressErr).
			Str("stderr", xzStderr.String()).
			Msg("xz exited with failure")
		return fmt.Errorf("xz: %w: %s", compressErr, xzStderr.String())
	}

	if err := out.Sync(); err != nil {
		return fmt.Errorf("failed to sync dump file: %w", err)
	}
	return out.Close()
}
