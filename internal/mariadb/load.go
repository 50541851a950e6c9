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

// Load decompresses the snapshot at path and streams it into the mysql
// client. It implements snapshot.Loader. The dump was taken with
// --databases, so the stream selects its own target database.
func (e *Engine) Load(ctx context.Context, path string) error {
	password, err := ReadPassword(e.opts.PasswordFile)
	if err != nil {
		return err
	}

	decompress := exec.CommandContext(ctx, "xz", "--decompress", "--stdout", path)

	load := exec.CommandContext(ctx, "mysql", e.hostArgs()...)
	load.Env = append(os.Environ(), "MYSQL_PWD="+password)

	var xzStderr, loadStderr bytes.Buffer
	decompress.Stderr = &xzStderr
	load.Stderr = &loadStderr

	pipe, err := decompress.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create decompress pipe: %w", err)
	}
	load.Stdin = pipe

	if err := load.Start(); err != nil {
		return fmt.Errorf("failed to start mysql: %w", err)
	}
	if err := decompress.Start(); err != nil {
		pipe.Close() //nolint:errcheck // Unblocks mysql stdin
		load.Wait()  //nolint:errcheck // Exit status is irrelevant here
		return fmt.Errorf("failed to start xz: %w", err)
	}

	decompressErr := decompress.Wait()
	loadErr := load.Wait()

	if decompressErr != nil {
		logging.Error().
			Err(decompressErr).
			Str("stderr", xzStderr.String()).
			Msg("xz exited with failure during restore")
		return fmt.Errorf("xz: %w: %s", decompressErr, xzStderr.String())
	}
	if loadErr != nil {
		logging.Error().
			Err(loadErr).
			Str("stderr", loadStderr.String()).
			Msg("mysql exited with failure during restore")
		return fmt.Errorf("mysql: %w: %s", loadErr, loadStderr.String())
	}

	return nil
}
