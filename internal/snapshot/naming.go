// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package snapshot

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// stampLayout is the date stamp embedded in canonical filenames. Lexical
// order of stamps coincides with chronological order.
const stampLayout = "2006-01-02"

// canonicalExt is the extension of a published snapshot.
const canonicalExt = ".xz"

// CanonicalName returns the published filename for a snapshot of database
// taken at t: <database>_<YYYY-MM-DD>.xz. Two snapshots of the same
// database on the same day share a canonical name; the later publish
// replaces the earlier via rename.
func CanonicalName(database string, t time.Time) string {
	return fmt.Sprintf("%s_%s%s", database, t.Format(stampLayout), canonicalExt)
}

// tempName returns a uniquely named, dot-prefixed work file for an
// in-flight dump. The dot prefix keeps it out of the canonical pattern, so
// the Pruner and Selector never see it.
func tempName(database string, t time.Time) string {
	return fmt.Sprintf(".%s_%s.%s.tmp", database, t.Format(stampLayout), uuid.NewString())
}

// canonicalPattern matches canonical snapshot filenames for exactly the
// given database. Unrelated files sharing the directory, temp files, and
// snapshots of other databases never match.
func canonicalPattern(database string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(database) + `_(\d{4}-\d{2}-\d{2})` + regexp.QuoteMeta(canonicalExt) + `$`)
}

// parseStamp extracts the date stamp from a canonical filename, or ""
// when the name does not match the pattern for database.
func parseStamp(database, filename string) string {
	m := canonicalPattern(database).FindStringSubmatch(filename)
	if m == nil {
		return ""
	}
	return m[1]
}

// isTempFile reports whether the directory entry is an in-flight or
// orphaned dump work file for the given database.
func isTempFile(database, filename string) bool {
	return strings.HasPrefix(filename, "."+database+"_") && strings.HasSuffix(filename, ".tmp")
}
