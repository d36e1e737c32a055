package scanner

import (
	"database/sql"

	"github.com/sirupsen/logrus"

	"github.com/bleemesser/gpcat/internal/sidecar"
)

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// sidecarLogAdapter bridges *logrus.Entry to sidecar.Logger without a
// third-party adapter, since logrus.Entry already exposes matching
// Infof/Warnf/Errorf methods.
type sidecarLogAdapter struct {
	entry *logrus.Entry
}

func newSidecarLogAdapter(entry *logrus.Entry) sidecar.Logger {
	if entry == nil {
		return nil
	}
	return &sidecarLogAdapter{entry: entry}
}

func (a *sidecarLogAdapter) Infof(format string, args ...interface{})  { a.entry.Infof(format, args...) }
func (a *sidecarLogAdapter) Warnf(format string, args ...interface{})  { a.entry.Warnf(format, args...) }
func (a *sidecarLogAdapter) Errorf(format string, args ...interface{}) { a.entry.Errorf(format, args...) }
