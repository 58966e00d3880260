/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package log

import (
	"context"
	"io"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const maxFieldLen = 61

var (
	rootLogger = logrus.NewEntry(logrus.StandardLogger())

	// L accesses the current logger from the context
	L = loggerFromContext

	initAtLeastOnce atomic.Bool
)

type ctxLogKey struct{}

func InitConfig(conf *harnessconf.LogConfig) {
	initAtLeastOnce.Store(true)
	def := harnessconf.LogDefaults

	SetLevel(confutil.StringNotEmpty(conf.Level, *def.Level))

	switch confutil.StringNotEmpty(conf.Output, *def.Output) {
	case "file":
		filename := confutil.StringNotEmpty(conf.File.Filename, *def.File.Filename)
		rootLogger.Infof("Logs diverted to %s", filename)
		maxSizeBytes := confutil.ByteSize(conf.File.MaxSize, 0, *def.File.MaxSize)
		maxAge := confutil.DurationMin(conf.File.MaxAge, 0, *def.File.MaxAge)
		SetOutput(&lumberjack.Logger{
			Filename:   filename,
			MaxSize:    int(math.Ceil(float64(maxSizeBytes) / 1024 / 1024)),
			MaxBackups: confutil.IntMin(conf.File.MaxBackups, 0, *def.File.MaxBackups),
			MaxAge:     int(math.Ceil(float64(maxAge) / float64(time.Hour) / 24)),
			Compress:   confutil.Bool(conf.File.Compress, *def.File.Compress),
		})
	case "stdout":
		SetOutput(os.Stdout)
	default:
		SetOutput(os.Stderr)
	}

	setFormatting(&Formatting{
		Format:             confutil.StringNotEmpty(conf.Format, *def.Format),
		DisableColor:       confutil.Bool(conf.DisableColor, *def.DisableColor),
		ForceColor:         confutil.Bool(conf.ForceColor, *def.ForceColor),
		TimestampFormat:    confutil.StringNotEmpty(conf.TimeFormat, *def.TimeFormat),
		UTC:                confutil.Bool(conf.UTC, *def.UTC),
		JSONTimestampField: confutil.StringNotEmpty(conf.JSON.TimestampField, *def.JSON.TimestampField),
		JSONLevelField:     confutil.StringNotEmpty(conf.JSON.LevelField, *def.JSON.LevelField),
		JSONMessageField:   confutil.StringNotEmpty(conf.JSON.MessageField, *def.JSON.MessageField),
		JSONFuncField:      confutil.StringNotEmpty(conf.JSON.FuncField, *def.JSON.FuncField),
		JSONFileField:      confutil.StringNotEmpty(conf.JSON.FileField, *def.JSON.FileField),
	})
}

// SetOutput redirects all harness logging
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

func IsTraceEnabled() bool {
	return logrus.IsLevelEnabled(logrus.TraceLevel)
}

// EnsureInit applies defaults if nothing has configured logging yet, so unit tests get sane output
func EnsureInit() {
	if !initAtLeastOnce.Load() {
		InitConfig(&harnessconf.LogConfig{})
	}
}

// WithLogField adds the specified field to the logger in the context, truncating long values
func WithLogField(ctx context.Context, key, value string) context.Context {
	EnsureInit()
	if len(value) > maxFieldLen {
		value = value[0:maxFieldLen] + "..."
	}
	return context.WithValue(ctx, ctxLogKey{}, loggerFromContext(ctx).WithField(key, value))
}

// WithScenario tags the context with the position of a case in the scenario tree.
// Empty elements are skipped.
func WithScenario(ctx context.Context, suite, group, caseName string) context.Context {
	for _, f := range [][2]string{{"suite", suite}, {"group", group}, {"case", caseName}} {
		if f[1] != "" {
			ctx = WithLogField(ctx, f[0], f[1])
		}
	}
	return ctx
}

func loggerFromContext(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(ctxLogKey{})
	if logger == nil {
		return rootLogger
	}
	return logger.(*logrus.Entry)
}

var levels = map[string]logrus.Level{
	"error":   logrus.ErrorLevel,
	"warn":    logrus.WarnLevel,
	"warning": logrus.WarnLevel,
	"info":    logrus.InfoLevel,
	"debug":   logrus.DebugLevel,
	"trace":   logrus.TraceLevel,
}

// GetLevel names the current level the way SetLevel accepts it
func GetLevel() string {
	l := logrus.GetLevel()
	if l == logrus.WarnLevel {
		return "warn"
	}
	if l < logrus.ErrorLevel || l > logrus.TraceLevel {
		return "info"
	}
	return l.String()
}

// SetLevel falls back to info for anything unrecognized
func SetLevel(level string) {
	l, ok := levels[strings.ToLower(level)]
	if !ok {
		l = logrus.InfoLevel
	}
	logrus.SetLevel(l)
}

type Formatting struct {
	Format             string
	DisableColor       bool
	ForceColor         bool
	TimestampFormat    string
	UTC                bool
	JSONTimestampField string
	JSONLevelField     string
	JSONMessageField   string
	JSONFuncField      string
	JSONFileField      string
}

type utcFormat struct {
	f logrus.Formatter
}

func (utc *utcFormat) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return utc.f.Format(e)
}

func setFormatting(format *Formatting) {
	var formatter logrus.Formatter
	switch format.Format {
	case "json":
		formatter = &logrus.JSONFormatter{
			TimestampFormat: format.TimestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  format.JSONTimestampField,
				logrus.FieldKeyLevel: format.JSONLevelField,
				logrus.FieldKeyMsg:   format.JSONMessageField,
				logrus.FieldKeyFunc:  format.JSONFuncField,
				logrus.FieldKeyFile:  format.JSONFileField,
			},
		}
		logrus.SetReportCaller(false)
	case "detailed":
		formatter = &logrus.TextFormatter{
			DisableColors:   format.DisableColor,
			ForceColors:     format.ForceColor,
			TimestampFormat: format.TimestampFormat,
			FullTimestamp:   true,
		}
		logrus.SetReportCaller(true)
	default:
		formatter = &prefixed.TextFormatter{
			DisableColors:   format.DisableColor,
			ForceColors:     format.ForceColor,
			TimestampFormat: format.TimestampFormat,
			ForceFormatting: true,
			FullTimestamp:   true,
		}
		logrus.SetReportCaller(false)
	}
	if format.UTC {
		formatter = &utcFormat{f: formatter}
	}
	logrus.SetFormatter(formatter)
}
