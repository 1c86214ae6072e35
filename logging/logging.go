// Copyright 2022 Menabrea Labs Inc.

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging configures a process-wide structured logger. One call
// to New per process; consumers such as batch.CompileAll take the
// returned *logrus.Logger (or a field-bound Entry) as a parameter
// rather than reaching for a package-level global.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a JSON-formatted logger tagged with service and, when
// env is non-empty, an "env" field alongside it. Output goes to
// os.Stdout; callers running under a supervisor that already captures
// stdout get structured lines with no further wiring.
func New(service, env string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetLevel(logrus.InfoLevel)

	fields := logrus.Fields{"service": strings.TrimSpace(service)}
	if env = strings.TrimSpace(env); env != "" {
		fields["env"] = env
	}
	log.AddHook(&staticFieldsHook{fields: fields})
	return log
}

// staticFieldsHook stamps every log entry with the fields baked in at
// New time, the logrus equivalent of slog.Logger.With in the model
// this package is based on.
type staticFieldsHook struct {
	fields logrus.Fields
}

func (h *staticFieldsHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *staticFieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, exists := entry.Data[k]; !exists {
			entry.Data[k] = v
		}
	}
	return nil
}
