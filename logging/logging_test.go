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

package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/menabrealabs/marlowe-move/logging"
)

func TestNew_StampsServiceAndEnvOnEveryEntry(t *testing.T) {
	log := logging.New("compiler", "test")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.WithField("module", "swap_ada").Info("compiled")

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid JSON output, got %q: %v", buf.String(), err)
	}
	if decoded["service"] != "compiler" {
		t.Errorf("expected service=compiler, got %v", decoded["service"])
	}
	if decoded["env"] != "test" {
		t.Errorf("expected env=test, got %v", decoded["env"])
	}
	if decoded["module"] != "swap_ada" {
		t.Errorf("expected the per-call field to survive, got %v", decoded["module"])
	}
	if decoded["message"] != "compiled" {
		t.Errorf("expected message key remap, got %v", decoded["message"])
	}
}

func TestNew_OmitsEnvFieldWhenBlank(t *testing.T) {
	log := logging.New("compiler", "")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.Info("ready")

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid JSON output: %v", err)
	}
	if _, present := decoded["env"]; present {
		t.Errorf("did not expect an env field, got %v", decoded["env"])
	}
}
