// Copyright 2025 Soukdata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/soukdata/souq/core"
)

// maxLineBytes bounds a single JSONL line. Descriptions from some sites run
// long, so this is far above the bufio.Scanner default.
const maxLineBytes = 1 << 20

// ReadRecords decodes raw records from JSON-lines input. Blank lines are
// skipped. Malformed lines are logged and counted but never abort the read;
// the second return value is the number of lines dropped that way.
func ReadRecords(r io.Reader) ([]core.RawRecord, int, error) {
	logger := slog.Default().With("component", "ingestion-reader")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []core.RawRecord
	malformed := 0
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var record core.RawRecord
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			malformed++
			logger.Warn("skipping malformed record", "line", line, "err", err)
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return records, malformed, fmt.Errorf("reading records: %w", err)
	}

	return records, malformed, nil
}

// ReadRecordsFile reads JSON-lines raw records from a file.
func ReadRecordsFile(path string) ([]core.RawRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	return ReadRecords(f)
}
