package capture

import (
	"bufio"
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/command-line-assistant/clad/internal/logging"
)

// ansiEscapeSeq strips ANSI escape sequences from recorded text, the Go
// translation of original_source/terminal/parser.py's ANSI_ESCAPE_SEQ.
var ansiEscapeSeq = regexp.MustCompile("\x1B(?:[@-Z\\\\-_]|\\[[0-?]*[ -/]*[@-~])")

// Record is one parsed command/output pair, cleaned of ANSI escapes.
type Record struct {
	Command string `json:"command"`
	Output  string `json:"output"`
}

// ParseTerminalOutput reads and cleans every record in the capture log.
// A missing file yields an empty slice rather than an error, matching
// original_source's behavior for a capture session that was never
// started. Parsing stops at the first malformed line, returning whatever
// was parsed so far.
func ParseTerminalOutput() []Record {
	var out []Record

	f, err := os.Open(LogFilePath())
	if err != nil {
		logging.Log.Warnf("capture: terminal output requested but couldn't find file at %s", LogFilePath())
		return out
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			logging.Log.Infof("capture: couldn't deserialize json output, stopping: %v", err)
			return out
		}

		rec.Command = cleanParsedText(rec.Command)
		rec.Output = cleanParsedText(rec.Output)

		// Ignore the trailing "exit" block the shell leaves behind.
		if strings.HasSuffix(rec.Output, "exit") {
			continue
		}

		out = append(out, rec)
	}

	return out
}

func cleanParsedText(text string) string {
	return strings.TrimSpace(ansiEscapeSeq.ReplaceAllString(text, ""))
}

// FindOutputByIndex returns the output at the given index in a parsed
// record list, or "" if the index is out of range. Negative indices
// count from the end (-1 is the most recent output), matching Python's
// list indexing in original_source/terminal/parser.py.
func FindOutputByIndex(index int, records []Record) string {
	if index < 0 {
		index += len(records)
	}
	if index < 0 || index >= len(records) {
		logging.Log.Warnf("capture: couldn't find a match for index %d", index)
		return ""
	}
	return records[index].Output
}
