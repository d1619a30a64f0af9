package client

import (
	"bufio"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/command-line-assistant/clad/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	plainOutput bool
	debugOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "c",
	Short:         "Command-line assistant client",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugOutput {
			logging.Configure(logging.LevelDebug)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&plainOutput, "plain", "p", false, "Disable colorized/markdown rendering")
	rootCmd.PersistentFlags().BoolVar(&debugOutput, "debug", false, "Enable debug logging")
	// Pre-register with the -v shorthand spec.md §6 wants; cobra only
	// auto-adds a shorthand-less --version when the flag doesn't exist yet.
	rootCmd.Flags().BoolP("version", "v", false, "Print the client version")
}

// Execute runs the client's root command and returns a process exit
// code, following spec.md §6's sysexits-style taxonomy.
func Execute() int {
	rootCmd.SilenceErrors = true
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var ce *clientError
	if errors.As(err, &ce) {
		render := NewRenderer(plainOutput)
		render.Error("%s", ce.err)
		return ce.code
	}

	fmt.Fprintln(os.Stderr, err)
	return ExitUsage
}

// clientError pairs an error with the exit code it should produce, so
// RunE handlers can return a single value that Execute then maps.
type clientError struct {
	code int
	err  error
}

func (e *clientError) Error() string { return e.err.Error() }
func (e *clientError) Unwrap() error { return e.err }

func exitErr(code int, err error) error {
	if err == nil {
		return nil
	}
	return &clientError{code: code, err: err}
}

// resolveUserID calls User.GetUserId for the process's effective user.
func resolveUserID(bus *BusClient) (string, error) {
	return bus.GetUserId(os.Geteuid())
}

// guessMimetype maps a file extension to a MIME type, falling back to
// the generic octet-stream type for unrecognized extensions.
func guessMimetype(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// machineArch reports the CPU architecture the way uname -m would,
// matching SystemInfo.arch's use of platform.machine() in the original.
func machineArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	default:
		return runtime.GOARCH
	}
}

// osRelease reads /etc/os-release and returns the NAME, VERSION_ID and
// ID fields SystemInfo needs, mirroring context.os_release's use of
// Python's platform.freedesktop_os_release().
func osRelease() (name, version, id string) {
	f, err := os.Open("/etc/os-release")
	if err != nil {
		return "Linux", "", "linux"
	}
	defer f.Close()

	fields := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[k] = strings.Trim(v, `"`)
	}

	name = fields["NAME"]
	version = fields["VERSION_ID"]
	id = fields["ID"]
	if name == "" {
		name = "Linux"
	}
	if id == "" {
		id = "linux"
	}
	return name, version, id
}
