package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/canopen-tools/edsod/pkg/eds"
)

const sampleFile = "../../../pkg/eds/testdata/sample.eds"

const warnEDS = `[1000]
ParameterName=Device type
DataType=0x0007
AccessType=ro
DefaultValue=0x191
Colour=blue
`

// noConfig returns flags that point the config loader at a missing file so
// that tests never read the user's configuration.
func noConfig(t *testing.T, args ...string) []string {
	t.Helper()
	return append([]string{"-config", filepath.Join(t.TempDir(), "none.yaml")}, args...)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunShow_Text(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunShow(noConfig(t, "-node-id", "2", sampleFile), stdout, stderr)

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d; stderr: %s", exitSuccess, exitCode, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"Device: Example Automation Sample IO module",
		"Node: 2",
		"[0x1017] Producer heartbeat time = 0x0",
		"[0x1018] Identity object (RECORD)",
		"COB-ID",
		"Total: 18 entries",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRunShow_JSON(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunShow(noConfig(t, "-format", "json", "-node-id", "2", sampleFile), stdout, stderr)

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d; stderr: %s", exitSuccess, exitCode, stderr.String())
	}

	var output ShowOutput
	if err := json.Unmarshal(stdout.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}
	if len(output.Entries) != 18 {
		t.Errorf("expected 18 entries, got %d", len(output.Entries))
	}
	if output.NodeID != 2 {
		t.Errorf("expected node ID 2, got %d", output.NodeID)
	}

	var found bool
	for _, e := range output.Entries {
		if e.Index != "0x1400" {
			continue
		}
		for _, v := range e.Variables {
			if v.SubIndex == 1 {
				found = true
				if v.Default != "0x202" || !v.Relative {
					t.Errorf("COB-ID = %+v, want default 0x202 relative", v)
				}
			}
		}
	}
	if !found {
		t.Error("0x1400 sub 1 not in output")
	}
}

func TestRunShow_YAML(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunShow(noConfig(t, "-f", "yaml", sampleFile), stdout, stderr)

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d; stderr: %s", exitSuccess, exitCode, stderr.String())
	}
	if !strings.Contains(stdout.String(), "vendorName: Example Automation") {
		t.Errorf("expected vendorName in YAML output, got:\n%s", stdout.String())
	}
}

func TestRunShow_Index(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunShow(noConfig(t, "-index", "Identity object", sampleFile), stdout, stderr)

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d; stderr: %s", exitSuccess, exitCode, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "Identity object (RECORD)") || !strings.Contains(out, "Total: 1 entries") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Producer heartbeat time") {
		t.Errorf("filtered output should not contain other entries:\n%s", out)
	}
}

func TestRunShow_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no file", nil, "no file specified"},
		{"missing file", []string{"missing.eds"}, "source not found"},
		{"bad format", []string{"-format", "xml", sampleFile}, "unknown format"},
		{"bad index", []string{"-index", "0x9999", sampleFile}, "entry not found"},
		{"bad node id", []string{"-node-id", "200", sampleFile}, "invalid node id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}

			exitCode := RunShow(noConfig(t, tt.args...), stdout, stderr)

			if exitCode != exitCommandError {
				t.Errorf("expected exit code %d, got %d", exitCommandError, exitCode)
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("expected %q in stderr, got: %s", tt.wantErr, stderr.String())
			}
		})
	}
}

func TestRunShow_ConfigFormat(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "format: json\n")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunShow([]string{"-config", cfg, sampleFile}, stdout, stderr)

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d; stderr: %s", exitSuccess, exitCode, stderr.String())
	}
	if !json.Valid(stdout.Bytes()) {
		t.Errorf("config format json should produce JSON, got:\n%s", stdout.String())
	}
}

func TestRunConvert_Stdout(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunConvert(noConfig(t, sampleFile), stdout, stderr)

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d; stderr: %s", exitSuccess, exitCode, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "[1018sub1]") {
		t.Errorf("expected [1018sub1] section, got:\n%s", out)
	}
	if strings.Contains(out, "[DeviceComissioning]") {
		t.Error("EDS output should not contain commissioning")
	}
}

func TestRunConvert_DCFFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "node2.dcf")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunConvert(noConfig(t, "-doc", "dcf", "-node-id", "2", "-o", output, sampleFile), stdout, stderr)

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d; stderr: %s", exitSuccess, exitCode, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Converted") {
		t.Errorf("expected confirmation, got: %s", stdout.String())
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(data), "[DeviceComissioning]") || !strings.Contains(string(data), "NodeID=2") {
		t.Errorf("DCF output lacks commissioning section:\n%s", data)
	}

	// The DCF carries the node ID, so it imports without one.
	dict, err := eds.ImportFile(output, 0)
	if err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	v, err := dict.Variable(0x1400, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v.Default() != uint64(0x202) {
		t.Errorf("re-imported default = %v, want 0x202", v.Default())
	}
}

func TestRunConvert_Errors(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	if code := RunConvert(noConfig(t, "-doc", "xdd", sampleFile), stdout, stderr); code != exitCommandError {
		t.Errorf("invalid doc type: expected exit code %d, got %d", exitCommandError, code)
	}
	if code := RunConvert(noConfig(t), stdout, stderr); code != exitCommandError {
		t.Errorf("no file: expected exit code %d, got %d", exitCommandError, code)
	}
}

func TestRunLint_Clean(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunLint(noConfig(t, "-strict", sampleFile), stdout, stderr)

	if exitCode != exitSuccess {
		t.Errorf("expected exit code %d, got %d; output: %s", exitSuccess, exitCode, stdout.String())
	}
	if !strings.Contains(stdout.String(), "clean") {
		t.Errorf("expected clean result, got: %s", stdout.String())
	}
}

func TestRunLint_Warnings(t *testing.T) {
	file := writeFile(t, "warn.eds", warnEDS)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	exitCode := RunLint(noConfig(t, file), stdout, stderr)

	if exitCode != exitSuccess {
		t.Errorf("warnings without -strict: expected exit code %d, got %d", exitSuccess, exitCode)
	}
	out := stdout.String()
	if !strings.Contains(out, "1 warnings") || !strings.Contains(out, "WARNING [1000]") {
		t.Errorf("expected warning report, got:\n%s", out)
	}

	stdout.Reset()
	exitCode = RunLint(noConfig(t, "-strict", file), stdout, stderr)
	if exitCode != exitValidation {
		t.Errorf("warnings with -strict: expected exit code %d, got %d", exitValidation, exitCode)
	}
}

func TestRunLint_JSON(t *testing.T) {
	file := writeFile(t, "warn.eds", warnEDS)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	RunLint(noConfig(t, "-json", sampleFile, file), stdout, stderr)

	var results []LintOutput
	if err := json.Unmarshal(stdout.Bytes(), &results); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Clean {
		t.Errorf("sample should be clean: %+v", results[0])
	}
	if results[1].Clean || results[1].Warnings != 1 {
		t.Errorf("warn.eds should have one warning: %+v", results[1])
	}
}

func TestRunLint_Failures(t *testing.T) {
	bad := writeFile(t, "bad.eds", "[2000]\nDataType=0x0005\n")

	tests := []struct {
		name string
		file string
		want string
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.eds"), "source not found"},
		{"malformed", bad, "malformed section"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}

			exitCode := RunLint(noConfig(t, tt.file), stdout, stderr)

			if exitCode != exitValidation {
				t.Errorf("expected exit code %d, got %d", exitValidation, exitCode)
			}
			if !strings.Contains(stdout.String(), "import failed") || !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("expected %q in output, got:\n%s", tt.want, stdout.String())
			}
		})
	}
}

func TestRunLint_NoFiles(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunLint(noConfig(t), stdout, stderr)

	if exitCode != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, exitCode)
	}
	if !strings.Contains(stderr.String(), "no files specified") {
		t.Errorf("expected 'no files specified' in stderr, got: %s", stderr.String())
	}
}

func TestRunLintCaptureAndLog(t *testing.T) {
	file := writeFile(t, "warn.eds", warnEDS)
	capture := filepath.Join(t.TempDir(), "lint.cbor")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	if code := RunLint(noConfig(t, "-log", capture, sampleFile, file), stdout, stderr); code != exitSuccess {
		t.Fatalf("lint failed with %d: %s", code, stderr.String())
	}

	stdout.Reset()
	exitCode := RunLog([]string{"-level", "warning", capture}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d; stderr: %s", exitSuccess, exitCode, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "WARNING") || !strings.Contains(out, "[1000]Colour") {
		t.Errorf("expected the unknown key warning, got:\n%s", out)
	}
	if strings.Contains(out, "SUMMARY") {
		t.Errorf("summary events are INFO and should be filtered:\n%s", out)
	}

	stdout.Reset()
	RunLog([]string{"-category", "summary", capture}, stdout, stderr)
	if got := strings.Count(stdout.String(), "SUMMARY"); got != 2 {
		t.Errorf("expected 2 summary events, got %d:\n%s", got, stdout.String())
	}

	stdout.Reset()
	RunLog([]string{"-stats", "-json", capture}, stdout, stderr)
	var stats LogStats
	if err := json.Unmarshal(stdout.Bytes(), &stats); err != nil {
		t.Fatalf("invalid stats JSON: %v\n%s", err, stdout.String())
	}
	if stats.Imports != 2 || stats.Levels["WARNING"] != 1 || len(stats.Sources) != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	stdout.Reset()
	RunLog([]string{"-json", "-source", file, capture}, stdout, stderr)
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	for _, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("invalid JSON line: %s", line)
		}
		if !strings.Contains(line, "warn.eds") {
			t.Errorf("source filter leaked event: %s", line)
		}
	}
}

func TestRunLog_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no file", nil},
		{"missing file", []string{"missing.cbor"}},
		{"bad level", []string{"-level", "loud", "x.cbor"}},
		{"bad category", []string{"-category", "nope", "x.cbor"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			if code := RunLog(tt.args, stdout, stderr); code != exitCommandError {
				t.Errorf("expected exit code %d, got %d", exitCommandError, code)
			}
		})
	}
}

func TestRunCompile(t *testing.T) {
	cache := t.TempDir()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunCompile(noConfig(t, "-cache", cache, "-node-id", "2", sampleFile), stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d; stderr: %s", exitSuccess, exitCode, stderr.String())
	}
	if !strings.Contains(stdout.String(), "compiled (18 entries)") {
		t.Errorf("expected compiled, got: %s", stdout.String())
	}

	stdout.Reset()
	RunCompile(noConfig(t, "-cache", cache, "-node-id", "2", sampleFile), stdout, stderr)
	if !strings.Contains(stdout.String(), "cached (18 entries)") {
		t.Errorf("expected cache hit, got: %s", stdout.String())
	}

	stdout.Reset()
	RunCompile(noConfig(t, "-cache", cache, "-list"), stdout, stderr)
	out := stdout.String()
	if !strings.Contains(out, "Total: 1 snapshots") || !strings.Contains(out, "node 2") {
		t.Errorf("unexpected listing:\n%s", out)
	}
}

func TestRunCompile_YAML(t *testing.T) {
	yamlOut := filepath.Join(t.TempDir(), "sample.yaml")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunCompile(noConfig(t, "-cache", t.TempDir(), "-yaml", yamlOut, sampleFile), stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d; stderr: %s", exitSuccess, exitCode, stderr.String())
	}

	data, err := os.ReadFile(yamlOut)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "name: Identity object") {
		t.Errorf("YAML snapshot lacks entries:\n%s", data)
	}
}

func TestRunCompile_Errors(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	if code := RunCompile(noConfig(t, "-cache", t.TempDir()), stdout, stderr); code != exitCommandError {
		t.Errorf("no files: expected exit code %d, got %d", exitCommandError, code)
	}

	code := RunCompile(noConfig(t, "-cache", t.TempDir(), "-yaml", "x.yaml", sampleFile, sampleFile), stdout, stderr)
	if code != exitCommandError {
		t.Errorf("-yaml with two files: expected exit code %d, got %d", exitCommandError, code)
	}

	code = RunCompile(noConfig(t, "-cache", t.TempDir(), "missing.eds"), stdout, stderr)
	if code != exitValidation {
		t.Errorf("missing file: expected exit code %d, got %d", exitValidation, code)
	}
}

func TestRunBrowse_Script(t *testing.T) {
	saved := filepath.Join(t.TempDir(), "out.dcf")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	script := "get 0x1017; set 0x1017 0x3E8; get 0x1017; info; save " + saved + "; quit; get 0x1018/1"
	exitCode := RunBrowse(noConfig(t, "-node-id", "2", "-c", script, sampleFile), stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d; stderr: %s", exitSuccess, exitCode, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"Producer heartbeat time = 0x0\n",
		"OK\n",
		"Producer heartbeat time = 0x3E8 (1000)\n",
		"Vendor:   Example Automation (0x0000027A)",
		"Node:     2",
		"Saved " + saved + " (dcf)",
		"Exiting...",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Vendor-ID =") {
		t.Error("commands after quit should not run")
	}

	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "ParameterValue=0x3E8") {
		t.Errorf("saved DCF lacks the configured value:\n%s", data)
	}
}
