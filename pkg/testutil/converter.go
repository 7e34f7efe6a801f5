package testutil

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"testing"
)

// Environment understood by the fake converter.
const (
	envFakeConverter = "SCENEDB_FAKE_CONVERTER"
	envFakeFail      = "SCENEDB_FAKE_FAIL"
	envFakeSilent    = "SCENEDB_FAKE_SILENT"
)

// FakeConverter makes the running test binary act as the external geometry
// converter. The calling package must declare
//
//	func TestHelperProcess(t *testing.T) { testutil.RunFakeConverter() }
//
// Ids listed in fail exit non-zero after writing a partial blob; ids listed
// in silent exit zero without producing anything.
func FakeConverter(t *testing.T, fail, silent []string) (command string, args []string) {
	t.Helper()
	t.Setenv(envFakeConverter, "1")
	t.Setenv(envFakeFail, strings.Join(fail, ","))
	t.Setenv(envFakeSilent, strings.Join(silent, ","))
	return os.Args[0], []string{"-test.run=TestHelperProcess", "--"}
}

// RunFakeConverter is the body of TestHelperProcess. It returns immediately
// unless the binary was started by FakeConverter.
func RunFakeConverter() {
	if os.Getenv(envFakeConverter) != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: obj2utf8 in.obj out.utf8 out.json (got %q)\n", args)
		os.Exit(2)
	}
	os.Exit(fakeConvert(args[0], args[1], args[2]))
}

func fakeConvert(objName, utf8Name, jsonName string) int {
	id := strings.TrimSuffix(objName, ".obj")
	obj, err := os.ReadFile(objName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", objName, err)
		return 1
	}

	if listed(envFakeFail, id) {
		_ = os.WriteFile(utf8Name, obj[:len(obj)/2], 0o644)
		fmt.Fprintf(os.Stderr, "obj2utf8: malformed face in %s\n", objName)
		return 3
	}
	if listed(envFakeSilent, id) {
		return 0
	}

	mats, err := countMaterials(id + ".mtl")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read material library: %v\n", err)
		return 1
	}
	if err := os.WriteFile(utf8Name, append([]byte("UTF8:"), obj...), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := WriteDescriptor(jsonName, mats); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "%s: %d materials\n", objName, mats)
	return 0
}

func countMaterials(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n := 0
	s := bufio.NewScanner(f)
	for s.Scan() {
		if strings.HasPrefix(s.Text(), "newmtl ") {
			n++
		}
	}
	return n, s.Err()
}

func listed(env, id string) bool {
	for _, v := range strings.Split(os.Getenv(env), ",") {
		if v != "" && v == id {
			return true
		}
	}
	return false
}
