package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/dialog-engine/pkg/scenario"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run validates every scenario file named in args. A directory argument
// validates each scenario file inside it. It returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintf(stderr, "Usage: validate <scenario.json|scenario.yaml|dir>...\n")
		return 1
	}

	files, err := expand(args)
	if err != nil {
		fmt.Fprintf(stderr, "Validation failed: %v\n", err)
		return 1
	}

	failed := 0
	for _, filename := range files {
		validator := &ScenarioValidator{}
		fmt.Fprintf(stdout, "Validating %s...\n", filename)

		err := validator.validateFile(filename)
		for _, w := range validator.warnings {
			fmt.Fprintf(stdout, "  ! %s\n", w)
		}
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed: %v\n", err)
			failed++
			continue
		}
		fmt.Fprintln(stdout, "Scenario file is valid!")
	}

	if failed > 0 {
		fmt.Fprintf(stderr, "%d of %d scenario files failed validation\n", failed, len(files))
		return 1
	}
	return 0
}

func expand(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		for _, e := range entries {
			path := filepath.Join(arg, e.Name())
			if _, err := scenario.FormatFromPath(path); e.IsDir() || err != nil {
				continue
			}
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no scenario files found")
	}
	return files, nil
}

type ScenarioValidator struct {
	errors   []string
	warnings []string
}

func (v *ScenarioValidator) validateFile(filename string) error {
	v.errors = nil
	v.warnings = nil

	// Validate filename format
	baseName := filepath.Base(filename)
	if _, err := scenario.FormatFromPath(baseName); err != nil {
		return err
	}
	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	if !isValidScenarioFilename(nameWithoutExt) {
		return fmt.Errorf("scenario filename '%s' must be lowercase snake_case (e.g., my_scenario.json, not my-scenario.json or MyScenario.json)", baseName)
	}

	s, err := scenario.Load(filename)
	if err != nil {
		return fmt.Errorf("file %s failed strict unmarshaling: %w", filename, err)
	}

	if err := s.Validate(); err != nil {
		for _, msg := range strings.Split(err.Error(), "\n") {
			v.addError(msg)
		}
	}
	v.warnings = s.Lint()

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *ScenarioValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidScenarioFilename(name string) bool {
	// Allow 'x.' prefix for experimental scenarios
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
