package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// parseExcel converts a workbook to CSV via unoconv and flattens every sheet
// into one text blob. Multi-sheet workbooks get a header line per sheet.
func parseExcel(ctx context.Context, input []byte, ext string) ([]byte, error) {
	sheets, err := excelToCSV(ctx, input, ext)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(sheets))
	for name := range sheets {
		names = append(names, name)
	}
	sort.Strings(names)

	var result []byte
	for _, name := range names {
		parsed, err := ParseCSV(sheets[name])
		if err != nil {
			continue
		}

		if len(result) > 0 {
			result = append(result, '\n')
		}
		if len(sheets) > 1 {
			result = append(result, []byte("--- "+name+" ---\n")...)
		}
		result = append(result, parsed...)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("workbook contains no readable sheets")
	}
	return result, nil
}

// excelToCSV shells out to unoconv. One CSV per sheet lands in the temp dir:
// input.csv for single-sheet workbooks, input-SheetName.csv otherwise.
func excelToCSV(ctx context.Context, input []byte, ext string) (map[string][]byte, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("nanoid: %w", err)
	}
	tmpDir := filepath.Join(os.TempDir(), "doculens-excel-"+id)
	if err := os.MkdirAll(tmpDir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir tmp: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	excelPath := filepath.Join(tmpDir, fmt.Sprintf("input.%s", ext))
	if err := os.WriteFile(excelPath, input, 0o600); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	if _, err := exec.LookPath("unoconv"); err != nil {
		return nil, fmt.Errorf("unoconv not found in PATH: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 600*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "unoconv", "-f", "csv", excelPath)
	cmd.Dir = tmpDir
	cmd.Env = append(os.Environ(), "LANG=C.UTF-8", "LC_ALL=C.UTF-8")
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("unoconv timed out")
	}
	if err != nil {
		return nil, fmt.Errorf("unoconv failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	matches, err := filepath.Glob(filepath.Join(tmpDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("glob csv: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no CSV files produced")
	}

	result := make(map[string][]byte, len(matches))
	for _, f := range matches {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", f, err)
		}

		base := strings.TrimSuffix(filepath.Base(f), ".csv")
		sheetName := strings.TrimPrefix(base, "input-")
		if sheetName == "input" {
			sheetName = "Sheet1"
		}

		result[sheetName] = content
	}

	return result, nil
}
