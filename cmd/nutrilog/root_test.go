package nutrilog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/saadjs/nutrilog/internal/model"
)

// resetFlags restores every flag to its default so one Execute does not leak into the
// next through the package-level flag variables.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"NUTRILOG_DB_DRIVER", "NUTRILOG_DB_PATH", "NUTRILOG_REDIS_ADDR", "NUTRILOG_TIMEZONE"} {
		t.Setenv(key, "")
	}
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if !strings.Contains(out, "meal") || !strings.Contains(out, "summary") {
		t.Fatalf("expected command list in help, got %q", out)
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nutrilog.db")
	for i := 0; i < 2; i++ {
		out, err := execute(t, "--db", path, "init")
		if err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
		if !strings.Contains(out, path) {
			t.Fatalf("expected db path in output, got %q", out)
		}
	}
}

func TestMealLoggingEndToEnd(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nutrilog.db")
	run := func(args ...string) string {
		t.Helper()
		out, err := execute(t, append([]string{"--db", path, "--tz", "UTC"}, args...)...)
		if err != nil {
			t.Fatalf("%v: %v\n%s", args, err, out)
		}
		return out
	}

	run("nutrient", "add", "--name", "Iron", "--unit", "mg")
	run("nutrient", "add", "--name", "Protein", "--unit", "g")
	run("ingredient", "add", "--name", "Lentils")
	run("ingredient", "add", "--name", "Rice")
	run("ingredient", "set", "Lentils", "Iron", "--amount", "3.3")
	run("ingredient", "set", "Lentils", "Protein", "--amount", "9")
	run("ingredient", "set", "Rice", "Iron", "--amount", "1500", "--unit", "mcg")
	run("dish", "add", "--name", "Lentil stew")
	run("dish", "ingredient", "add", "Lentil stew", "Lentils", "--grams", "150")
	run("dish", "ingredient", "add", "Lentil stew", "Rice", "--grams", "100")
	run("ageband", "add", "--min-months", "12", "--max-months", "35", "--description", "toddler")
	run("serving-rule", "set", "1", "--grams", "180")
	run("target", "set", "1", "iron", "--daily", "7")
	run("patient", "add", "--name", "Ada", "--birth-date", "2024-01-15")

	show := run("dish", "show", "lentil stew")
	if !strings.Contains(show, "Iron (mg)\t6.45") {
		t.Fatalf("expected whole recipe iron, got %q", show)
	}

	out := run("meal", "log", "--patient", "1", "--dish", "lentil stew", "--slot", "lunch", "--date", "2026-03-10", "--time", "12:30", "--json")
	var entry model.MealLogEntry
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("decode meal json: %v\n%s", err, out)
	}
	if entry.ServingGrams != 180 || entry.NutrientAmounts[1] != 4.64 || entry.NutrientAmounts[2] != 9.72 {
		t.Fatalf("unexpected logged entry %+v", entry)
	}

	out = run("meal", "log", "--patient", "1", "--dish", "1", "--portions", "0.5", "--date", "2026-03-10", "--time", "18:00")
	if !strings.Contains(out, "Iron (mg)\t3.23") {
		t.Fatalf("expected half portion iron, got %q", out)
	}

	out = run("summary", "day", "--patient", "1", "--date", "2026-03-10")
	if !strings.Contains(out, "TOTAL\t2\t7.87\t16.47") {
		t.Fatalf("unexpected daily summary %q", out)
	}
	out = run("summary", "status", "--patient", "1", "--date", "2026-03-10")
	if !strings.Contains(out, "Iron (mg)\t7.87\t7\t112.43%\t0.00") {
		t.Fatalf("unexpected status %q", out)
	}

	out = run("trend", "--patient", "1", "--from", "2026-03", "--format", "csv", "--threshold", "iron=4")
	if !strings.Contains(out, "Iron >= 4 mg (%)") || !strings.Contains(out, "2026-03,2026-03-01,2026-03-31,31,1,2,7.87,7.87,50,16.47,16.47") {
		t.Fatalf("unexpected trend csv %q", out)
	}

	xlsxPath := filepath.Join(dir, "trend.xlsx")
	run("report", "trend", "--patient", "1", "--from", "2026-03", "--format", "xlsx", "--out", xlsxPath)
	if info, err := os.Stat(xlsxPath); err != nil || info.Size() == 0 {
		t.Fatalf("expected xlsx report, got %v", err)
	}

	run("doctor")

	out = run("meal", "list", "--patient", "1", "--date", "2026-03-10")
	if strings.Count(out, "Lentil stew") != 2 {
		t.Fatalf("expected two meals, got %q", out)
	}
	run("meal", "delete", "2")
	out = run("summary", "day", "--patient", "1", "--date", "2026-03-10")
	if !strings.Contains(out, "TOTAL\t1\t4.64\t9.72") {
		t.Fatalf("deleted meal still counted: %q", out)
	}
}

func TestMealLogRejectsBadServingFlags(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nutrilog.db")
	base := []string{"--db", path, "meal", "log", "--patient", "1", "--dish", "x"}

	if _, err := execute(t, append(base, "--portions", "1", "--grams", "100")...); err == nil || !strings.Contains(err.Error(), "only one") {
		t.Fatalf("expected conflicting flags error, got %v", err)
	}
	if _, err := execute(t, append(base, "--serving", "grams")...); err == nil || !strings.Contains(err.Error(), "requires --grams") {
		t.Fatalf("expected missing grams error, got %v", err)
	}
	if _, err := execute(t, append(base, "--serving", "bowl")...); err == nil {
		t.Fatalf("expected invalid serving error")
	}
	if _, err := execute(t, append(base, "--portions", "0")...); err == nil || !strings.Contains(err.Error(), "portion") {
		t.Fatalf("expected zero portion to be rejected, got %v", err)
	}
	if _, err := execute(t, append(base, "--portions", "NaN")...); err == nil || !strings.Contains(err.Error(), "portion") {
		t.Fatalf("expected NaN portion to be rejected, got %v", err)
	}
	if _, err := execute(t, append(base, "--grams", "Inf")...); err == nil || !strings.Contains(err.Error(), "grams") {
		t.Fatalf("expected infinite grams to be rejected, got %v", err)
	}
}
