package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/renalcare/internal/insight"
)

// envelope decodes a JSON response with a typed payload.
type envelope[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

func decode[T any](t *testing.T, out string) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	return env
}

func TestLogin_RegistersAndActivates(t *testing.T) {
	f := newCLIFixture(t)

	out := f.mustRun("login", "--email", "Ann@Example.com ", "--name", "Ann")
	assert.Equal(t, "Logged in as Ann <Ann@Example.com>\n", out)

	out = f.mustRun("whoami", "--format", "json")
	env := decode[map[string]any](t, out)
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, "id-1", env.Data["id"])
	assert.Equal(t, "Ann@Example.com", env.Data["email"])
}

func TestLogin_ExistingUserWins(t *testing.T) {
	f := newCLIFixture(t)
	f.mustRun("login", "--email", "ann@example.com", "--name", "Ann")
	f.mustRun("logout")

	out := f.mustRun("login", "--email", "ann@example.com", "--name", "Someone Else")
	assert.Equal(t, "Logged in as Ann <ann@example.com>\n", out)
}

func TestLogin_DefaultNameFromEmail(t *testing.T) {
	f := newCLIFixture(t)
	out := f.mustRun("login", "--email", "bob@example.com")
	assert.Equal(t, "Logged in as bob <bob@example.com>\n", out)
}

func TestLogin_BlankEmailIsCommandError(t *testing.T) {
	f := newCLIFixture(t)
	out, err := f.run("login", "--email", "   ")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestLogin_EmailFlagRequired(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run("login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestLogout_KeepsData(t *testing.T) {
	f := newCLIFixture(t)
	f.seed()

	assert.Equal(t, "Logged out\n", f.mustRun("logout"))

	out, err := f.run("whoami")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]: no active user")

	f.mustRun("login", "--email", "ann@example.com")
	out = f.mustRun("meds", "list", "--format", "json")
	meds := decode[[]map[string]any](t, out)
	require.Len(t, meds.Data, 1)
	assert.Equal(t, "Losartan", meds.Data[0]["name"])
}

func TestUsers_MarksActive(t *testing.T) {
	f := newCLIFixture(t)
	f.mustRun("login", "--email", "ann@example.com", "--name", "Ann")
	f.mustRun("login", "--email", "bob@example.com", "--name", "Bob")

	out := f.mustRun("users")
	assert.Contains(t, out, "EMAIL")
	assert.Regexp(t, `(?m)^\*\s+bob@example\.com\s+Bob`, out)
	assert.Regexp(t, `(?m)^\s+ann@example\.com\s+Ann`, out)

	out = f.mustRun("users", "--format", "json")
	users := decode[[]map[string]any](t, out)
	require.Len(t, users.Data, 2)
	assert.Equal(t, "ann@example.com", users.Data[0]["email"])
}

func TestCommands_RequireActiveUser(t *testing.T) {
	for _, args := range [][]string{
		{"vitals", "add", "--sys", "120"},
		{"vitals", "list"},
		{"meds", "add", "--name", "Losartan"},
		{"meds", "list"},
		{"meals", "add", "--description", "Rice"},
		{"dashboard"},
		{"profile", "update", "--age", "60"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			f := newCLIFixture(t)
			out, err := f.run(args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "E002")
		})
	}
}

func TestMedsAdd_DefaultReminder(t *testing.T) {
	f := newCLIFixture(t)
	f.mustRun("login", "--email", "ann@example.com")

	out := f.mustRun("meds", "add", "--name", "Calcitriol", "--dosage", "0.25ug")
	assert.Equal(t, "Added Calcitriol (0.25ug) id-2, reminders 08:00\n", out)
}

func TestMedsAdd_RejectsBadReminder(t *testing.T) {
	f := newCLIFixture(t)
	f.mustRun("login", "--email", "ann@example.com")

	out, err := f.run("meds", "add", "--name", "Losartan", "--reminder", "25:00", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	env := decode[any](t, out)
	assert.Equal(t, "error", env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeValidation, env.Error.Code)
	fields, ok := env.Error.Details.([]any)
	require.True(t, ok, "details lists the violated fields")
	require.NotEmpty(t, fields)
	assert.Equal(t, "reminders.0", fields[0].(map[string]any)["path"])

	out = f.mustRun("meds", "list")
	assert.Equal(t, "No medications\n", out)
}

func TestMedsDelete(t *testing.T) {
	f := newCLIFixture(t)
	f.seed()

	out, err := f.run("meds", "delete", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]: medication nope: record not found")

	assert.Equal(t, "Deleted medication id-3\n", f.mustRun("meds", "delete", "id-3"))
	assert.Equal(t, "No medications\n", f.mustRun("meds", "list"))
}

func TestMedsTaken(t *testing.T) {
	f := newCLIFixture(t)
	f.seed()

	out := f.mustRun("meds", "taken", "id-3")
	assert.Equal(t, "Marked Losartan taken at 2024-03-10T09:30:00Z\n", out)
}

func TestMedsList_Golden(t *testing.T) {
	f := newCLIFixture(t)
	f.seed()
	assertGolden(t, "meds_list", f.mustRun("meds", "list"))
}

func TestVitals_PartialReading(t *testing.T) {
	f := newCLIFixture(t)
	f.mustRun("login", "--email", "ann@example.com")

	out := f.mustRun("vitals", "add", "--weight", "63.2", "--format", "json")
	env := decode[map[string]any](t, out)
	assert.Equal(t, 63.2, env.Data["weight"])
	assert.Equal(t, "", env.Data["urineProtein"])
	assert.NotContains(t, env.Data, "eGFR")

	out = f.mustRun("vitals", "list")
	assert.Contains(t, out, "2024-03-10T09:30:00Z")
	assert.Contains(t, out, "63.2")
}

func TestVitals_RejectsOutOfRange(t *testing.T) {
	f := newCLIFixture(t)
	f.mustRun("login", "--email", "ann@example.com")

	out, err := f.run("vitals", "add", "--edema", "5")
	require.Error(t, err)
	assert.Contains(t, out, "E004")
}

func TestMeals_List(t *testing.T) {
	f := newCLIFixture(t)
	f.seed()

	out := f.mustRun("meals", "list", "--format", "yaml")
	var got struct {
		Status string           `yaml:"status"`
		Data   []map[string]any `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Steamed fish", got.Data[0]["description"])
	assert.Equal(t, 380, got.Data[0]["sodiumMg"])
}

func TestProfile_UpdateAndShow(t *testing.T) {
	f := newCLIFixture(t)
	f.mustRun("login", "--email", "ann@example.com", "--name", "Ann")

	out := f.mustRun("profile", "update", "--age", "58", "--gender", "female", "--weight", "62")
	assert.Equal(t, "Updated profile for ann@example.com\n", out)

	out = f.mustRun("profile", "--format", "json")
	env := decode[map[string]any](t, out)
	assert.Equal(t, float64(58), env.Data["age"])
	assert.Equal(t, "female", env.Data["gender"])
	assert.Equal(t, "Ann", env.Data["name"])

	_, err := f.run("profile", "update", "--stage", "6")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestDashboard_Golden(t *testing.T) {
	f := newCLIFixture(t)
	f.seed()
	assertGolden(t, "dashboard", f.mustRun("dashboard"))
}

func TestDashboard_Structured(t *testing.T) {
	f := newCLIFixture(t)
	f.seed()

	out := f.mustRun("dashboard", "--format", "json")
	env := decode[map[string]any](t, out)
	assert.Equal(t, "1 years 2 months", env.Data["diagnosedFor"])
	assert.Equal(t, map[string]any{"sys": float64(132), "dia": float64(85)}, env.Data["bloodPressure"])
	assert.Equal(t, float64(1), env.Data["vitalCount"])
}

func TestRx_ImportListDelete(t *testing.T) {
	f := newCLIFixture(t)
	f.mustRun("login", "--email", "ann@example.com")

	dir := t.TempDir()
	medsFile := filepath.Join(dir, "meds.yaml")
	require.NoError(t, os.WriteFile(medsFile, []byte(`
- name: Losartan
  dosage: 50mg
  frequency: daily
  reminders: ["08:00"]
- name: Febuxostat
  dosage: 20mg
  frequency: daily
`), 0o644))
	scan := filepath.Join(dir, "rx.png")
	require.NoError(t, os.WriteFile(scan, []byte("\x89PNG\r\n\x1a\nfake"), 0o644))

	out := f.mustRun("rx", "import", "--file", scan, "--meds", medsFile, "--type", "integrated", "--date", "2024-03-01")
	assert.Equal(t, "Archived prescription id-2 (integrated) with 2 medication(s)\n", out)

	out = f.mustRun("rx", "list", "--format", "json")
	rxs := decode[[]map[string]any](t, out)
	require.Len(t, rxs.Data, 1)
	assert.Equal(t, "rx.png", rxs.Data[0]["fileName"])
	assert.Equal(t, "image/png", rxs.Data[0]["mimeType"])
	assert.Empty(t, rxs.Data[0]["fileData"], "payload is not echoed")

	out = f.mustRun("meds", "list", "--format", "json")
	meds := decode[[]map[string]any](t, out)
	require.Len(t, meds.Data, 2)
	assert.Equal(t, "id-2", meds.Data[0]["sourcePrescriptionId"])
	assert.Equal(t, []any{"08:00"}, meds.Data[1]["reminders"])

	f.mustRun("rx", "delete", "id-2")
	assert.Equal(t, "No prescriptions\n", f.mustRun("rx", "list"))
	meds = decode[[]map[string]any](t, f.mustRun("meds", "list", "--format", "json"))
	assert.Len(t, meds.Data, 2, "medications outlive their prescription")
}

func TestRx_ImportMissingMedsFile(t *testing.T) {
	f := newCLIFixture(t)
	f.mustRun("login", "--email", "ann@example.com")

	out, err := f.run("rx", "import", "--meds", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E006")
}

func TestRxScan_PreviewThenApply(t *testing.T) {
	f := newCLIFixture(t).withInsight(&stubInsight{
		scan: &insight.PrescriptionScan{
			PrescriptionDate: "2024-02-01",
			Type:             "chinese",
			Medications:      []insight.ScannedMedication{{Name: "Huangkui", Dosage: "5 caps", Frequency: "tid"}},
		},
	})
	f.mustRun("login", "--email", "ann@example.com")
	doc := filepath.Join(t.TempDir(), "rx.jpg")
	require.NoError(t, os.WriteFile(doc, []byte("jpeg"), 0o644))

	out := f.mustRun("rx", "scan", doc)
	assert.Contains(t, out, "Huangkui 5 caps, tid")
	assert.Contains(t, out, "--apply")
	assert.Equal(t, "No medications\n", f.mustRun("meds", "list"))

	out = f.mustRun("rx", "scan", doc, "--apply")
	assert.Equal(t, "Archived prescription id-2 (chinese) with 1 medication(s)\n", out)
	assert.Contains(t, f.mustRun("meds", "list"), "Huangkui")
}

func TestInsights(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		f := newCLIFixture(t)
		f.mustRun("login", "--email", "ann@example.com")
		out, err := f.run("insights")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "E101")
	})

	t.Run("no vitals", func(t *testing.T) {
		f := newCLIFixture(t).withInsight(&stubInsight{report: "ok"})
		f.mustRun("login", "--email", "ann@example.com")
		out, err := f.run("insights")
		require.Error(t, err)
		assert.Contains(t, out, "E102")
	})

	t.Run("report", func(t *testing.T) {
		f := newCLIFixture(t).withInsight(&stubInsight{report: "Blood pressure is above target.\n"})
		f.seed()
		assert.Equal(t, "Blood pressure is above target.\n", f.mustRun("insights"))
	})

	t.Run("malformed", func(t *testing.T) {
		f := newCLIFixture(t).withInsight(&stubInsight{err: insight.ErrMalformedResponse})
		f.seed()
		out, err := f.run("insights")
		require.Error(t, err)
		assert.Contains(t, out, ErrCodeModelResponse)
	})
}

func TestRecommend(t *testing.T) {
	f := newCLIFixture(t)
	f.mustRun("login", "--email", "ann@example.com")

	out := f.mustRun("recommend")
	assert.Contains(t, out, "(built-in suggestions)")

	f.withInsight(&stubInsight{recs: []insight.Recommendation{{Name: "Tofu stir-fry", Tags: []string{"low sodium"}}}})
	out = f.mustRun("recommend", "--format", "json")
	env := decode[map[string]any](t, out)
	assert.Equal(t, false, env.Data["fallback"])
	recs := env.Data["recommendations"].([]any)
	require.Len(t, recs, 1)
	assert.Equal(t, "Tofu stir-fry", recs[0].(map[string]any)["name"])
}

func TestLabScan_Apply(t *testing.T) {
	egfr := 55.0
	f := newCLIFixture(t).withInsight(&stubInsight{
		lab: &insight.LabReport{BloodPressureSys: 120, BloodPressureDia: 80, EGFR: &egfr, ReportDate: "2024-03-01"},
	})
	f.mustRun("login", "--email", "ann@example.com")
	doc := filepath.Join(t.TempDir(), "lab.pdf")
	require.NoError(t, os.WriteFile(doc, []byte("%PDF-1.4"), 0o644))

	out := f.mustRun("lab", "scan", doc)
	assert.Contains(t, out, "Report date:    2024-03-01")
	assert.Contains(t, out, "eGFR:           55")

	out = f.mustRun("lab", "scan", doc, "--apply", "--format", "json")
	env := decode[map[string]any](t, out)
	assert.Equal(t, "id-2", env.Data["id"])
	assert.Equal(t, "2024-03-01T00:00:00Z", env.Data["timestamp"])
	assert.Equal(t, "negative", env.Data["urineProtein"])
	assert.Equal(t, 55.0, env.Data["eGFR"])
}

func TestLabScan_NothingRead(t *testing.T) {
	f := newCLIFixture(t).withInsight(&stubInsight{lab: &insight.LabReport{}})
	f.mustRun("login", "--email", "ann@example.com")
	doc := filepath.Join(t.TempDir(), "blank.png")
	require.NoError(t, os.WriteFile(doc, []byte("png"), 0o644))

	out, err := f.run("lab", "scan", doc)
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeNothingRead)
}

func TestLabScan_MissingFile(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run("lab", "scan", filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRemind_Once(t *testing.T) {
	f := newCLIFixture(t)
	f.seed()

	f.clock.Set(time.Date(2024, time.March, 10, 8, 0, 10, 0, time.UTC))
	out := f.mustRun("remind", "--once")
	assert.Equal(t, "Sent 1 reminder(s)\n", out)
	assert.Equal(t, []string{"Time to take Losartan (50mg)"}, f.notifier.Bodies())

	f.clock.Set(time.Date(2024, time.March, 10, 8, 1, 0, 0, time.UTC))
	out = f.mustRun("remind", "--once", "--format", "json")
	env := decode[map[string]int](t, out)
	assert.Equal(t, 0, env.Data["sent"])
}

func TestRemind_RejectsInterval(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run("remind", "--interval", "2m")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRemind_RunsUntilCanceledAndSeesNewRecords(t *testing.T) {
	f := newCLIFixture(t)
	f.seed()
	f.clock.Set(time.Date(2024, time.March, 10, 8, 0, 5, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := f.runContext(ctx, "remind", "--interval", "5ms")
		done <- result{out, err}
	}()

	assert.Eventually(t, func() bool { return len(f.notifier.Sent()) == 1 }, 2*time.Second, 5*time.Millisecond)

	// Written by another invocation while the scheduler is armed.
	f.mustRun("meds", "add", "--name", "Febuxostat", "--dosage", "20mg", "--reminder", "20:00")
	f.clock.Set(time.Date(2024, time.March, 10, 20, 0, 5, 0, time.UTC))

	assert.Eventually(t, func() bool { return len(f.notifier.Sent()) == 3 }, 2*time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{
		"Time to take Losartan (50mg)",
		"Time to take Losartan (50mg)",
		"Time to take Febuxostat (20mg)",
	}, f.notifier.Bodies())

	cancel()
	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Contains(t, r.out, "Reminders armed.")
		assert.Contains(t, r.out, "Reminders stopped")
	case <-time.After(2 * time.Second):
		t.Fatal("remind did not stop after cancel")
	}
}

func TestExport_Golden(t *testing.T) {
	f := newCLIFixture(t)
	f.seed()
	assertGolden(t, "export", f.mustRun("export"))
}

func TestExportThenValidate(t *testing.T) {
	f := newCLIFixture(t)
	f.seed()
	f.mustRun("login", "--email", "bob@example.com")

	backup := filepath.Join(t.TempDir(), "backup.json")
	out := f.mustRun("export", "--out", backup)
	assert.Equal(t, "Exported 2 user(s) to "+backup+"\n", out)

	out = f.mustRun("validate", backup)
	assert.Equal(t, backup+": valid\n", out)
}

func TestValidate_Invalid(t *testing.T) {
	f := newCLIFixture(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ann@example.com":{"user":{"id":"u1","name":"Ann","email":"ann@example.com"},"vitals":[],"medications":[{"id":"m1","name":"X","dosage":"","frequency":"","reminders":["8:00"]}],"meals":[],"prescriptions":[]}}`), 0o644))

	out, err := f.run("validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "error(s)")

	out, err = f.run("validate", path, "--format", "json")
	require.Error(t, err)
	env := decode[ValidationResult](t, out)
	assert.Equal(t, "ok", env.Status)
	assert.False(t, env.Data.Valid)
	assert.NotEmpty(t, env.Data.Errors)
}

func TestValidate_MissingFile(t *testing.T) {
	f := newCLIFixture(t)
	out, err := f.run("validate", filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E006")
}
