package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/renalcare/internal/config"
	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/insight"
	"github.com/roach88/renalcare/internal/store"
	"github.com/roach88/renalcare/internal/testutil"
)

// stubInsight returns canned model results.
type stubInsight struct {
	report string
	lab    *insight.LabReport
	scan   *insight.PrescriptionScan
	recs   []insight.Recommendation
	err    error
}

func (s *stubInsight) HealthInsights(context.Context, []domain.VitalRecord, []domain.Meal, []domain.Medication) (string, error) {
	return s.report, s.err
}

func (s *stubInsight) AnalyzeLabReport(context.Context, []byte, string) (*insight.LabReport, error) {
	return s.lab, s.err
}

func (s *stubInsight) AnalyzePrescription(context.Context, []byte, string) (*insight.PrescriptionScan, error) {
	return s.scan, s.err
}

func (s *stubInsight) DietaryRecommendations(context.Context) ([]insight.Recommendation, error) {
	return s.recs, s.err
}

// cliFixture runs commands against one in-memory backend, so state carries
// over between invocations the way it does across real processes.
type cliFixture struct {
	t        *testing.T
	cfg      *config.Config
	backend  *store.MemoryStore
	clock    *testutil.FakeClock
	ids      *testutil.Sequence
	notifier *testutil.RecordingNotifier
	insight  *stubInsight
}

// fixtureNow is 2024-03-10 09:30 UTC.
var fixtureNow = time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	return &cliFixture{
		t: t,
		cfg: &config.Config{
			Storage:  config.StorageConfig{Driver: config.DriverMemory},
			Reminder: config.ReminderConfig{Interval: 10 * time.Second},
			Notify:   config.NotifyConfig{Channel: config.ChannelNone, Unattended: true},
			Log:      config.LogConfig{Level: "error", Format: "text"},
		},
		backend:  store.NewMemoryStore(),
		clock:    testutil.NewFakeClock(fixtureNow),
		ids:      testutil.NewSequence("id"),
		notifier: &testutil.RecordingNotifier{},
	}
}

// withInsight enables the model-backed commands.
func (f *cliFixture) withInsight(s *stubInsight) *cliFixture {
	f.insight = s
	return f
}

func (f *cliFixture) options() *RootOptions {
	opts := &RootOptions{
		Config:   f.cfg,
		Backend:  f.backend,
		Clock:    f.clock,
		IDs:      f.ids,
		Notifier: f.notifier,
	}
	if f.insight != nil {
		opts.Insight = f.insight
	}
	return opts
}

// run executes one command line and returns its stdout.
func (f *cliFixture) run(args ...string) (string, error) {
	return f.runContext(context.Background(), args...)
}

func (f *cliFixture) runContext(ctx context.Context, args ...string) (string, error) {
	cmd := newRootCommand(f.options())
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

// mustRun executes a command line that is expected to succeed.
func (f *cliFixture) mustRun(args ...string) string {
	f.t.Helper()
	out, err := f.run(args...)
	if err != nil {
		f.t.Fatalf("renalcare %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// seed logs Ann in and records one of each kind of entry.
// IDs: user id-1, vital id-2, medication id-3, meal id-4.
func (f *cliFixture) seed() {
	f.t.Helper()
	f.mustRun("login", "--email", "ann@example.com", "--name", "Ann")
	f.mustRun("profile", "update", "--stage", "3a", "--diagnosed", "2023-01-10", "--target-bp", "130/80")
	f.mustRun("vitals", "add", "--sys", "132", "--dia", "85", "--weight", "64.5",
		"--protein", "trace", "--edema", "1", "--egfr", "48", "--creatinine", "1.6")
	f.mustRun("meds", "add", "--name", "Losartan", "--dosage", "50mg", "--frequency", "daily",
		"--reminder", "08:00", "--reminder", "20:00")
	f.mustRun("meals", "add", "--description", "Steamed fish", "--protein", "22",
		"--sodium", "380", "--potassium", "410", "--calories", "520")
}

func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}
