package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gestivactl", cmd.Use)

	for _, name := range []string{"evaluate", "migrate", "seed-doctors"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	logLevel := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logLevel)
	assert.Equal(t, "info", logLevel.DefValue)
}

func TestEvaluate_PrintsRecommendations(t *testing.T) {
	out, err := execute(t, "", "evaluate", "--file", "testdata/snapshot.json")
	require.NoError(t, err)

	var recs []domain.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, domain.ConditionThyroid, recs[0].Condition)
	assert.Equal(t, domain.ConditionPreeclampsia, recs[1].Condition)
	assert.Equal(t, "Reduce salt intake", recs[1].Tips[0])
}

func TestEvaluate_Risk(t *testing.T) {
	out, err := execute(t, "", "evaluate", "--file", "testdata/snapshot.json", "--risk")
	require.NoError(t, err)

	var report RiskReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.DiseaseAnalysis, len(domain.Conditions()))
	assert.Equal(t, domain.RiskHigh, report.DiseaseAnalysis["preeclampsia"].RiskLevel)
	assert.NotNil(t, report.Notifications)
}

func TestEvaluate_Stdin(t *testing.T) {
	out, err := execute(t, `{}`, "evaluate", "--file", "-")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := execute(t, "", "evaluate")
	assert.Error(t, err, "--file is required")

	_, err = execute(t, "", "evaluate", "--file", "testdata/missing.json")
	assert.ErrorContains(t, err, "read snapshot")

	_, err = execute(t, `[1, 2]`, "evaluate", "--file", "-")
	assert.ErrorContains(t, err, "decode snapshot")
}

func TestMigrate_RequiresDSN(t *testing.T) {
	_, err := execute(t, "", "migrate")
	assert.ErrorContains(t, err, "--db is required")
}

func TestLoadDoctors(t *testing.T) {
	f, err := os.Open("testdata/doctors.yaml")
	require.NoError(t, err)
	defer f.Close()

	doctors, err := LoadDoctors(f)
	require.NoError(t, err)
	require.Len(t, doctors, 2)

	assert.Equal(t, uuid.MustParse("3d9f7f1e-8c1a-4d5b-b2f4-1f6a9e0c7d21"), doctors[0].ID)
	assert.Equal(t, "Dr. Anjali Mehta", doctors[0].Name)
	assert.Equal(t, 800, doctors[0].ConsultationFee)
	assert.Equal(t, "+91 98200 11223", doctors[0].Phone)

	assert.NotEqual(t, uuid.Nil, doctors[1].ID)
	assert.Equal(t, "https://images.example.org/doctors/kavita-rao.jpg", doctors[1].PhotoURL)
}

func TestLoadDoctors_DerivedIDIsStable(t *testing.T) {
	doc := "doctors:\n  - name: Dr. Meera Iyer\n    city: Chennai\n"
	first, err := LoadDoctors(strings.NewReader(doc))
	require.NoError(t, err)
	second, err := LoadDoctors(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestLoadDoctors_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"missing name":  "doctors:\n  - city: Pune\n",
		"bad id":        "doctors:\n  - id: nope\n    name: Dr. A\n",
		"negative fee":  "doctors:\n  - name: Dr. A\n    consultation_fee: -5\n",
		"unknown field": "doctors:\n  - name: Dr. A\n    rating: 5\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadDoctors(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

type fakeDoctorRepo struct {
	upserted []domain.Doctor
	failOn   string
}

func (f *fakeDoctorRepo) ListDoctors(ctx context.Context, query string) ([]*domain.Doctor, error) {
	return nil, nil
}

func (f *fakeDoctorRepo) UpsertDoctor(ctx context.Context, doctor *domain.Doctor) error {
	if doctor.Name == f.failOn {
		return errors.New("connection reset")
	}
	f.upserted = append(f.upserted, *doctor)
	return nil
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSeedDoctors(t *testing.T) {
	repo := &fakeDoctorRepo{}
	doctors := []domain.Doctor{{Name: "Dr. A"}, {Name: "Dr. B"}}

	n, err := SeedDoctors(context.Background(), repo, doctors, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, repo.upserted, 2)
}

func TestSeedDoctors_StopsOnError(t *testing.T) {
	repo := &fakeDoctorRepo{failOn: "Dr. B"}
	doctors := []domain.Doctor{{Name: "Dr. A"}, {Name: "Dr. B"}, {Name: "Dr. C"}}

	n, err := SeedDoctors(context.Background(), repo, doctors, discardLogger())
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), "Dr. B")
}
