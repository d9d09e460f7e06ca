package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"adjudicator/internal/adjudication"
)

const sampleIntake = `{
  "member_id": "EMP001",
  "member_name": "Rajesh Kumar",
  "treatment_date": "2024-11-01",
  "prescription": {
    "patient_name": "Rajesh Kumar",
    "doctor_name": "Dr. Sharma",
    "doctor_registration": "KA/45678/2015",
    "diagnosis": "Viral fever",
    "medicines": ["Paracetamol 650mg"],
    "procedures": [],
    "date": "2024-11-01"
  },
  "bill": {
    "patient_name": "Rajesh Kumar",
    "hospital_name": "City Clinic",
    "date": "2024-11-01",
    "line_items": [{"description": "Consultation", "category": "consultation", "amount": 1000}],
    "total_amount": 1000,
    "is_network_hospital": false
  }
}`

const sampleMember = `{
  "id": "EMP001",
  "name": "Rajesh Kumar",
  "policy_number": "OPD-2024",
  "policy_start": "2024-01-01T00:00:00Z",
  "status": "active",
  "annual_limit": 50000,
  "ytd_claims": 0
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	intake := writeFile(t, "intake.json", sampleIntake)

	t.Run("member claim prints a decision", func(t *testing.T) {
		member := writeFile(t, "member.json", sampleMember)

		out, err := execute(t, "run", "--intake", intake, "--member", member)
		require.NoError(t, err)

		var res adjudication.Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		require.NotNil(t, res.Decision)
		assert.Nil(t, res.Preview)
		assert.Equal(t, 1000.0, res.Decision.ClaimedAmount)
	})

	t.Run("without member prints a sales preview", func(t *testing.T) {
		out, err := execute(t, "run", "--intake", intake)
		require.NoError(t, err)

		var res adjudication.Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Nil(t, res.Decision)
		assert.NotNil(t, res.Preview)
	})

	t.Run("missing intake flag", func(t *testing.T) {
		_, err := execute(t, "run")
		require.Error(t, err)
	})

	t.Run("unknown intake field rejected", func(t *testing.T) {
		bad := writeFile(t, "bad.json", `{"member_id": "EMP001", "surprise": true}`)
		_, err := execute(t, "run", "--intake", bad)
		require.Error(t, err)
	})

	t.Run("invalid intake date rejected", func(t *testing.T) {
		bad := writeFile(t, "bad.json", `{"member_id": "EMP001", "treatment_date": "01/11/2024"}`)
		_, err := execute(t, "run", "--intake", bad)
		require.Error(t, err)
	})
}

func TestPolicyCommand(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		out, err := execute(t, "policy")
		require.NoError(t, err)

		var cfg adjudication.Config
		require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
		assert.Equal(t, adjudication.DefaultConfig().Limits.PerClaimLimit, cfg.Limits.PerClaimLimit)
	})

	t.Run("overrides applied", func(t *testing.T) {
		policy := writeFile(t, "policy.yaml", "limits:\n  per_claim_limit: 7500\n")
		out, err := execute(t, "policy", "--policy", policy)
		require.NoError(t, err)

		var cfg adjudication.Config
		require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
		assert.Equal(t, 7500.0, cfg.Limits.PerClaimLimit)
	})
}
