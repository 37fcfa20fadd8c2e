package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_TypesAndMissing(t *testing.T) {
	in := "name,score,grade\nalice,1.5,A\nbob,,B\ncarol,3.0,\n"
	tbl, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"name", "score", "grade"}, tbl.Names())

	name, err := tbl.Col("name")
	require.NoError(t, err)
	assert.True(t, name.IsCategorical())
	assert.Equal(t, []string{"alice", "bob", "carol"}, name.Levels)

	score, err := tbl.Col("score")
	require.NoError(t, err)
	assert.False(t, score.IsCategorical())
	assert.True(t, math.IsNaN(score.Values[1]))

	grades, err := tbl.Strings("grade")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", ""}, grades)
}

func TestDropMissing(t *testing.T) {
	in := "x,y\n1,2\n,3\n4,\n5,6\n"
	tbl, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)

	complete, err := tbl.DropMissing()
	require.NoError(t, err)
	assert.Equal(t, 2, complete.NumRows())

	xOnly, err := tbl.DropMissing("x")
	require.NoError(t, err)
	assert.Equal(t, 3, xOnly.NumRows())
}

func TestMatrixShape(t *testing.T) {
	tbl, err := Penguins()
	require.NoError(t, err)

	X, err := tbl.Matrix("bill_length_mm", "bill_depth_mm", "flipper_length_mm", "body_mass_g")
	require.NoError(t, err)
	r, c := X.Dims()
	assert.Equal(t, tbl.NumRows(), r)
	assert.Equal(t, 4, c)
}

func TestBundledDatasets(t *testing.T) {
	tests := []struct {
		name    string
		load    func() (*Table, error)
		minRows int
		cols    []string
	}{
		{"penguins", Penguins, 90, []string{"species", "island", "bill_length_mm", "body_mass_g", "sex"}},
		{"pima", PimaDiabetes, 100, []string{"glucose", "bmi", "age", "outcome"}},
		{"liver", LiverSurvival, 100, []string{"time", "status", "bilirubin", "albumin", "edema"}},
		{"organ_donation", OrganDonation, 30, []string{"country", "year", "donors_pmp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := tt.load()
			require.NoError(t, err)
			assert.GreaterOrEqual(t, tbl.NumRows(), tt.minRows)
			for _, col := range tt.cols {
				_, err := tbl.Col(col)
				assert.NoError(t, err, "column %s", col)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	tbl, err := LiverSurvival()
	require.NoError(t, err)

	s, err := tbl.Summary("bilirubin")
	require.NoError(t, err)
	assert.Equal(t, tbl.NumRows(), s.N+s.Missing)
	assert.Greater(t, s.Mean, 0.0)
	assert.LessOrEqual(t, s.Min, s.Q25)
	assert.LessOrEqual(t, s.Q25, s.Median)
	assert.LessOrEqual(t, s.Median, s.Q75)
	assert.LessOrEqual(t, s.Q75, s.Max)

	_, err = tbl.Summary("nope")
	assert.Error(t, err)
}

func TestSummaryRejectsCategorical(t *testing.T) {
	tbl, err := Penguins()
	require.NoError(t, err)
	_, err = tbl.Summary("species")
	assert.Error(t, err)
}
