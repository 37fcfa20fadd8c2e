package dataset

import (
	"bytes"
	_ "embed"

	"github.com/statnotes/statnotes/pkg/errors"
)

//go:embed data/penguins.csv
var penguinsCSV []byte

//go:embed data/pima.csv
var pimaCSV []byte

//go:embed data/liver.csv
var liverCSV []byte

//go:embed data/organ_donation.csv
var organDonationCSV []byte

// Penguins returns body measurements for three penguin species
// (bill length/depth, flipper length, body mass, island, sex). A few sex
// entries are missing, as in the field data.
func Penguins() (*Table, error) {
	t, err := ParseCSV(bytes.NewReader(penguinsCSV))
	return t, errors.Wrap(err, "dataset.Penguins")
}

// PimaDiabetes returns the diabetes screening dataset: eight clinical
// predictors and a binary outcome column. Zeros in blood_pressure,
// skin_thickness and insulin are coded missing values, kept as recorded.
func PimaDiabetes() (*Table, error) {
	t, err := ParseCSV(bytes.NewReader(pimaCSV))
	return t, errors.Wrap(err, "dataset.PimaDiabetes")
}

// LiverSurvival returns a liver-disease survival cohort: follow-up time in
// days, event status (1 = death), and baseline covariates (age, sex,
// bilirubin, albumin, prothrombin time, edema grade).
func LiverSurvival() (*Table, error) {
	t, err := ParseCSV(bytes.NewReader(liverCSV))
	return t, errors.Wrap(err, "dataset.LiverSurvival")
}

// OrganDonation returns deceased organ donors per million population by
// country and year.
func OrganDonation() (*Table, error) {
	t, err := ParseCSV(bytes.NewReader(organDonationCSV))
	return t, errors.Wrap(err, "dataset.OrganDonation")
}
