package models

// FeeNote tags how a recorded fee relates to the expected amount.
type FeeNote string

const (
	FeeNoteFull FeeNote = "Full"
	FeeNoteLess FeeNote = "Less"
)

// FeeDateLayout is the ISO date layout stored in fee_date.
const FeeDateLayout = "2006-01-02"

// StudentFeeRecord is one row of the students table: a student and their
// most recent fee status. The fee fields are either all nil or all set.
type StudentFeeRecord struct {
	ID        int64   `db:"id" json:"id"`
	RollNo    int     `db:"roll_no" json:"roll_no"`
	Name      string  `db:"name" json:"name"`
	ClassName string  `db:"class_name" json:"class_name"`
	FeeAmount *int64  `db:"fee_amount" json:"fee_amount"`
	FeeDate   *string `db:"fee_date" json:"fee_date"`
	Note      *string `db:"note" json:"note"`
}

// HasFee reports whether a fee is currently recorded.
func (r StudentFeeRecord) HasFee() bool {
	return r.FeeAmount != nil
}

// StudentSummary is the lean class listing projection.
type StudentSummary struct {
	ID     int64  `db:"id" json:"id"`
	RollNo int    `db:"roll_no" json:"roll_no"`
	Name   string `db:"name" json:"name"`
}

// ClassRecord is the full class listing projection.
type ClassRecord struct {
	ID        int64   `db:"id" json:"id"`
	RollNo    int     `db:"roll_no" json:"roll_no"`
	Name      string  `db:"name" json:"name"`
	FeeAmount *int64  `db:"fee_amount" json:"fee_amount"`
	FeeDate   *string `db:"fee_date" json:"fee_date"`
	Note      *string `db:"note" json:"note"`
}

// MonthlyFeeRecord is a row of the monthly fee report.
type MonthlyFeeRecord struct {
	RollNo    int     `db:"roll_no" json:"roll_no"`
	Name      string  `db:"name" json:"name"`
	ClassName string  `db:"class_name" json:"class_name"`
	FeeAmount *int64  `db:"fee_amount" json:"fee_amount"`
	FeeDate   *string `db:"fee_date" json:"fee_date"`
}
