package model

import (
	"strings"
	"time"
)

// GatePassStatus represents the approval state of a gate pass.
type GatePassStatus string

const (
	GatePassStatusPending  GatePassStatus = "pending"
	GatePassStatusApproved GatePassStatus = "approved"
	GatePassStatusRejected GatePassStatus = "rejected"
)

// ParseGatePassStatus trims and lowercases s and reports whether it names a
// known status.
func ParseGatePassStatus(s string) (GatePassStatus, bool) {
	status := GatePassStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case GatePassStatusPending, GatePassStatusApproved, GatePassStatusRejected:
		return status, true
	}
	return status, false
}

// Direction tells whether goods leave or enter the facility.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

const maxDirectionLen = 10

// ParseDirection normalizes free text to a Direction. Anything other than
// "in" or "out" (case-insensitive) is treated as "out".
func ParseDirection(s string) Direction {
	d := strings.ToLower(strings.TrimSpace(s))
	if len(d) > maxDirectionLen {
		d = d[:maxDirectionLen]
	}
	if Direction(d) == DirectionIn {
		return DirectionIn
	}
	return DirectionOut
}

// Purposes is the set of reasons a gate pass is issued for. The flags are
// independent: none, one or several may be set.
type Purposes struct {
	Delivery       bool `json:"purpose_delivery" gorm:"not null"`
	Return         bool `json:"purpose_return" gorm:"not null"`
	InterWarehouse bool `json:"purpose_inter_warehouse" gorm:"not null"`
	Others         bool `json:"purpose_others" gorm:"not null"`
}

// Signatories are the names printed in the approval boxes of the slip.
type Signatories struct {
	PreparedBy    *string `json:"prepared_by" gorm:"size:255"`
	CheckedBy     *string `json:"checked_by" gorm:"size:255"`
	RecommendedBy *string `json:"recommended_by" gorm:"size:255"`
	ApprovedBy    *string `json:"approved_by" gorm:"size:255"`
}

// GatePass authorizes moving the listed goods through the facility gate.
type GatePass struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	GPNumber       string    `json:"gp_number" gorm:"column:gp_number;uniqueIndex;size:50;not null"`
	PassDate       Date      `json:"pass_date" gorm:"not null"`
	AuthorizedName string    `json:"authorized_name" gorm:"size:255;not null"`
	InOrOut        Direction `json:"in_or_out" gorm:"size:10;not null"`

	Purposes `gorm:"embedded;embeddedPrefix:purpose_"`

	VehicleType *string `json:"vehicle_type" gorm:"size:100"`
	PlateNo     *string `json:"plate_no" gorm:"size:50"`
	Attention   *string `json:"attention" gorm:"size:255"`

	Signatories `gorm:"embedded"`

	TimeOut *string `json:"time_out" gorm:"size:20"`
	TimeIn  *string `json:"time_in" gorm:"size:20"`

	Status          GatePassStatus `json:"status" gorm:"size:20;not null;index"`
	RejectedRemarks *string        `json:"rejected_remarks" gorm:"type:text"`
	DateApproved    *Date          `json:"date_approved"`
	CreatedAt       time.Time      `json:"-"`

	// Relations
	Items []GatePassItem `json:"items" gorm:"foreignKey:GatePassID;constraint:OnDelete:CASCADE"`
}

// GatePassItem is one line of goods on a gate pass.
type GatePassItem struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	GatePassID      uint    `json:"-" gorm:"not null;index"`
	ItemCode        *string `json:"item_code" gorm:"size:100"`
	ItemDescription string  `json:"item_description" gorm:"size:500;not null"`
	Qty             int     `json:"qty" gorm:"not null"`
	RefDocNo        *string `json:"ref_doc_no" gorm:"size:100"`
	Destination     *string `json:"destination" gorm:"size:255"`
}
